// Copyright 2017, Kerby Shedden and the Muscato contributors.

package frontier

import (
	"math/rand"
	"testing"

	"github.com/ralic/gnu-myrialign/bitpack"
	"github.com/ralic/gnu-myrialign/nucleotide"
	"github.com/stretchr/testify/assert"
)

func encode(s string) []nucleotide.Code {
	return nucleotide.EncodeSeq([]byte(s))
}

// scan runs reference against a batch of reads through raw frontier
// calls (bypassing the matcher driver) and returns the final
// frontier, after consuming every reference nucleotide.
func scan(t *testing.T, ref []nucleotide.Code, reads [][]nucleotide.Code, k, c int) *Frontier {
	t.Helper()
	l := len(reads[0])
	n := len(reads)
	nm := BuildNucMask(reads, l, n)
	fin := Initial(k, l, n, c)
	fout := New(k, l, n)
	zero := make([][]bitpack.Word, l)
	zr := make([]bitpack.Word, bitpack.NumWords(n))
	for p := range zero {
		zero[p] = zr
	}
	for _, v := range ref {
		m := zero
		if int(v) < 4 {
			m = nm.Mask[v]
		}
		Advance(fin, fout, m, c)
		fin, fout = fout, fin
	}
	return fin
}

func TestZeroErrorSoundness(t *testing.T) {
	ref := encode("ACGTACGT")
	reads := [][]nucleotide.Code{encode("CGTA")}
	_ = scan(t, ref, reads, 0, 1)

	// CGTA occurs ending at 0-based ref_pos 4 (1-based end 5).
	hit := false
	for pos := 0; pos < len(ref); pos++ {
		// Re-run scan truncated to `pos+1` reference symbols to find
		// exactly where the zero-error bit turns on.
		ft := scan(t, ref[:pos+1], reads, 0, 1)
		if ft.TerminalBit(0, 0) {
			hit = true
			assert.Equal(t, 4, pos, "zero-error match should end at ref_pos 4")
		}
	}
	assert.True(t, hit, "expected a zero-error match somewhere")
}

func TestMonotoneFrontierContainment(t *testing.T) {
	rand.Seed(1)
	l, n, k, c := 6, 70, 3, 1
	reads := make([][]nucleotide.Code, n)
	for i := range reads {
		seq := make([]nucleotide.Code, l)
		for p := range seq {
			seq[p] = nucleotide.Code(rand.Intn(4))
		}
		reads[i] = seq
	}
	nm := BuildNucMask(reads, l, n)
	fin := Initial(k, l, n, c)
	fout := New(k, l, n)

	check := func(f *Frontier) {
		nw := bitpack.NumWords(n)
		for e := 0; e < k; e++ {
			for p := 0; p < l; p++ {
				lo := f.Row(e, p)
				hi := f.Row(e+1, p)
				for w := 0; w < nw; w++ {
					assert.Equal(t, lo[w], lo[w]&hi[w], "row %d must be contained in row %d at p=%d", e, e+1, p)
				}
			}
		}
	}
	check(fin)

	refSeq := make([]nucleotide.Code, 30)
	for i := range refSeq {
		refSeq[i] = nucleotide.Code(rand.Intn(4))
	}
	for _, v := range refSeq {
		m := nm.Mask[v]
		Advance(fin, fout, m, c)
		fin, fout = fout, fin
		check(fin)
	}
}

func TestSubstitution(t *testing.T) {
	ref := encode("ACGTACGT")
	reads := [][]nucleotide.Code{encode("CGAA")}
	// CGAA matches CGTA with one substitution, ending at 0-based
	// ref_pos 4, so the scan stops after ref[4].
	f := scan(t, ref[:5], reads, 1, 3)
	assert.True(t, f.TerminalBit(1, 0))
}
