// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package frontier implements the bit-parallel state-update kernel:
// given the current "match frontier" and the per-nucleotide match
// masks for a whole read batch, it advances the frontier by one
// reference nucleotide using only bitwise AND/OR and row indexing,
// word-parallel across the read axis.
//
// F[e, p, r] means: the prefix of read r of length p+1 matches the
// reference ending at the current position with at most e edits
// (substitutions, plus indels costed at C each).
package frontier

import (
	"github.com/ralic/gnu-myrialign/bitpack"
	"github.com/ralic/gnu-myrialign/nucleotide"
)

// NucMask holds, for each of the four canonical nucleotide values,
// a boolean matrix of shape (L, N) bit-packed along the read axis:
// position p of read r matches value v.  N (nucleotide code 4) is
// never stored since it is always the zero matrix.
type NucMask struct {
	L, N int
	Mask [4][][]bitpack.Word // Mask[v][p] is a packed row of NumWords(N) words
}

// BuildNucMask constructs a NucMask for a batch of N reads, each of
// length L, given as nucleotide codes in [0,4]; positions holding N
// (code 4) are left unset in all four masks.
func BuildNucMask(reads [][]nucleotide.Code, L, N int) *NucMask {
	nw := bitpack.NumWords(N)
	nm := &NucMask{L: L, N: N}
	for v := 0; v < 4; v++ {
		nm.Mask[v] = make([][]bitpack.Word, L)
		for p := 0; p < L; p++ {
			nm.Mask[v][p] = make([]bitpack.Word, nw)
		}
	}
	for r, read := range reads {
		for p := 0; p < L; p++ {
			v := read[p]
			if v > 3 {
				// N never matches anything; leave all four rows at 0.
				continue
			}
			bitpack.SetBit(nm.Mask[v][p], r)
		}
	}
	return nm
}

// Frontier is the (K+1, L) matrix of packed rows over the read axis.
type Frontier struct {
	K, L, N int
	rows    [][]bitpack.Word
}

// New allocates a zeroed frontier for K errors, L read positions and
// N reads.  The caller must still seed it, e.g. with Initial.
func New(K, L, N int) *Frontier {
	nw := bitpack.NumWords(N)
	rows := make([][]bitpack.Word, (K+1)*L)
	for i := range rows {
		rows[i] = make([]bitpack.Word, nw)
	}
	return &Frontier{K: K, L: L, N: N, rows: rows}
}

// Row returns the packed row for error budget e and prefix length
// p+1 (i.e. read position p).
func (f *Frontier) Row(e, p int) []bitpack.Word {
	return f.rows[e*f.L+p]
}

// Initial builds the frontier's state before any reference nucleotide
// has been consumed: F[e,p,r] = 1 iff p < e, for every read r. A
// prefix of length p+1 <= e is reachable before any text is read at
// one error per position, the same charge bandalign applies to the N
// padding it places before the start of the reference. The indel cost
// C does not affect the result.
func Initial(K, L, N, C int) *Frontier {
	f := New(K, L, N)
	mask := bitpack.TrailingMask(N)
	for e := 0; e <= K; e++ {
		for p := 0; p < L && p < e; p++ {
			row := f.Row(e, p)
			for w := range row {
				row[w] = ^bitpack.Word(0)
			}
			row[len(row)-1] &= mask
		}
	}
	return f
}

// Clear zeros out every row of f, allowing it to be reused as the
// ping-pong output buffer for the next Advance call.
func (f *Frontier) Clear() {
	for _, row := range f.rows {
		for w := range row {
			row[w] = 0
		}
	}
}

// Advance computes fout from fin given the nucmask row M (the slice
// M[p] for p in [0,L) corresponding to the current reference
// nucleotide) and the indel cost C. fout must already be allocated
// with matching K, L, N; the caller owns both buffers and swaps them
// after the call. Advance never allocates.
func Advance(fin, fout *Frontier, M [][]bitpack.Word, C int) {
	L := fin.L
	nw := bitpack.NumWords(fin.N)

	// Row 0: the classic exact-suffix automaton.
	for p := 0; p < L; p++ {
		out := fout.Row(0, p)
		mp := M[p]
		if p == 0 {
			copy(out, mp)
			continue
		}
		in := fin.Row(0, p-1)
		for w := 0; w < nw; w++ {
			out[w] = mp[w] & in[w]
		}
	}

	for e := 1; e <= fin.K; e++ {
		for p := 0; p < L; p++ {
			out := fout.Row(e, p)
			if p < e {
				// A prefix of length p+1 <= e is always reachable at
				// one error per position.
				for w := range out {
					out[w] = ^bitpack.Word(0)
				}
				out[len(out)-1] &= bitpack.TrailingMask(fin.N)
				continue
			}

			mp := M[p]
			exact := fin.Row(e, p-1)
			for w := 0; w < nw; w++ {
				out[w] = mp[w] & exact[w]
			}

			sub := fin.Row(e-1, p-1)
			for w := 0; w < nw; w++ {
				out[w] |= sub[w]
			}

			if e >= C {
				delRead := fin.Row(e-C, p)
				for w := 0; w < nw; w++ {
					out[w] |= delRead[w]
				}
				// Deletion-in-reference uses the row already
				// computed this step: it does not consume the
				// current reference nucleotide.
				delRef := fout.Row(e-C, p-1)
				for w := 0; w < nw; w++ {
					out[w] |= delRef[w]
				}
			}
		}
	}
}

// TerminalBit reports whether read r matches ending at the current
// reference position with at most e errors (i.e. bit r is set in row
// (e, L-1)).
func (f *Frontier) TerminalBit(e, r int) bool {
	return bitpack.Bit(f.Row(e, f.L-1), r)
}

// MinTerminalError returns the smallest e in [0,K] for which read r's
// terminal bit is set, and true, or (0, false) if no such e exists.
func (f *Frontier) MinTerminalError(r int) (int, bool) {
	for e := 0; e <= f.K; e++ {
		if f.TerminalBit(e, r) {
			return e, true
		}
	}
	return 0, false
}
