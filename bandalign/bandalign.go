// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package bandalign reconstructs the gapped alignment for a
// candidate hit found by the bit-parallel frontier advancer. The
// frontier pass only identifies the reference position where a match
// ends and its predicted error count; this package runs a
// band-limited Needleman-Wunsch-style dynamic program, on the
// reversed read and a reversed reference window ending at that
// position, to recover the actual base/base, base/-, -/base steps.
package bandalign

import (
	"fmt"

	"github.com/ralic/gnu-myrialign/nucleotide"
)

// Result is a confirmed, reconstructed alignment.
type Result struct {
	NErrors   int
	RefStart1 int // 1-based, inclusive
	RefEnd1   int // 1-based, inclusive
	ReadAlign string
	RefAlign  string
}

// ErrInternalConsistency reports that the DP's reconstructed error
// count disagrees with the count predicted by the bit-parallel pass.
// This always indicates a bug in the advancer or the aligner, never a
// property of the input data, and callers should treat it as fatal.
type ErrInternalConsistency struct {
	Predicted, Actual int
}

func (e *ErrInternalConsistency) Error() string {
	return fmt.Sprintf("bandalign: reconstructed error count %d disagrees with predicted %d",
		e.Actual, e.Predicted)
}

// Align reconstructs the alignment of read against ref ending
// (inclusively) at the 0-based reference position refPos, under edit
// model (K,C), cross-checking against the error count predicted by
// the frontier advancer.
func Align(read, ref []nucleotide.Code, refPos, k, c, predicted int) (*Result, error) {
	l := len(read)
	radius := k / c
	windowLen := l + radius

	start := refPos - windowLen + 1
	pad := 0
	if start < 0 {
		pad = -start
		start = 0
	}
	window := make([]nucleotide.Code, windowLen)
	for i := 0; i < pad; i++ {
		window[i] = nucleotide.N
	}
	copy(window[pad:], ref[start:refPos+1])

	readRev := reverseCodes(read)
	refRev := reverseCodes(window)

	sentinel := k + 1
	rows, cols := l+1, windowLen+1
	s := make([][]int, rows)
	for i := range s {
		s[i] = make([]int, cols)
		for j := range s[i] {
			s[i][j] = sentinel
		}
	}
	s[0][0] = 0
	for i := 1; i <= l && i <= radius+1; i++ {
		s[i][0] = i * c
	}
	for j := 1; j <= windowLen && j <= radius+1; j++ {
		s[0][j] = j * c
	}

	for i := 1; i <= l; i++ {
		lo := max(1, i-radius)
		hi := min(windowLen, i+radius)
		for j := lo; j <= hi; j++ {
			diag := s[i-1][j-1] + nucleotide.NotEqual(readRev[i-1], refRev[j-1])
			best := diag
			if left := s[i][j-1] + c; left < best {
				best = left
			}
			if up := s[i-1][j] + c; up < best {
				best = up
			}
			s[i][j] = best
		}
	}

	left := max(1, l-radius)
	right := min(windowLen, l+radius)
	jstar := left
	best := s[l][left]
	for j := left + 1; j <= right; j++ {
		if s[l][j] < best {
			best = s[l][j]
			jstar = j
		}
	}

	if best != predicted {
		return nil, &ErrInternalConsistency{Predicted: predicted, Actual: best}
	}

	readAl, refAl := traceback(s, readRev, refRev, l, jstar, c)

	refConsumed := 0
	for _, b := range refAl {
		if b != '-' {
			refConsumed++
		}
	}
	refEnd1 := refPos + 1
	refStart1 := refEnd1 - refConsumed + 1

	return &Result{
		NErrors:   best,
		RefStart1: refStart1,
		RefEnd1:   refEnd1,
		ReadAlign: string(readAl),
		RefAlign:  string(refAl),
	}, nil
}

// traceback walks S from (l, jstar) back to row 0. Because the DP ran
// on the reversed read and reversed reference window, walking the
// grid in the usual backward direction (decreasing i, j) visits the
// alignment columns in forward, original-sequence order: the first
// step decided here is the first column of the emitted alignment, not
// the last. Spec ordering of ties (substitution-or-match, deletion-
// in-read, deletion-in-reference) is specified for a traceback that
// decides the last column first; since this traceback decides
// columns in the opposite order, the tie-break order is applied in
// reverse (deletion-in-reference, deletion-in-read, substitution-or-
// match) so the two produce the same alignment.
func traceback(s [][]int, readRev, refRev []nucleotide.Code, l, jstar, c int) ([]byte, []byte) {
	var readAl, refAl []byte
	i, j := l, jstar
	for i > 0 {
		if j > 0 {
			up := s[i-1][j] + c
			if up != s[i][j] {
				left := s[i][j-1] + c
				if left == s[i][j] {
					// Deletion-in-read: the reference advances, the
					// read contributes a gap.
					readAl = append(readAl, '-')
					refAl = append(refAl, refRev[j-1].Byte())
					j--
					continue
				}
				// Substitution-or-match.
				readAl = append(readAl, readRev[i-1].Byte())
				refAl = append(refAl, refRev[j-1].Byte())
				i--
				j--
				continue
			}
		}
		// Deletion-in-reference: the read advances, the reference
		// contributes a gap. Also the only valid move once j reaches 0.
		readAl = append(readAl, readRev[i-1].Byte())
		refAl = append(refAl, '-')
		i--
	}
	return readAl, refAl
}

func reverseCodes(s []nucleotide.Code) []nucleotide.Code {
	out := make([]nucleotide.Code, len(s))
	for i, c := range s {
		out[len(s)-1-i] = c
	}
	return out
}

