// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package nucleotide encodes the DNA alphabet {A,C,G,T,N} into the
// small integer codes that every other package in this module
// operates on, and provides the substitution-equality table and
// reverse-complement used by the matcher and aligner.
package nucleotide

// Code is a nucleotide encoded as a small integer in {0,1,2,3,4}.
// 4 denotes N, which never equals anything, including itself.
type Code byte

const (
	A Code = 0
	C Code = 1
	G Code = 2
	T Code = 3
	N Code = 4
)

// Encode maps a single ASCII base to its Code.  Anything other than
// A/C/G/T (upper or lower case) encodes as N.
func Encode(b byte) Code {
	switch b {
	case 'A', 'a':
		return A
	case 'C', 'c':
		return C
	case 'G', 'g':
		return G
	case 'T', 't':
		return T
	default:
		return N
	}
}

// EncodeSeq encodes an ASCII byte slice into a Code slice.
func EncodeSeq(seq []byte) []Code {
	out := make([]Code, len(seq))
	for i, b := range seq {
		out[i] = Encode(b)
	}
	return out
}

// Byte returns the canonical ASCII base for a Code.
func (c Code) Byte() byte {
	switch c {
	case A:
		return 'A'
	case C:
		return 'C'
	case G:
		return 'G'
	case T:
		return 'T'
	default:
		return 'N'
	}
}

// DecodeSeq renders a Code slice back to an ASCII byte slice.
func DecodeSeq(seq []Code) []byte {
	out := make([]byte, len(seq))
	for i, c := range seq {
		out[i] = c.Byte()
	}
	return out
}

// NotEqual implements the substitution-equality table: 0 on identity
// among the four canonical bases, 1 otherwise.  N is never equal to
// anything, not even another N.  This asymmetry is intentional.
func NotEqual(a, b Code) int {
	if a == N || b == N {
		return 1
	}
	if a == b {
		return 0
	}
	return 1
}

// complement swaps A<->T and C<->G, leaving N fixed.
func complement(c Code) Code {
	switch c {
	case A:
		return T
	case T:
		return A
	case C:
		return G
	case G:
		return C
	default:
		return N
	}
}

// ReverseComplement returns the reverse complement of seq, leaving
// seq itself untouched.
func ReverseComplement(seq []Code) []Code {
	out := make([]Code, len(seq))
	n := len(seq)
	for i, c := range seq {
		out[n-1-i] = complement(c)
	}
	return out
}
