// Copyright 2017, Kerby Shedden and the Muscato contributors.

package bitpack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 7, 63, 64, 65, 127, 200}
	for _, n := range sizes {
		bits := make([]bool, n)
		for i := range bits {
			bits[i] = rand.Intn(2) == 1
		}
		words := Pack(bits)
		got := Unpack(words, n)
		assert.Equal(t, bits, got, "round trip for n=%d", n)
	}
}

func TestBigEndianBitOrder(t *testing.T) {
	// The first logical bit occupies the most significant bit of
	// word 0.
	words := Pack([]bool{true, false, false})
	assert.Equal(t, Word(1)<<(WordBits-1), words[0])
}

func TestSetBitAndBit(t *testing.T) {
	words := make([]Word, NumWords(70))
	SetBit(words, 3)
	SetBit(words, 69)
	assert.True(t, Bit(words, 3))
	assert.True(t, Bit(words, 69))
	assert.False(t, Bit(words, 4))
}

func TestTrailingMask(t *testing.T) {
	assert.Equal(t, ^Word(0), TrailingMask(64))
	assert.Equal(t, Word(7)<<(WordBits-3), TrailingMask(3))
}
