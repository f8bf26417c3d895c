// Copyright 2017, Kerby Shedden and the Muscato contributors.

package dominance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type collector struct {
	hits []Hit
}

func (c *collector) Accept(h Hit) error {
	c.hits = append(c.hits, h)
	return nil
}

func TestDominates(t *testing.T) {
	exact := Hit{RefPos: 5, ReadIndex: 0, NErrors: 0}
	near := Hit{RefPos: 4, ReadIndex: 0, NErrors: 1}
	far := Hit{RefPos: 8, ReadIndex: 0, NErrors: 1}

	assert.True(t, exact.Dominates(near), "distance 1, error gap 1: dominated")
	assert.False(t, exact.Dominates(far), "distance 3, error gap 1: not dominated")
	assert.False(t, near.Dominates(exact), "a worse hit cannot dominate a better one")
}

func TestDominanceSuppressionScenario(t *testing.T) {
	// reference ACGTACGTACGT, read CGTA, K=2, C=3: the exact hit at
	// position 5 (1-based end) dominates the 1-error shifted hits at
	// positions 4 and 6; only the exact hit survives.
	c := &collector{}
	f := NewFilter(2, c)
	f.Register(Hit{RefPos: 3, ReadIndex: 0, NErrors: 1, ReadLen: 4})
	f.Register(Hit{RefPos: 4, ReadIndex: 0, NErrors: 0, ReadLen: 4})
	f.Register(Hit{RefPos: 5, ReadIndex: 0, NErrors: 1, ReadLen: 4})
	assert.NoError(t, f.Flush())

	assert.Len(t, c.hits, 1)
	assert.Equal(t, 4, c.hits[0].RefPos)
	assert.Equal(t, 0, c.hits[0].NErrors)
}

func TestRegisterIdempotent(t *testing.T) {
	c1 := &collector{}
	f1 := NewFilter(2, c1)
	h := Hit{RefPos: 10, ReadIndex: 0, NErrors: 1, ReadLen: 4}
	f1.Register(h)
	assert.NoError(t, f1.Flush())

	c2 := &collector{}
	f2 := NewFilter(2, c2)
	f2.Register(h)
	f2.Register(h)
	assert.NoError(t, f2.Flush())

	assert.Equal(t, c1.hits, c2.hits)
}

func TestSurvivorsAreMutuallyNonDominating(t *testing.T) {
	c := &collector{}
	f := NewFilter(1, c)
	// Two different reads, interleaved positions: neither dominance
	// relation applies across distinct reads.
	f.Register(Hit{RefPos: 1, ReadIndex: 0, NErrors: 0, ReadLen: 4})
	f.Register(Hit{RefPos: 1, ReadIndex: 1, NErrors: 0, ReadLen: 4})
	assert.NoError(t, f.Flush())

	assert.Len(t, c.hits, 2)
	for i := range c.hits {
		for j := range c.hits {
			if i == j {
				continue
			}
			assert.False(t, c.hits[i].Dominates(c.hits[j]))
		}
	}
}

func TestAdvanceOrdersByRefPos(t *testing.T) {
	c := &collector{}
	f := NewFilter(0, c)
	f.Register(Hit{RefPos: 5, ReadIndex: 0, NErrors: 0, ReadLen: 4})
	f.Register(Hit{RefPos: 2, ReadIndex: 1, NErrors: 0, ReadLen: 4})
	f.Register(Hit{RefPos: 9, ReadIndex: 2, NErrors: 0, ReadLen: 4})
	assert.NoError(t, f.Flush())

	assert.Len(t, c.hits, 3)
	for i := 1; i < len(c.hits); i++ {
		assert.LessOrEqual(t, c.hits[i-1].RefPos, c.hits[i].RefPos)
	}
}
