// Copyright 2017, Kerby Shedden and the Muscato contributors.

package matcher

import (
	"testing"

	"github.com/ralic/gnu-myrialign/nucleotide"
	"github.com/stretchr/testify/assert"
)

func encode(s string) []nucleotide.Code {
	return nucleotide.EncodeSeq([]byte(s))
}

type lineCollector struct {
	lines []string
}

func (c *lineCollector) Emit(line string) error {
	c.lines = append(c.lines, line)
	return nil
}

func TestExactMatch(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGTA")},
		ReadNames: []string{"r1"},
		MaxErrors: 0,
		IndelCost: 1,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Equal(t, []string{"r1 0 2..5 CGTA CGTA"}, c.lines)
}

func TestSubstitution(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGAA")},
		ReadNames: []string{"r1"},
		MaxErrors: 1,
		IndelCost: 3,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Equal(t, []string{"r1 1 2..5 CGAA CGTA"}, c.lines)
}

func TestInsertionInRead(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGTTA")},
		ReadNames: []string{"r1"},
		MaxErrors: 3,
		IndelCost: 3,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Equal(t, []string{"r1 3 2..5 CGTTA CG-TA"}, c.lines)
}

func TestDeletionInRead(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGA")},
		ReadNames: []string{"r1"},
		MaxErrors: 3,
		IndelCost: 3,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Equal(t, []string{"r1 3 2..5 CG-A CGTA"}, c.lines)
}

func TestNInRead(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGNA")},
		ReadNames: []string{"r1"},
		MaxErrors: 1,
		IndelCost: 3,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Len(t, c.lines, 1)
	assert.Equal(t, "r1 1 2..5 CGNA CGTA", c.lines[0])
}

func TestDominanceSuppression(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGTA")},
		ReadNames: []string{"r1"},
		MaxErrors: 2,
		IndelCost: 3,
	}
	assert.NoError(t, Run(b, c, nil))
	assert.Contains(t, c.lines, "r1 0 2..5 CGTA CGTA")
	for _, line := range c.lines {
		assert.NotContains(t, line, "r1 1 1..4")
		assert.NotContains(t, line, "r1 1 2..5")
		assert.NotContains(t, line, "r1 1 3..6")
	}
}

func TestHeterogeneousReadLengthsRejected(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGTA"), encode("CGTAC")},
		ReadNames: []string{"r1", "r2"},
		MaxErrors: 0,
		IndelCost: 1,
	}
	err := Run(b, c, nil)
	assert.Error(t, err)
}

func TestCooperativeCancellation(t *testing.T) {
	c := &lineCollector{}
	b := Batch{
		Reference: encode("ACGTACGTACGTACGT"),
		Reads:     [][]nucleotide.Code{encode("CGTA")},
		ReadNames: []string{"r1"},
		MaxErrors: 0,
		IndelCost: 1,
	}
	calls := 0
	err := Run(b, c, func() bool {
		calls++
		return calls >= 2
	})
	assert.NoError(t, err)
	assert.Empty(t, c.lines, "cancelling before the dominance window closes should emit nothing")
}
