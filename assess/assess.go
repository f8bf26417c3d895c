// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package assess reimplements myrialign/assess.py's sampling and
// ambiguity-reporting utility: a quick-turnaround way to check
// alignment quality on a representative subset of reads without
// re-aligning the full collection.
package assess

import (
	"math/rand"

	"github.com/ralic/gnu-myrialign/seqio"
	"github.com/willf/bloom"
)

// Sample performs reservoir sampling of n reads across one or more
// read collections, following assess.py's sample/callback: each read
// seen is included with probability n/i at the i-th read, replacing a
// uniformly random existing sample slot. Duplicate read names across
// files are suppressed with a small Bloom filter, mirroring muscato's
// own Bloom-sketch-of-reads idea.
func Sample(rng *rand.Rand, reads []seqio.Read, n int) []seqio.Read {
	if n <= 0 {
		return nil
	}
	filter := bloom.NewWithEstimates(uint(max(len(reads), 1)), 0.01)

	samples := make([]seqio.Read, 0, n)
	seen := 0
	for _, r := range reads {
		key := []byte(r.Name)
		if filter.Test(key) {
			continue
		}
		filter.Add(key)

		seen++
		if len(samples) < n {
			samples = append(samples, r)
		} else if rng.Float64()*float64(seen) < float64(n) {
			samples[rng.Intn(n)] = r
		}
	}
	return samples
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// HitRecord is one alignment result for a sampled read, as produced
// by matcher.Run and parsed back out of its formatted hit lines.
type HitRecord struct {
	ReadName  string
	NErrors   int
	ReadAlign string
	RefAlign  string
}

// Summary reproduces assess.py:main's per-read ambiguity check and
// its three histograms.
type Summary struct {
	NAmbiguous     int
	NUnhit         int
	ErrorCount     []int // indexed by n_errors, length maxErrors+1
	ErrorPosCount  []int // indexed by position within the read
	IndelPosCount  []int // indexed by position within the read
}

// Summarize groups hits by read name, and for each sampled read
// compares its best and second-best hit: a read is "ambiguous" if the
// best hit is not at least 2 errors better than the second-best. This
// is assess.py's exact rule: hits[name][0][0]+2 > hits[name][1][0].
func Summarize(sampled []seqio.Read, hits map[string][]HitRecord, maxErrors, maxLength int) Summary {
	s := Summary{
		ErrorCount:    make([]int, maxErrors+1),
		ErrorPosCount: make([]int, maxLength),
		IndelPosCount: make([]int, maxLength),
	}

	for _, read := range sampled {
		rhits := hits[read.Name]
		if len(rhits) == 0 {
			s.NUnhit++
			continue
		}
		best := rhits[0]
		for _, h := range rhits[1:] {
			if h.NErrors < best.NErrors {
				best = h
			}
		}
		if len(rhits) > 1 {
			second := secondBest(rhits, best)
			if second != nil && best.NErrors+2 > second.NErrors {
				s.NAmbiguous++
				continue
			}
		}

		if best.NErrors <= maxErrors {
			s.ErrorCount[best.NErrors]++
		}
		tallyPositions(best, s.ErrorPosCount, s.IndelPosCount)
	}

	return s
}

func secondBest(hits []HitRecord, best HitRecord) *HitRecord {
	var second *HitRecord
	skippedBest := false
	for i := range hits {
		h := &hits[i]
		if !skippedBest && h.NErrors == best.NErrors && h.ReadAlign == best.ReadAlign && h.RefAlign == best.RefAlign {
			skippedBest = true
			continue
		}
		if second == nil || h.NErrors < second.NErrors {
			second = h
		}
	}
	return second
}

// tallyPositions walks the aligned strings and increments the
// per-position error and indel histograms.
func tallyPositions(h HitRecord, errorPos, indelPos []int) {
	pos := 0
	for i := 0; i < len(h.ReadAlign) && pos < len(errorPos); i++ {
		rb, fb := h.ReadAlign[i], h.RefAlign[i]
		if rb == '-' || fb == '-' {
			indelPos[pos]++
			errorPos[pos]++
		} else if rb != fb {
			errorPos[pos]++
		}
		if rb != '-' {
			pos++
		}
	}
}
