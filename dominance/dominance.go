// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package dominance implements the hit-dominance filter: it watches
// candidate hits emitted from the frontier's terminal row and
// deduplicates shifted/extended duplicates of the same read while
// preserving true best hits, using a dominance relation over a
// sliding window.
package dominance

// Hit is a candidate match: ref_pos is the 0-based reference position
// at which the match ends, ReadIndex identifies the read within its
// batch, NErrors is the predicted edit count, and ReadLen is the
// read's length.
type Hit struct {
	RefPos    int
	ReadIndex int
	NErrors   int
	ReadLen   int
}

// Dominates reports whether h dominates other: same read, and the
// reference-position gap is no larger than the error-count
// improvement. Two hits of the same read whose positions differ by d
// cannot both be independent alignments if one has at least d fewer
// errors -- the lower-error hit can be extended/shifted by indels
// into the higher-error one.
func (h Hit) Dominates(other Hit) bool {
	if h.ReadIndex != other.ReadIndex {
		return false
	}
	d := other.RefPos - h.RefPos
	if d < 0 {
		d = -d
	}
	return d <= other.NErrors-h.NErrors
}

// Sink receives hits once their dominance window has closed, in
// non-decreasing RefPos order.
type Sink interface {
	Accept(h Hit) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(h Hit) error

func (f SinkFunc) Accept(h Hit) error { return f(h) }

// Filter maintains the set of live (not yet dominated, not yet
// emitted) hits. Its window size in steady state is bounded by the
// number of concurrently-live reads whose dominance radius overlaps
// the current reference position -- in practice small, since K/C is
// small -- so a flat slice with linear scan is adequate.
type Filter struct {
	k    int
	live []Hit
	sink Sink
}

// NewFilter creates a dominance filter that forwards surviving hits
// to sink once they can no longer be dominated, i.e. once
// ref_pos + k < cur_pos for the driver's current reference position.
func NewFilter(k int, sink Sink) *Filter {
	return &Filter{k: k, sink: sink}
}

// Register adds a newly observed candidate hit to the live set,
// applying the dominance relation: if any live hit dominates h, h is
// discarded; otherwise h is appended and every live hit that h
// dominates is removed. Registering the same hit twice is idempotent:
// the second registration is dominated by (or equal to) the first and
// is discarded.
func (f *Filter) Register(h Hit) {
	for _, live := range f.live {
		if live.Dominates(h) {
			return
		}
	}
	kept := f.live[:0]
	for _, live := range f.live {
		if !h.Dominates(live) {
			kept = append(kept, live)
		}
	}
	f.live = append(kept, h)
}

// Advance emits every live hit that can no longer be reached by a
// future dominator -- ref_pos + k < curPos -- in non-decreasing
// RefPos order, and removes them from the live set. With flush set
// (end of reference) every live hit is emitted regardless of curPos;
// Flush is the shorthand for that call.
func (f *Filter) Advance(curPos int, flush bool) error {
	kept := f.live[:0]
	var toEmit []Hit
	for _, h := range f.live {
		if flush || h.RefPos+f.k < curPos {
			toEmit = append(toEmit, h)
		} else {
			kept = append(kept, h)
		}
	}
	f.live = kept

	sortByRefPos(toEmit)
	for _, h := range toEmit {
		if err := f.sink.Accept(h); err != nil {
			return err
		}
	}
	return nil
}

// Flush emits every remaining live hit, for end of reference.
func (f *Filter) Flush() error {
	return f.Advance(0, true)
}

// sortByRefPos is a small insertion sort: toEmit is always short (the
// dominance window is bounded by roughly K/C+1 per read), so this
// avoids pulling in sort.Slice's reflection overhead for the common
// case.
func sortByRefPos(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j-1].RefPos > hits[j].RefPos; j-- {
			hits[j-1], hits[j] = hits[j], hits[j-1]
		}
	}
}
