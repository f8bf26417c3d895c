// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package matcher is the Driver that composes the four core
// components -- bit-packing, frontier advancer, dominance filter, and
// band-limited aligner -- into a single batch scan: for each
// reference nucleotide it advances the frontier, inspects the
// terminal row, registers candidate hits with the dominance filter,
// and drains any hits whose dominance window has passed. When the
// reference ends, it flushes.
package matcher

import (
	"fmt"

	"github.com/ralic/gnu-myrialign/bandalign"
	"github.com/ralic/gnu-myrialign/bitpack"
	"github.com/ralic/gnu-myrialign/dominance"
	"github.com/ralic/gnu-myrialign/frontier"
	"github.com/ralic/gnu-myrialign/matchererr"
	"github.com/ralic/gnu-myrialign/nucleotide"
)

// HitSink receives one formatted hit line per accepted hit.
type HitSink interface {
	Emit(line string) error
}

// HitSinkFunc adapts a plain function to HitSink.
type HitSinkFunc func(line string) error

func (f HitSinkFunc) Emit(line string) error { return f(line) }

// Batch is one driver invocation: a single reference, a single
// length-homogeneous group of reads, and the edit-model parameters.
type Batch struct {
	Reference []nucleotide.Code
	Reads     [][]nucleotide.Code
	ReadNames []string
	MaxErrors int // K
	IndelCost int // C
}

// validate checks the batch-level InputErrors described in §7: reads
// must share one length, K must be non-negative, C must be positive.
func (b *Batch) validate() error {
	if b.MaxErrors < 0 {
		return &matchererr.InputError{Msg: "max_errors must be non-negative"}
	}
	if b.IndelCost < 1 {
		return &matchererr.InputError{Msg: "indel_cost must be a positive integer"}
	}
	if len(b.ReadNames) != len(b.Reads) {
		return &matchererr.InputError{Msg: "read_names and reads must have the same length"}
	}
	if len(b.Reads) == 0 {
		return nil
	}
	l := len(b.Reads[0])
	for i, r := range b.Reads {
		if len(r) != l {
			return &matchererr.InputError{
				Msg: fmt.Sprintf("heterogeneous read lengths in batch: read 0 has length %d, read %d has length %d", l, i, len(r)),
			}
		}
	}
	return nil
}

// Run scans the whole reference against the batch, emitting accepted
// hits to sink. cancel, if non-nil, is checked cooperatively between
// reference positions; Run returns early (with a nil error) the first
// time it returns true. There are no timeouts inside the kernel.
func Run(b Batch, sink HitSink, cancel func() bool) error {
	if err := b.validate(); err != nil {
		return err
	}
	if len(b.Reads) == 0 || len(b.Reference) == 0 {
		return nil
	}

	l := len(b.Reads[0])
	n := len(b.Reads)
	k := b.MaxErrors

	nm := frontier.BuildNucMask(b.Reads, l, n)
	fin := frontier.Initial(k, l, n, b.IndelCost)
	fout := frontier.New(k, l, n)

	// N never matches anything, so the nucmask slice for a reference
	// N is the all-zero matrix; a single shared zero row, reused at
	// every read position, stands in for it without allocating a
	// full (L, words) matrix.
	zeroRow := make([]bitpack.Word, bitpack.NumWords(n))
	zeroRows := make([][]bitpack.Word, l)
	for p := range zeroRows {
		zeroRows[p] = zeroRow
	}

	relay := &hitRelay{
		reference: b.Reference,
		reads:     b.Reads,
		readNames: b.ReadNames,
		k:         k,
		c:         b.IndelCost,
		sink:      sink,
	}
	filter := dominance.NewFilter(k, relay)

	for pos, v := range b.Reference {
		m := zeroRows
		if int(v) < 4 {
			m = nm.Mask[v]
		}

		frontier.Advance(fin, fout, m, b.IndelCost)
		fin, fout = fout, fin

		for r := 0; r < n; r++ {
			if e, ok := fin.MinTerminalError(r); ok {
				filter.Register(dominance.Hit{RefPos: pos, ReadIndex: r, NErrors: e, ReadLen: l})
			}
		}

		if err := filter.Advance(pos, false); err != nil {
			return err
		}

		if cancel != nil && cancel() {
			return nil
		}
	}

	return filter.Flush()
}

// hitRelay adapts a confirmed dominance.Hit into a reconstructed
// alignment and a formatted line on sink.
type hitRelay struct {
	reference []nucleotide.Code
	reads     [][]nucleotide.Code
	readNames []string
	k, c      int
	sink      HitSink
}

func (r *hitRelay) Accept(h dominance.Hit) error {
	res, err := bandalign.Align(r.reads[h.ReadIndex], r.reference, h.RefPos, r.k, r.c, h.NErrors)
	if err != nil {
		if _, ok := err.(*bandalign.ErrInternalConsistency); ok {
			return &matchererr.InternalConsistencyError{Cause: err}
		}
		return err
	}

	line := fmt.Sprintf("%s %d %d..%d %s %s",
		r.readNames[h.ReadIndex], res.NErrors, res.RefStart1, res.RefEnd1, res.ReadAlign, res.RefAlign)

	if err := r.sink.Emit(line); err != nil {
		return &matchererr.SinkError{Cause: err}
	}
	return nil
}
