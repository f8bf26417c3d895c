// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package matchererr pins down the error taxonomy shared by the
// matcher driver and the cmd/ binaries built on top of it: usage
// errors, input errors, the aligner's internal-consistency check, and
// sink errors. None of these are ever silently swallowed, and the
// matcher never retries.
package matchererr

import "fmt"

// UsageError indicates malformed command-line invocation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// InputError indicates a problem with the batch itself: heterogeneous
// read lengths, or non-integer/negative parameters.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// InternalConsistencyError wraps a failure of the aligner to
// reproduce the error count predicted by the bit-parallel pass. This
// always indicates a bug in the advancer or aligner.
type InternalConsistencyError struct {
	Cause error
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: %v", e.Cause)
}

func (e *InternalConsistencyError) Unwrap() error { return e.Cause }

// SinkError wraps a failure of the hit sink to accept a formatted
// line. The matcher never retries a SinkError.
type SinkError struct {
	Cause error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("hit sink error: %v", e.Cause)
}

func (e *SinkError) Unwrap() error { return e.Cause }
