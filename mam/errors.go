package mam

import (
	"errors"
	"fmt"

	"github.com/iotaledger/iota.go/trinary"
)

// ErrInvalidAddress indicates a root that is not an 81-tryte hash.
var ErrInvalidAddress = errors.New("invalid address root")

// ConfigurationError reports an invalid channel configuration request, such
// as an unknown mode or a restricted mode without a side key. Configuration
// problems never mutate channel state; callers decide how to surface them.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// DecodeError reports a bundle payload that could not be unmasked at a
// given root. Traversal recovers from these locally: the candidate is
// skipped and the loop continues.
type DecodeError struct {
	Root trinary.Hash
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode at root %s: %v", e.Root, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SubmissionError reports a ledger rejection or timeout during attach.
// Submission failures are fatal and propagate to the caller.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission: %s: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// TraversalError reports a fetch failure mid-chain. The traversal result
// accompanying it is possibly partial, not exhaustive.
type TraversalError struct {
	Root trinary.Hash
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversal aborted at root %s: %v", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }
