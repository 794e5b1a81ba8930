// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import "errors"

// Sentinel errors for packing and allocation.
var (
	// ErrEmptyInput is returned when the input string is empty.
	ErrEmptyInput = errors.New("empty input")
	// ErrDigitInputReservedChars is returned when the digit strategy is asked
	// to pack text that already contains one of its reserved token digits.
	ErrDigitInputReservedChars = errors.New("input contains a reserved digit token character")
	// ErrNoFreeTokens is returned by the allocator when no printable byte is
	// absent from the original text, so no character class can be built.
	ErrNoFreeTokens = errors.New("no tokens available")
	// ErrVerificationFailed is returned when the decode simulation does not
	// reproduce the original input byte-for-byte. This indicates a bug in
	// the allocator or artefact builder, never a property of the input.
	ErrVerificationFailed = errors.New("artefact verification failed")
	// ErrAllocatorInvariant is returned when the allocator's range-walk or
	// token cursor reaches an internally inconsistent state.
	ErrAllocatorInvariant = errors.New("allocator internal invariant broken")
	// ErrUnknownStrategy is returned when PackerOptions.Strategy names a
	// strategy Pack does not recognise.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrWorkerCancelled is delivered on a DigitWorkerHandle's Err channel
	// when Cancel stops the background digit worker before it produces a
	// result (worker.go's run, spec.md §5 "Cancellation").
	ErrWorkerCancelled = errors.New("worker cancelled")
	// ErrBudgetExhausted is informational: the background digit worker
	// stopped because MaxStates or TimeLimitMS was reached, not because it
	// failed. WorkerResult is still delivered on Done alongside this error
	// wrapped on Err for inspection with errors.Is.
	ErrBudgetExhausted = errors.New("search budget exhausted")
)
