// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ProgressMessage is one of the worker's asynchronous progress reports
// (spec.md §5, "progress messages (a real in [0,1], a phase label, a
// human message, optional detail)").
type ProgressMessage struct {
	Fraction float64
	Phase    string
	Message  string
	Detail   string
}

// WorkerResult is the worker's final report: final text, replacement
// list, total gain, nodes explored and wall-clock time. It carries no
// artefact size and no search graph.
type WorkerResult struct {
	Text          string
	Replacements  []Replacement
	TotalGain     float64
	NodesExplored int
	WallClock     time.Duration
}

// DigitWorkerHandle is the caller's view of a background digit search,
// grounded on miny.go's `messages := make(chan MinpackResult, 5)` /
// `go find_packed_size_func(...)` fan-out-fan-in shape and on
// tscrunch.go's sync.WaitGroup-gated worker pool, adapted from "N
// parallel full packs" to "one cancellable background beam search with
// a progress channel".
type DigitWorkerHandle struct {
	progress chan ProgressMessage
	result   chan WorkerResult
	errc     chan error
	cancel   context.CancelFunc
	resume   chan struct{}
	once     sync.Once
}

// Progress returns the channel of progress messages. It is closed once
// Run's background goroutine exits.
func (h *DigitWorkerHandle) Progress() <-chan ProgressMessage { return h.progress }

// Done returns the channel the final WorkerResult is delivered on.
func (h *DigitWorkerHandle) Done() <-chan WorkerResult { return h.result }

// Err returns the channel an error, if any, is delivered on.
func (h *DigitWorkerHandle) Err() <-chan error { return h.errc }

// Cancel stops the worker. Per spec.md §5, the worker is not required
// to emit a final message once cancelled.
func (h *DigitWorkerHandle) Cancel() { h.cancel() }

// Resume releases a worker started with WaitingForTrigger set. Calling
// it more than once is a no-op.
func (h *DigitWorkerHandle) Resume() {
	h.once.Do(func() { close(h.resume) })
}

// PackDigitAsync starts the digit-token search on a background
// goroutine and returns immediately with a handle for progress,
// result and cancellation.
func PackDigitAsync(input string, opts *PackerOptions) *DigitWorkerHandle {
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	h := &DigitWorkerHandle{
		progress: make(chan ProgressMessage, 16),
		result:   make(chan WorkerResult, 1),
		errc:     make(chan error, 1),
		cancel:   cancel,
		resume:   make(chan struct{}),
	}
	if !opts.WaitingForTrigger {
		close(h.resume)
	}

	go h.run(ctx, input, opts)
	return h
}

func (h *DigitWorkerHandle) run(ctx context.Context, input string, opts *PackerOptions) {
	defer close(h.progress)

	select {
	case <-h.resume:
	case <-ctx.Done():
		h.errc <- ErrWorkerCancelled
		return
	}

	dr := newDigitReplacer(opts)
	if err := dr.checkReservedChars(input); err != nil {
		h.errc <- err
		return
	}

	start := time.Now()
	deadline := start.Add(time.Duration(opts.TimeLimitMS) * time.Millisecond)
	nodes := 0
	cancelled := false
	budgetExhausted := false

	h.progress <- ProgressMessage{Phase: "search", Message: "starting digit search"}

	budget := func() bool {
		nodes++
		select {
		case <-ctx.Done():
			cancelled = true
			return false
		default:
		}
		if nodes >= opts.MaxStates {
			budgetExhausted = true
			h.progress <- ProgressMessage{Fraction: 1, Phase: "timeout", Message: "state budget exhausted"}
			return false
		}
		if time.Now().After(deadline) {
			budgetExhausted = true
			h.progress <- ProgressMessage{Fraction: 1, Phase: "timeout", Message: "time budget exhausted"}
			return false
		}
		if nodes%50 == 0 {
			frac := float64(nodes) / float64(opts.MaxStates)
			if frac > 1 {
				frac = 1
			}
			h.progress <- ProgressMessage{Fraction: frac, Phase: "search", Message: "searching"}
		}
		return true
	}

	result, totalGain := dr.Run(input, budget)

	if cancelled {
		h.errc <- ErrWorkerCancelled
		return
	}
	select {
	case <-ctx.Done():
		h.errc <- ErrWorkerCancelled
		return
	default:
	}

	h.progress <- ProgressMessage{Fraction: 1, Phase: "done", Message: "search complete"}
	h.result <- WorkerResult{
		Text:          result.FinalText,
		Replacements:  result.Replacements,
		TotalGain:     totalGain,
		NodesExplored: nodes,
		WallClock:     time.Since(start),
	}
	if budgetExhausted {
		h.errc <- fmt.Errorf("%w: explored %d states in %s", ErrBudgetExhausted, nodes, time.Since(start))
	}
}
