package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Executor runs at most one batch at a time on a background goroutine.
// A submission while a batch is in flight is rejected with ErrBusy; batches
// are never queued, replaced, or interleaved.
type Executor struct {
	runner     Runner
	logger     *slog.Logger
	onComplete func(Result, time.Time)
	onProgress func(Progress)
	mu         sync.Mutex
	busy       bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithCompletionHook registers fn to run on the worker goroutine after the
// last target finishes and before the Result is delivered. started is the
// time the worker began.
func WithCompletionHook(fn func(r Result, started time.Time)) Option {
	return func(e *Executor) {
		e.onComplete = fn
	}
}

// WithProgress registers fn to be called on the worker goroutine after each
// target finishes.
func WithProgress(fn func(Progress)) Option {
	return func(e *Executor) {
		e.onProgress = fn
	}
}

// NewExecutor creates an Executor that applies changes through runner.
func NewExecutor(runner Runner, opts ...Option) *Executor {
	e := &Executor{
		runner: runner,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Busy reports whether a batch is currently running.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.busy
}

// Submit starts a batch and returns immediately. The returned channel
// delivers exactly one Result and is then closed. An empty batch is answered
// at once without starting a worker. targets is copied before Submit returns.
func (e *Executor) Submit(ctx context.Context, op Operation, targets []string) (<-chan Result, error) {
	return e.SubmitWithLogger(ctx, e.logger, op, targets)
}

// SubmitWithLogger is Submit with the batch's start, rejection and finish
// logged to logger instead of the executor's own.
func (e *Executor) SubmitWithLogger(ctx context.Context, logger *slog.Logger, op Operation, targets []string) (<-chan Result, error) {
	ch := make(chan Result, 1)

	if len(targets) == 0 {
		ch <- Run(ctx, e.runner, op, nil, nil)
		close(ch)

		return ch, nil
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		logger.Warn("batch rejected, another batch is running",
			slog.String("op", op.String()),
			slog.Int("targets", len(targets)))

		return nil, ErrBusy
	}
	e.busy = true
	e.mu.Unlock()

	owned := make([]string, len(targets))
	copy(owned, targets)

	logger.Info("batch started",
		slog.String("op", op.String()),
		slog.Int("targets", len(owned)))

	go e.work(ctx, logger, op, owned, ch)

	return ch, nil
}

func (e *Executor) work(ctx context.Context, logger *slog.Logger, op Operation, targets []string, ch chan<- Result) {
	started := time.Now()

	result := Run(ctx, e.runner, op, targets, e.onProgress)

	logger.Info("batch finished",
		slog.String("op", op.String()),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
		slog.Duration("elapsed", time.Since(started)))

	if e.onComplete != nil {
		e.onComplete(result, started)
	}

	// Clear busy before delivering so a receiver can submit the next batch
	// as soon as it sees the result.
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()

	ch <- result
	close(ch)
}
