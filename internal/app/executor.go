package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

// Cache misses run through three steps: Perform → Verify → Archive.
//
//   1. PERFORM  - call the upstream (never trusted)
//   2. VERIFY   - turn the raw result into a domain value, or abandon
//   3. ARCHIVE  - persist the verified value; the archived value is returned
//
// Nothing is persisted unless Verify succeeds.

// ExecutionStep represents a step of an Operation.
type ExecutionStep string

const (
	StepPerform ExecutionStep = "perform"
	StepVerify  ExecutionStep = "verify"
	StepArchive ExecutionStep = "archive"
)

// ErrAbandoned is returned (wrapped) by a step that has nothing to do, e.g.
// the upstream has no quote for a date. Execute stops without logging an error
// and returns it unchanged.
var ErrAbandoned = errors.New("operation abandoned")

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step  ExecutionStep
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation defines the functions for each step.
type Operation[I, P, V any] struct {
	// Name identifies this operation for logging.
	Name string

	Perform func(ctx context.Context, input I) (P, error)
	Verify  func(ctx context.Context, input I, performed P) (V, error)

	// Archive persists verified and returns the value that ended up stored,
	// which is not necessarily verified itself.
	Archive func(ctx context.Context, input I, verified V) (V, error)
}

// Executor runs operations and logs each step.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Execute runs op for input. Steps left nil are skipped; a nil Verify passes
// the zero V on to Archive.
func Execute[I, P, V any](ctx context.Context, exec *Executor, op Operation[I, P, V], input I) (V, error) {
	var zero V

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	var performed P

	if op.Perform != nil {
		p, err := op.Perform(ctx, input)
		if err != nil {
			return zero, stepFailed(ctx, logger, StepPerform, err)
		}

		performed = p
	}

	var verified V

	if op.Verify != nil {
		v, err := op.Verify(ctx, input, performed)
		if err != nil {
			return zero, stepFailed(ctx, logger, StepVerify, err)
		}

		verified = v
	}

	if op.Archive != nil {
		archived, err := op.Archive(ctx, input, verified)
		if err != nil {
			return zero, stepFailed(ctx, logger, StepArchive, err)
		}

		verified = archived
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return verified, nil
}

func stepFailed(ctx context.Context, logger *slog.Logger, step ExecutionStep, err error) error {
	if errors.Is(err, ErrAbandoned) {
		logger.DebugContext(ctx, "operation abandoned", slog.String("step", string(step)), slog.Any("reason", err))

		return err
	}

	logger.ErrorContext(ctx, "step failed", slog.String("step", string(step)), slog.Any("error", err))

	return &ExecutionError{Step: step, Cause: err}
}

// executionStep extracts the step from an execution error.
func executionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
