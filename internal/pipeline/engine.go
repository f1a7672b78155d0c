// Package pipeline provides the sequential build pipeline engine.
//
// A pipeline is an ordered list of steps, each a precondition for the next.
// Execution is strictly sequential and fail-fast: the first step error
// aborts the run. Every external command behind a step runs exactly once
// per run; there are no retries.
//
// Steps may register finalizers (environment teardown, intermediate
// artifact removal). Finalizers run on every exit path, including failure
// and interruption, and their own failures are downgraded to warnings: by
// teardown time a packaged artifact may already exist on disk and must not
// be reported as a failed build.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Step statuses recorded in StepResult.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusWarning   = "warning"
)

// Step is one unit of work in the pipeline.
type Step struct {
	// Name identifies the step in logs and results.
	Name string

	// Run performs the work. A returned error aborts the pipeline.
	Run func(ctx context.Context) error
}

// StepResult captures the outcome of a single step for reporting.
type StepResult struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Run is one pipeline execution. It owns the step results and the finalizer
// stack. A Run is single-use and not safe for concurrent use: the pipeline
// assumes no concurrent run of itself against the same project.
type Run struct {
	id         string
	logger     zerolog.Logger
	results    []StepResult
	finalizers []Step
}

// NewRun creates a pipeline run with a fresh correlation ID.
func NewRun(logger zerolog.Logger) *Run {
	id := uuid.NewString()[:8]
	return &Run{
		id:     id,
		logger: logger.With().Str("run_id", id).Logger(),
	}
}

// ID returns the run's correlation ID.
func (r *Run) ID() string {
	return r.id
}

// Results returns the recorded step results in execution order, finalizers
// included.
func (r *Run) Results() []StepResult {
	return r.results
}

// Defer registers a finalizer to run when the pipeline finishes, whether it
// succeeded or not. Finalizers run in reverse registration order, mirroring
// defer semantics: the resource acquired first is released last.
func (r *Run) Defer(step Step) {
	r.finalizers = append(r.finalizers, step)
}

// Execute runs the steps in order, stopping at the first failure, then runs
// all registered finalizers. The returned error is the failing step's error;
// finalizer failures are logged as warnings and never override it.
func (r *Run) Execute(ctx context.Context, steps []Step) error {
	ctx = r.logger.WithContext(ctx)

	var runErr error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := r.executeStep(ctx, step); err != nil {
			runErr = err
			break
		}
	}

	// Finalizers run even when the context is canceled: teardown of the
	// dependency environment must not be skipped on Ctrl+C.
	r.runFinalizers(context.WithoutCancel(ctx))

	return runErr
}

// executeStep runs a single step, logging start and outcome with duration.
func (r *Run) executeStep(ctx context.Context, step Step) error {
	r.logger.Info().Str("step", step.Name).Msg("executing step")

	start := time.Now()
	err := step.Run(ctx)
	completed := time.Now()
	duration := completed.Sub(start)

	result := StepResult{
		Name:        step.Name,
		Status:      StatusCompleted,
		DurationMs:  duration.Milliseconds(),
		StartedAt:   start,
		CompletedAt: completed,
	}

	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		r.results = append(r.results, result)
		r.logger.Error().
			Str("step", step.Name).
			Int64("duration_ms", duration.Milliseconds()).
			Err(err).
			Msg("step failed")
		return err
	}

	r.results = append(r.results, result)
	r.logger.Info().
		Str("step", step.Name).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("step completed")
	return nil
}

// runFinalizers drains the finalizer stack in LIFO order. Failures are
// downgraded to warnings so an otherwise successful run stays successful.
func (r *Run) runFinalizers(ctx context.Context) {
	for i := len(r.finalizers) - 1; i >= 0; i-- {
		step := r.finalizers[i]

		start := time.Now()
		err := step.Run(ctx)
		completed := time.Now()

		result := StepResult{
			Name:        step.Name,
			Status:      StatusCompleted,
			DurationMs:  completed.Sub(start).Milliseconds(),
			StartedAt:   start,
			CompletedAt: completed,
		}

		if err != nil {
			result.Status = StatusWarning
			result.Error = err.Error()
			r.logger.Warn().
				Str("step", step.Name).
				Err(err).
				Msg("cleanup failed, continuing")
		} else {
			r.logger.Debug().Str("step", step.Name).Msg("cleanup completed")
		}

		r.results = append(r.results, result)
	}
	r.finalizers = nil
}
