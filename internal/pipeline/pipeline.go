// Package pipeline models the provisioning run as an explicit ordered list
// of idempotent steps executed by a small fail-fast runner.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Step is one ordered unit of the provisioning pipeline.
//
// Done is the idempotency predicate: when it reports true, the step's
// postcondition already holds and Run is not invoked. Run performs the
// mutation. Verify, if set, re-checks the postcondition after Run and its
// error is treated exactly like a Run error. Done and Verify are optional.
type Step struct {
	Name   string
	Done   func(ctx context.Context) (bool, error)
	Run    func(ctx context.Context) error
	Verify func(ctx context.Context) error
}

// StepStatus is the terminal state of a step within one run.
type StepStatus string

const (
	StatusCompleted StepStatus = "completed"
	StatusSkipped   StepStatus = "skipped"
	StatusFailed    StepStatus = "failed"
)

// StepResult records the outcome of a single step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Runner executes steps strictly in order, halting on the first fatal
// error. There is no retry and no rollback; re-running the whole pipeline
// is the recovery path, which the steps' idempotency makes safe.
type Runner struct {
	logger *slog.Logger
	steps  []Step
}

// NewRunner creates a runner over the given ordered steps.
func NewRunner(logger *slog.Logger, steps []Step) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger, steps: steps}
}

// Run executes every step in order. It returns the results of all steps
// that started, and the first fatal error, if any. Steps after a failure
// are never started.
func (r *Runner) Run(ctx context.Context) ([]StepResult, error) {
	results := make([]StepResult, 0, len(r.steps))

	for i, step := range r.steps {
		log := r.logger.With("step", step.Name, "index", i+1, "total", len(r.steps))
		start := time.Now()

		if step.Done != nil {
			done, err := step.Done(ctx)
			if err != nil {
				results = append(results, StepResult{
					Name:     step.Name,
					Status:   StatusFailed,
					Duration: time.Since(start),
					Error:    err.Error(),
				})
				log.Error("precondition check failed", "error", err)
				return results, err
			}
			if done {
				results = append(results, StepResult{
					Name:     step.Name,
					Status:   StatusSkipped,
					Duration: time.Since(start),
				})
				log.Info("already satisfied, skipping")
				continue
			}
		}

		log.Info("running")
		err := step.Run(ctx)
		if err == nil && step.Verify != nil {
			err = step.Verify(ctx)
		}
		if err != nil {
			results = append(results, StepResult{
				Name:     step.Name,
				Status:   StatusFailed,
				Duration: time.Since(start),
				Error:    err.Error(),
			})
			log.Error("failed", "error", err, "duration", time.Since(start))
			return results, err
		}

		results = append(results, StepResult{
			Name:     step.Name,
			Status:   StatusCompleted,
			Duration: time.Since(start),
		})
		log.Info("done", "duration", time.Since(start))
	}

	return results, nil
}
