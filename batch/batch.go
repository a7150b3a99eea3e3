// Package batch runs many queries concurrently and reports their outcomes
// in input order.
package batch

import (
	"context"
	"fmt"

	"github.com/fwojciec/lineq"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Runner.Concurrency is not positive.
const DefaultConcurrency = 4

// Job is one query to run.
type Job struct {
	Endpoint lineq.Endpoint
	Request  lineq.QueryRequest
}

// Runner runs jobs with bounded concurrency.
type Runner struct {
	// NewQuerier returns the querier used for an endpoint. Required.
	NewQuerier func(ep lineq.Endpoint) lineq.Querier

	// Limiter paces queries per endpoint address. Optional.
	Limiter lineq.EndpointLimiter

	// History records every outcome when set. Optional.
	History lineq.HistoryService

	Concurrency int
}

// Result holds the outcome of a batch.
type Result struct {
	// Outcomes are in the same order as the jobs.
	Outcomes []lineq.Outcome

	Succeeded int
	Failed    int

	// Skipped counts jobs never run, because the context was canceled or
	// the limiter failed. Their Outcomes carry an ESKIPPED error.
	Skipped int

	// Unrecorded counts outcomes the history service failed to store.
	Unrecorded int
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Job       Job
	Outcome   lineq.Outcome
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress. It is always
// called from the goroutine that called Run.
type ProgressFunc func(event ProgressEvent)

type jobResult struct {
	position int
	outcome  lineq.Outcome
	recorded bool
}

// Run executes every job and returns their outcomes. Client errors are
// outcomes, not failures of Run. Run fails when ctx is canceled (returning
// ctx.Err()) or the limiter fails (returning an ESKIPPED error); jobs not
// yet started are then skipped.
func (r *Runner) Run(ctx context.Context, jobs []Job, progress ProgressFunc) (*Result, error) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(jobs)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan jobResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	// runErr is written before resultCh is closed and read after it drains.
	var runErr error
	go func() {
		for i, job := range jobs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if r.Limiter != nil {
					if err := r.Limiter.Wait(gctx, job.Endpoint.Address()); err != nil {
						return err
					}
				}
				resultCh <- r.runJob(gctx, i, job)
				return nil
			})
		}
		runErr = g.Wait()
		close(resultCh)
	}()

	result := &Result{Outcomes: make([]lineq.Outcome, total)}
	ran := make([]bool, total)
	completed := 0
	for jr := range resultCh {
		completed++
		ran[jr.position] = true
		result.Outcomes[jr.position] = jr.outcome
		if !jr.recorded {
			result.Unrecorded++
		}

		typ := ProgressCompleted
		if jr.outcome.OK() {
			result.Succeeded++
		} else {
			result.Failed++
			typ = ProgressFailed
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      typ,
				Completed: completed,
				Total:     total,
				Job:       jobs[jr.position],
				Outcome:   jr.outcome,
			})
		}
	}

	if completed < total {
		result.Skipped = total - completed
		cause := ctx.Err()
		if cause == nil {
			cause = runErr
		}
		for i := range ran {
			if !ran[i] {
				result.Outcomes[i] = skippedOutcome(cause)
			}
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		return result, &lineq.Error{
			Code:    lineq.ESKIPPED,
			Message: fmt.Sprintf("Batch stopped after %d of %d queries.", completed, total),
			Err:     runErr,
		}
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return result, nil
}

// skippedOutcome marks a job that never ran.
func skippedOutcome(cause error) lineq.Outcome {
	return lineq.Outcome{Err: &lineq.Error{
		Code:    lineq.ESKIPPED,
		Message: "Query not run.",
		Err:     cause,
	}}
}

// runJob queries one job and records it when history is configured.
func (r *Runner) runJob(ctx context.Context, position int, job Job) jobResult {
	body, err := r.NewQuerier(job.Endpoint).Query(ctx, job.Request)
	jr := jobResult{
		position: position,
		outcome:  lineq.NewOutcome(body, err),
		recorded: true,
	}

	if r.History != nil {
		rec := lineq.NewRecord(job.Endpoint, job.Request, jr.outcome)
		if err := r.History.CreateRecord(ctx, rec); err != nil {
			jr.recorded = false
		}
	}
	return jr
}
