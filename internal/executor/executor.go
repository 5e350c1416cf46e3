// Package executor runs batches of subtasks against the agent pool under a
// concurrency limit, per-attempt timeout, and retry policy.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ShayCichocki/flotilla/internal/agent"
	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// Observer receives stream events as subtasks are dispatched, retried, and
// completed. Implementations must not block; slow consumers drop or buffer
// on their side.
type Observer interface {
	OnEvent(models.StreamEvent)
}

// Executor dispatches subtasks to pooled agents. One executor serves one
// run; the orchestrator creates a fresh instance per run.
type Executor struct {
	pool     *agent.Pool
	runID    string
	observer Observer
}

// New creates an Executor over pool. Events are stamped with runID and
// forwarded to obs, which may be nil.
func New(pool *agent.Pool, runID string, obs Observer) *Executor {
	return &Executor{pool: pool, runID: runID, observer: obs}
}

// RunBatch executes subs at the given tier and returns one terminal result
// per subtask, in input order, regardless of completion order. The batch
// never aborts on individual failures. On context cancellation, in-flight
// attempts finish but nothing new is dispatched or retried; subtasks that
// never dispatched get a failure result with zero attempts.
func (e *Executor) RunBatch(ctx context.Context, subs []*models.SubTask, tier models.Tier, opts Options) []*models.AgentResult {
	opts = opts.withDefaults()

	results := make([]*models.AgentResult, len(subs))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, sub := range subs {
		if ctx.Err() != nil {
			results[i] = e.undispatched(sub, tier, ctx.Err())
			continue
		}

		select {
		case sem <- struct{}{}:
			// A free slot and a cancelled context can race; re-check so
			// nothing dispatches after cancellation.
			if ctx.Err() != nil {
				<-sem
				results[i] = e.undispatched(sub, tier, ctx.Err())
				continue
			}
		case <-ctx.Done():
			results[i] = e.undispatched(sub, tier, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(i int, sub *models.SubTask) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.runOne(ctx, sub, tier, opts)
		}(i, sub)
	}

	wg.Wait()
	return results
}

// runOne drives a single subtask to a terminal result: acquire an agent,
// attempt with a per-attempt timeout, retry transient failures, and record
// the outcome on the agent before handing it back.
func (e *Executor) runOne(ctx context.Context, sub *models.SubTask, tier models.Tier, opts Options) *models.AgentResult {
	start := time.Now()

	ag, err := e.pool.Acquire(ctx, tier)
	if err != nil {
		res := &models.AgentResult{
			SubTaskID:   sub.ID,
			Tier:        tier,
			Success:     false,
			Error:       fmt.Sprintf("acquire agent: %v", err),
			Duration:    time.Since(start),
			CompletedAt: time.Now(),
		}
		e.emit(models.StreamEvent{
			Type:      models.EventSubTaskFailed,
			SubTaskID: sub.ID,
			Tier:      tier,
			Message:   res.Error,
		})
		return res
	}
	defer e.pool.Release(ag)

	e.emit(models.StreamEvent{
		Type:      models.EventSubTaskStarted,
		SubTaskID: sub.ID,
		AgentID:   ag.ID(),
		Tier:      tier,
		Attempt:   1,
		Message:   fmt.Sprintf("subtask %d/%d dispatched", sub.Index+1, sub.Total),
	})

	var resp *provider.Response
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if ctx.Err() != nil {
				break
			}
			delay := opts.retryDelay(attempt)
			e.emit(models.StreamEvent{
				Type:      models.EventSubTaskRetrying,
				SubTaskID: sub.ID,
				AgentID:   ag.ID(),
				Tier:      tier,
				Attempt:   attempt + 1,
				Message:   fmt.Sprintf("retrying in %v: %v", delay, lastErr),
			})
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
				}
				if ctx.Err() != nil {
					break
				}
			}
		}

		attempts++
		resp, lastErr = e.attempt(ctx, ag, sub, opts.Timeout)
		if lastErr == nil {
			break
		}
		if !retryable(lastErr) {
			break
		}
	}

	duration := time.Since(start)
	if lastErr == nil && resp != nil {
		ag.Complete(true, resp.Cost, duration)
		res := &models.AgentResult{
			SubTaskID:   sub.ID,
			AgentID:     ag.ID(),
			Tier:        tier,
			Success:     true,
			Output:      resp.Output,
			Attempts:    attempts,
			Duration:    duration,
			Cost:        resp.Cost,
			TokensUsed:  resp.TokensIn + resp.TokensOut,
			Citations:   resp.Citations,
			CompletedAt: time.Now(),
		}
		e.emit(models.StreamEvent{
			Type:      models.EventSubTaskCompleted,
			SubTaskID: sub.ID,
			AgentID:   ag.ID(),
			Tier:      tier,
			Attempt:   attempts,
			Message:   fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
		})
		return res
	}

	ag.Complete(false, 0, duration)
	res := &models.AgentResult{
		SubTaskID:   sub.ID,
		AgentID:     ag.ID(),
		Tier:        tier,
		Success:     false,
		Error:       lastErr.Error(),
		Attempts:    attempts,
		Duration:    duration,
		CompletedAt: time.Now(),
	}
	e.emit(models.StreamEvent{
		Type:      models.EventSubTaskFailed,
		SubTaskID: sub.ID,
		AgentID:   ag.ID(),
		Tier:      tier,
		Attempt:   attempts,
		Message:   fmt.Sprintf("failed after %d attempt(s): %v", attempts, lastErr),
	})
	return res
}

// attempt runs one provider call. The attempt context is detached from the
// batch context so cancelling the batch never kills an attempt in flight;
// only the per-attempt timeout bounds it.
func (e *Executor) attempt(ctx context.Context, ag *agent.Agent, sub *models.SubTask, timeout time.Duration) (*provider.Response, error) {
	attemptCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(attemptCtx, timeout)
		defer cancel()
	}
	return ag.Run(attemptCtx, sub)
}

// undispatched builds the terminal result for a subtask the batch was
// cancelled out of before it ever reached an agent.
func (e *Executor) undispatched(sub *models.SubTask, tier models.Tier, cause error) *models.AgentResult {
	res := &models.AgentResult{
		SubTaskID:   sub.ID,
		Tier:        tier,
		Success:     false,
		Error:       fmt.Sprintf("not dispatched: %v", cause),
		Attempts:    0,
		CompletedAt: time.Now(),
	}
	e.emit(models.StreamEvent{
		Type:      models.EventSubTaskFailed,
		SubTaskID: sub.ID,
		Tier:      tier,
		Message:   res.Error,
	})
	return res
}

func (e *Executor) emit(ev models.StreamEvent) {
	if e.observer == nil {
		return
	}
	ev.RunID = e.runID
	ev.Timestamp = time.Now()
	e.observer.OnEvent(ev)
}

// retryable reports whether an attempt error warrants another attempt.
// Per-attempt timeouts are transient; provider errors carry their own flag.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return provider.IsRetryable(err)
}
