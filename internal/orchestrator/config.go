package orchestrator

import (
	"fmt"
	"time"

	"github.com/ShayCichocki/flotilla/internal/executor"
)

// Config bounds one orchestrator run. Validation happens before the first
// state transition; an invalid config never starts a run.
type Config struct {
	// WorkerCount is the number of worker subtasks to decompose into.
	// Zero is valid and short-circuits the run to an empty result.
	WorkerCount int
	// ConcurrencyLimit caps in-flight executions within each tier batch.
	ConcurrencyLimit int
	// PerTaskTimeout bounds each execution attempt. A timed-out attempt is
	// a transient failure and subject to retry.
	PerTaskTimeout time.Duration
	// MaxRetries is the number of additional attempts after a transient
	// failure.
	MaxRetries int
	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
	// Backoff selects fixed or exponential retry delays. Empty means fixed.
	Backoff executor.BackoffPolicy
	// DomainHint selects the decomposition strategy when the root task
	// carries no hint of its own.
	DomainHint string
}

// Validate rejects configurations the run could not honor.
func (c Config) Validate() error {
	if c.WorkerCount < 0 {
		return fmt.Errorf("worker count %d is negative", c.WorkerCount)
	}
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("concurrency limit %d, need at least 1", c.ConcurrencyLimit)
	}
	if c.PerTaskTimeout <= 0 {
		return fmt.Errorf("per-task timeout %v, need a positive duration", c.PerTaskTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries %d is negative", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay %v is negative", c.RetryDelay)
	}
	if c.Backoff != "" && !c.Backoff.Valid() {
		return fmt.Errorf("unknown backoff policy %q", c.Backoff)
	}
	return nil
}

// executorOptions maps the run config onto the per-batch executor options.
// Every tier runs under the same bounds.
func (c Config) executorOptions() executor.Options {
	backoff := c.Backoff
	if backoff == "" {
		backoff = executor.BackoffFixed
	}
	return executor.Options{
		Concurrency: c.ConcurrencyLimit,
		Timeout:     c.PerTaskTimeout,
		MaxRetries:  c.MaxRetries,
		RetryDelay:  c.RetryDelay,
		Backoff:     backoff,
	}
}
