package executor

import "time"

// BackoffPolicy selects how the delay between retry attempts grows.
type BackoffPolicy string

const (
	// BackoffFixed waits the same delay before every retry.
	BackoffFixed BackoffPolicy = "fixed"
	// BackoffExponential doubles the delay after each retry.
	BackoffExponential BackoffPolicy = "exponential"
)

// Valid returns true if the policy is a known value.
func (b BackoffPolicy) Valid() bool {
	switch b {
	case BackoffFixed, BackoffExponential:
		return true
	}
	return false
}

// Options bound one batch run.
type Options struct {
	// Concurrency is the maximum number of subtasks in flight at once.
	// Values below one are treated as one.
	Concurrency int
	// Timeout bounds each execution attempt. Zero means no ceiling.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration
	// Backoff selects the delay growth policy. Defaults to BackoffFixed.
	Backoff BackoffPolicy
}

// withDefaults normalizes out-of-range option values so RunBatch is total
// over any Options value.
func (o Options) withDefaults() Options {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if !o.Backoff.Valid() {
		o.Backoff = BackoffFixed
	}
	return o
}

// retryDelay returns the wait before the given 1-based retry.
func (o Options) retryDelay(retry int) time.Duration {
	if o.RetryDelay <= 0 {
		return 0
	}
	if o.Backoff == BackoffExponential {
		return o.RetryDelay * time.Duration(1<<uint(retry-1))
	}
	return o.RetryDelay
}
