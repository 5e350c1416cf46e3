package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider with a token-bucket limit on call rate. It
// sits at the provider boundary; construct one instance per process and hand
// it to everything that executes requests.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

var _ Provider = (*RateLimited)(nil)

// NewRateLimited wraps next with a limit of callsPerMinute and the given
// burst. A burst below 1 is clamped to 1 so the limiter can make progress.
func NewRateLimited(next Provider, callsPerMinute float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(callsPerMinute/60.0), burst),
	}
}

// Name identifies the wrapped provider.
func (r *RateLimited) Name() string { return r.next.Name() }

// Execute blocks until the limiter grants capacity, then delegates.
func (r *RateLimited) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Execute(ctx, req)
}
