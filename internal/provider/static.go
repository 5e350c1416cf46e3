package provider

import (
	"context"
	"fmt"
	"time"
)

// StaticConfig contains configuration for the static provider.
type StaticConfig struct {
	// Delay simulates call latency. Zero means respond immediately.
	Delay time.Duration
	// Handler produces the output for a request. When nil, a deterministic
	// summary of the instruction is returned.
	Handler func(Request) string
}

// Static is a deterministic offline provider. It needs no credentials and is
// used for dry runs and examples.
type Static struct {
	delay   time.Duration
	handler func(Request) string
}

var _ Provider = (*Static)(nil)

// NewStatic creates a static provider.
func NewStatic(cfg StaticConfig) *Static {
	return &Static{
		delay:   cfg.Delay,
		handler: cfg.Handler,
	}
}

// Name identifies the provider.
func (s *Static) Name() string { return "static" }

// Execute returns the configured canned output, honoring cancellation during
// the simulated latency window.
func (s *Static) Execute(ctx context.Context, req Request) (*Response, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	output := ""
	if s.handler != nil {
		output = s.handler(req)
	} else {
		output = fmt.Sprintf("[static] completed: %s", truncate(req.Instruction, 120))
	}

	return &Response{Output: output}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
