// Package orchestrator coordinates a full run: decompose the root task,
// execute workers under bounded concurrency, then synthesize tier by tier
// until one final output exists.
package orchestrator

import (
	"github.com/ShayCichocki/flotilla/internal/decompose"
	"github.com/ShayCichocki/flotilla/internal/executor"
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration applied during
// construction.
type orchestratorOptions struct {
	observers  []executor.Observer
	maxPerTier int

	// Injectable dependencies for testing
	decomposer *decompose.Decomposer
}

// WithObserver subscribes obs to the run's stream events. May be given
// multiple times; observers see each event once, in registration order.
func WithObserver(obs executor.Observer) Option {
	return func(o *orchestratorOptions) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithMaxAgentsPerTier overrides the agent pool ceiling. The default is the
// run's concurrency limit, which keeps acquisition from ever blocking.
func WithMaxAgentsPerTier(n int) Option {
	return func(o *orchestratorOptions) { o.maxPerTier = n }
}

// WithDecomposer replaces the default provider-driven decomposer.
func WithDecomposer(d *decompose.Decomposer) Option {
	return func(o *orchestratorOptions) { o.decomposer = d }
}
