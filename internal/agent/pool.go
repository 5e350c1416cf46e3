package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// DefaultMaxPerTier is the agent ceiling used when PoolConfig leaves it zero.
const DefaultMaxPerTier = 8

// ErrPoolClosed is returned by Acquire after Shutdown.
var ErrPoolClosed = errors.New("agent pool is closed")

// PoolConfig contains configuration for creating a Pool.
type PoolConfig struct {
	// Provider backs every agent the pool creates.
	Provider provider.Provider
	// MaxPerTier is the agent ceiling per tier. Zero means DefaultMaxPerTier.
	MaxPerTier int
}

// Pool owns the agent instances for every tier. Agents are created lazily on
// first acquisition for a tier, up to the per-tier ceiling, and are destroyed
// only by Shutdown, never implicitly. The pool does no load-based routing;
// callers sequence through their own concurrency gate.
type Pool struct {
	provider   provider.Provider
	maxPerTier int

	mu       sync.Mutex
	cond     *sync.Cond
	idle     map[models.Tier][]*Agent
	all      map[models.Tier][]*Agent
	acquired int
	peak     int
	closed   bool
}

// NewPool creates an empty pool.
func NewPool(cfg PoolConfig) *Pool {
	maxPerTier := cfg.MaxPerTier
	if maxPerTier <= 0 {
		maxPerTier = DefaultMaxPerTier
	}

	p := &Pool{
		provider:   cfg.Provider,
		maxPerTier: maxPerTier,
		idle:       make(map[models.Tier][]*Agent),
		all:        make(map[models.Tier][]*Agent),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Acquire hands back an idle agent for the tier, creating one when none is
// idle and the tier is under its ceiling. At the ceiling it blocks until a
// release, cancellation, or shutdown.
func (p *Pool) Acquire(ctx context.Context, tier models.Tier) (*Agent, error) {
	// Wake blocked waiters when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.cond.Broadcast()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return nil, ErrPoolClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if a := p.takeLocked(tier); a != nil {
			p.acquired++
			if p.acquired > p.peak {
				p.peak = p.acquired
			}
			return a, nil
		}

		p.cond.Wait()
	}
}

// takeLocked pops an idle agent or lazily creates one under the ceiling.
// Caller must hold p.mu.
func (p *Pool) takeLocked(tier models.Tier) *Agent {
	if n := len(p.idle[tier]); n > 0 {
		a := p.idle[tier][n-1]
		p.idle[tier] = p.idle[tier][:n-1]
		return a
	}
	if len(p.all[tier]) < p.maxPerTier {
		a := New(tier, p.provider)
		p.all[tier] = append(p.all[tier], a)
		return a
	}
	return nil
}

// Release returns an agent to the idle set and wakes one blocked acquirer.
// Releasing into a closed pool is a no-op.
func (p *Pool) Release(a *Agent) {
	if a == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.acquired > 0 {
		p.acquired--
	}
	if p.closed {
		return
	}

	a.markIdle()
	p.idle[a.Tier()] = append(p.idle[a.Tier()], a)
	p.cond.Signal()
}

// Stats returns pool-wide counters plus per-agent snapshots in creation
// order, worker tier first.
func (p *Pool) Stats() models.PoolStats {
	p.mu.Lock()
	agents := make([]*Agent, 0)
	for _, tier := range []models.Tier{models.TierWorker, models.TierSynthesizer, models.TierExecutive} {
		agents = append(agents, p.all[tier]...)
	}
	stats := models.PoolStats{
		InFlight:     p.acquired,
		PeakInFlight: p.peak,
	}
	p.mu.Unlock()

	for _, a := range agents {
		s := a.Stats()
		stats.Agents = append(stats.Agents, s)
		stats.TasksRun += s.TasksRun
		stats.TasksSucceeded += s.TasksSucceeded
		stats.TotalCost += s.TotalCost
	}
	return stats
}

// Size returns the number of agents created for the tier so far.
func (p *Pool) Size(tier models.Tier) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all[tier])
}

// Shutdown evicts every agent and fails all pending and future Acquire calls
// with ErrPoolClosed.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.idle = make(map[models.Tier][]*Agent)
	p.all = make(map[models.Tier][]*Agent)
	p.cond.Broadcast()
}
