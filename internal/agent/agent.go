// Package agent provides the stateful execution wrapper around a capability
// provider and the pool that owns agent instances.
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// Agent executes subtasks against a capability provider, one at a time. An
// agent is exclusively owned by at most one execution between Acquire and
// Release; its lifecycle state is mutated only by the agent itself during
// execution and by the pool on acquire/release.
type Agent struct {
	id       string
	tier     models.Tier
	provider provider.Provider

	mu             sync.Mutex
	status         models.AgentStatus
	tasksRun       int64
	tasksSucceeded int64
	tasksFailed    int64
	totalCost      float64
	totalDuration  time.Duration
	lastTaskAt     time.Time
}

// New creates an idle agent for the given tier backed by p.
func New(tier models.Tier, p provider.Provider) *Agent {
	return &Agent{
		id:       uuid.New().String(),
		tier:     tier,
		provider: p,
		status:   models.AgentStatusIdle,
	}
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Tier returns the tier this agent serves.
func (a *Agent) Tier() models.Tier { return a.tier }

// Status returns the agent's current lifecycle state.
func (a *Agent) Status() models.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Run executes one attempt of a subtask against the provider. The agent is
// Running for the duration of the call and stays Running between retry
// attempts; Complete records the terminal outcome.
func (a *Agent) Run(ctx context.Context, sub *models.SubTask) (*provider.Response, error) {
	a.setStatus(models.AgentStatusRunning)
	return a.provider.Execute(ctx, provider.Request{Instruction: sub.Instruction})
}

// Complete records the terminal outcome of one subtask, after the caller's
// retry policy has resolved. It moves the agent to Completed or Failed until
// the pool releases it back to Idle.
func (a *Agent) Complete(success bool, cost float64, duration time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tasksRun++
	if success {
		a.tasksSucceeded++
		a.status = models.AgentStatusCompleted
	} else {
		a.tasksFailed++
		a.status = models.AgentStatusFailed
	}
	a.totalCost += cost
	a.totalDuration += duration
	a.lastTaskAt = time.Now()
}

// Stats returns a snapshot of the agent's counters.
func (a *Agent) Stats() models.AgentStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return models.AgentStats{
		AgentID:        a.id,
		Tier:           a.tier,
		Status:         a.status,
		TasksRun:       a.tasksRun,
		TasksSucceeded: a.tasksSucceeded,
		TasksFailed:    a.tasksFailed,
		TotalCost:      a.totalCost,
		TotalDuration:  a.totalDuration,
		LastTaskAt:     a.lastTaskAt,
	}
}

func (a *Agent) setStatus(s models.AgentStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// markIdle is called by the pool on release.
func (a *Agent) markIdle() {
	a.setStatus(models.AgentStatusIdle)
}
