package models

import "time"

// AgentStatus represents the current lifecycle state of an agent.
type AgentStatus string

const (
	// AgentStatusIdle indicates the agent is available for acquisition.
	AgentStatusIdle AgentStatus = "idle"
	// AgentStatusRunning indicates the agent is executing a subtask.
	AgentStatusRunning AgentStatus = "running"
	// AgentStatusCompleted indicates the agent finished its last subtask successfully.
	AgentStatusCompleted AgentStatus = "completed"
	// AgentStatusFailed indicates the agent's last subtask ended in failure.
	AgentStatusFailed AgentStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusIdle, AgentStatusRunning, AgentStatusCompleted, AgentStatusFailed:
		return true
	default:
		return false
	}
}

// AgentStats is a point-in-time snapshot of one agent's counters.
type AgentStats struct {
	// AgentID is the unique identifier for the agent.
	AgentID string `json:"agent_id"`
	// Tier is the hierarchy tier the agent serves.
	Tier Tier `json:"tier"`
	// Status is the lifecycle state at snapshot time.
	Status AgentStatus `json:"status"`
	// TasksRun is the number of subtasks this agent has executed.
	TasksRun int64 `json:"tasks_run"`
	// TasksSucceeded is the number of subtasks that completed successfully.
	TasksSucceeded int64 `json:"tasks_succeeded"`
	// TasksFailed is the number of subtasks that ended in failure.
	TasksFailed int64 `json:"tasks_failed"`
	// TotalCost is the cumulative cost in dollars across all executions.
	TotalCost float64 `json:"total_cost"`
	// TotalDuration is the cumulative wall time spent executing.
	TotalDuration time.Duration `json:"total_duration"`
	// LastTaskAt is when the agent last finished a subtask.
	LastTaskAt time.Time `json:"last_task_at"`
}

// SuccessRate returns the fraction of runs that succeeded, or 0 when the
// agent has not run anything yet.
func (s AgentStats) SuccessRate() float64 {
	if s.TasksRun == 0 {
		return 0
	}
	return float64(s.TasksSucceeded) / float64(s.TasksRun)
}

// MeanDuration returns the average execution wall time, or 0 when the
// agent has not run anything yet.
func (s AgentStats) MeanDuration() time.Duration {
	if s.TasksRun == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TasksRun)
}

// PoolStats aggregates counters across every agent in a pool.
type PoolStats struct {
	// Agents holds the per-agent snapshots, ordered by creation.
	Agents []AgentStats `json:"agents"`
	// TasksRun is the pool-wide number of executed subtasks.
	TasksRun int64 `json:"tasks_run"`
	// TasksSucceeded is the pool-wide number of successful subtasks.
	TasksSucceeded int64 `json:"tasks_succeeded"`
	// TotalCost is the pool-wide cumulative cost in dollars.
	TotalCost float64 `json:"total_cost"`
	// InFlight is the number of agents currently acquired.
	InFlight int `json:"in_flight"`
	// PeakInFlight is the highest number of simultaneously acquired agents.
	PeakInFlight int `json:"peak_in_flight"`
}

// SuccessRate returns the pool-wide fraction of successful runs, or 0 when
// nothing has run yet.
func (s PoolStats) SuccessRate() float64 {
	if s.TasksRun == 0 {
		return 0
	}
	return float64(s.TasksSucceeded) / float64(s.TasksRun)
}
