package models

import "time"

// EventType classifies a StreamEvent.
type EventType string

const (
	// EventRunStarted fires once when a run begins.
	EventRunStarted EventType = "run_started"
	// EventTaskDecomposed fires when decomposition produces a subtask batch.
	EventTaskDecomposed EventType = "task_decomposed"
	// EventSubTaskStarted fires when a subtask is dispatched to an agent.
	EventSubTaskStarted EventType = "subtask_started"
	// EventSubTaskRetrying fires before a retry attempt is dispatched.
	EventSubTaskRetrying EventType = "subtask_retrying"
	// EventSubTaskCompleted fires on terminal subtask success.
	EventSubTaskCompleted EventType = "subtask_completed"
	// EventSubTaskFailed fires on terminal subtask failure.
	EventSubTaskFailed EventType = "subtask_failed"
	// EventSynthesisStarted fires when a synthesis tier begins.
	EventSynthesisStarted EventType = "synthesis_started"
	// EventSynthesisCompleted fires when a synthesis tier finishes.
	EventSynthesisCompleted EventType = "synthesis_completed"
	// EventRunCompleted fires once when a run reaches Done.
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed fires once when a run reaches Failed.
	EventRunFailed EventType = "run_failed"
)

// Valid returns true if the event type is a known value.
func (t EventType) Valid() bool {
	switch t {
	case EventRunStarted, EventTaskDecomposed, EventSubTaskStarted,
		EventSubTaskRetrying, EventSubTaskCompleted, EventSubTaskFailed,
		EventSynthesisStarted, EventSynthesisCompleted,
		EventRunCompleted, EventRunFailed:
		return true
	default:
		return false
	}
}

// StreamEvent is a typed progress notification. Events are ephemeral; the
// core forwards them to observers and never persists them.
type StreamEvent struct {
	// Type classifies the event.
	Type EventType `json:"type"`
	// RunID correlates the event with one orchestrator run.
	RunID string `json:"run_id"`
	// SubTaskID is set on subtask-scoped events.
	SubTaskID string `json:"subtask_id,omitempty"`
	// AgentID is set when an agent was involved.
	AgentID string `json:"agent_id,omitempty"`
	// Tier is set on tier-scoped events.
	Tier Tier `json:"tier,omitempty"`
	// Attempt is the 1-based attempt number on retry events.
	Attempt int `json:"attempt,omitempty"`
	// Message is a human-readable summary.
	Message string `json:"message,omitempty"`
	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`
}
