package models

import "time"

// RootTask is the single unit of work handed to the orchestrator.
type RootTask struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Instruction is the free-text description of the work.
	Instruction string `json:"instruction"`
	// DomainHint optionally selects a decomposition strategy
	// (e.g. "research", "build", "analyze"). It never changes the
	// decomposition contract, only the template wording.
	DomainHint string `json:"domain_hint,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// SubTask is one unit of decomposed work. SubTasks are immutable after
// creation and consumed exactly once by the executor.
type SubTask struct {
	// ID is the unique identifier for this subtask.
	ID string `json:"id"`
	// RootTaskID is the ID of the root task this subtask was decomposed from.
	RootTaskID string `json:"root_task_id"`
	// Index is the zero-based position within the batch. Unique per batch.
	Index int `json:"index"`
	// Total is the number of subtasks in the batch. Index < Total always.
	Total int `json:"total"`
	// Instruction is the free-text work description for one agent.
	Instruction string `json:"instruction"`
	// Priority orders truncation when a batch is cut down. Higher wins.
	// All subtasks default to equal priority.
	Priority int `json:"priority,omitempty"`
	// DependsOn lists subtask IDs that should complete first. Advisory
	// ordering hints only; the executor does not schedule around them.
	DependsOn []string `json:"depends_on,omitempty"`
	// CreatedAt is when the subtask was created.
	CreatedAt time.Time `json:"created_at"`
}

// Valid returns true if the subtask satisfies its batch invariants.
func (s SubTask) Valid() bool {
	return s.ID != "" && s.Instruction != "" && s.Index >= 0 && s.Index < s.Total
}
