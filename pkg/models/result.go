package models

import "time"

// AgentResult is the terminal outcome of one agent executing one subtask.
// Exactly one of Output and Error is populated, matching the Success flag.
// Results are immutable once created.
type AgentResult struct {
	// SubTaskID is the subtask this result belongs to.
	SubTaskID string `json:"subtask_id"`
	// AgentID is the agent that produced the result.
	AgentID string `json:"agent_id"`
	// Tier is the hierarchy tier the execution ran at.
	Tier Tier `json:"tier"`
	// Success reports whether the subtask completed.
	Success bool `json:"success"`
	// Output is the provider-defined payload. Set iff Success is true.
	Output string `json:"output,omitempty"`
	// Error describes the terminal failure. Set iff Success is false.
	Error string `json:"error,omitempty"`
	// Attempts is the number of execution attempts, including retries.
	Attempts int `json:"attempts"`
	// Duration is the wall time across all attempts.
	Duration time.Duration `json:"duration"`
	// Cost is the estimated cost in dollars, provider-defined.
	Cost float64 `json:"cost"`
	// TokensUsed is the provider-reported token consumption, if any.
	TokensUsed int64 `json:"tokens_used,omitempty"`
	// Citations lists provenance references reported by the provider.
	Citations []string `json:"citations,omitempty"`
	// CompletedAt is when the terminal outcome was recorded.
	CompletedAt time.Time `json:"completed_at"`
}

// Valid returns true if the result satisfies the output/error invariant.
func (r AgentResult) Valid() bool {
	if r.SubTaskID == "" || !r.Tier.Valid() {
		return false
	}
	if r.Success {
		return r.Error == ""
	}
	return r.Error != ""
}

// SynthesisResult is the outcome of one synthesizer or executive invocation
// aggregating an ordered batch of lower-tier results.
type SynthesisResult struct {
	// ID is the unique identifier for this synthesis.
	ID string `json:"id"`
	// Tier is TierSynthesizer or TierExecutive.
	Tier Tier `json:"tier"`
	// GroupIndex is the zero-based synthesizer slot, 0 for the executive.
	GroupIndex int `json:"group_index"`
	// InputIDs lists the aggregated result IDs in input order. Never empty.
	InputIDs []string `json:"input_ids"`
	// Output is the aggregated payload.
	Output string `json:"output"`
	// FailedInputs counts inputs that carried a failure.
	FailedInputs int `json:"failed_inputs"`
	// Success reports whether the synthesis invocation itself completed.
	Success bool `json:"success"`
	// Error describes the synthesis failure, if any.
	Error string `json:"error,omitempty"`
	// Duration is the wall time of the synthesis invocation.
	Duration time.Duration `json:"duration"`
	// Cost is the estimated cost in dollars.
	Cost float64 `json:"cost"`
	// CompletedAt is when the synthesis finished.
	CompletedAt time.Time `json:"completed_at"`
}

// Valid returns true if the synthesis satisfies its input invariant.
func (r SynthesisResult) Valid() bool {
	return len(r.InputIDs) > 0 && (r.Tier == TierSynthesizer || r.Tier == TierExecutive)
}

// OrchestratorResult is the complete record of one root-task run. The
// orchestrator holds no reference to it after returning; the caller owns it.
type OrchestratorResult struct {
	// RunID is the unique identifier for the run.
	RunID string `json:"run_id"`
	// RootTaskID is the root task that was executed.
	RootTaskID string `json:"root_task_id"`
	// Instruction is the root task's instruction, kept for audit.
	Instruction string `json:"instruction"`
	// FinalOutput is the top synthesis output, or the sole worker payload
	// when no synthesis tier ran.
	FinalOutput string `json:"final_output"`
	// Success is true iff at least one worker succeeded.
	Success bool `json:"success"`
	// State is the terminal state the run reached.
	State RunState `json:"state"`
	// WorkerResults holds one AgentResult per subtask, in subtask order.
	WorkerResults []*AgentResult `json:"worker_results"`
	// SynthesisResults holds synthesizer results in group order followed by
	// the executive result, when present.
	SynthesisResults []*SynthesisResult `json:"synthesis_results,omitempty"`
	// TotalCost is the run-wide estimated cost in dollars.
	TotalCost float64 `json:"total_cost"`
	// TotalTokens is the run-wide token consumption.
	TotalTokens int64 `json:"total_tokens"`
	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the run reached a terminal state.
	CompletedAt time.Time `json:"completed_at"`
}
