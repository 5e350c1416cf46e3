package models

// RunState represents the orchestrator's position in its state machine.
// Done and Failed are terminal; an orchestrator instance is never reused.
type RunState string

const (
	// RunStatePending indicates the run has not started.
	RunStatePending RunState = "pending"
	// RunStateDecomposing indicates the root task is being decomposed.
	RunStateDecomposing RunState = "decomposing"
	// RunStateExecutingWorkers indicates the worker tier is executing.
	RunStateExecutingWorkers RunState = "executing_workers"
	// RunStateExecutingSynthesizers indicates the synthesizer tier is executing.
	RunStateExecutingSynthesizers RunState = "executing_synthesizers"
	// RunStateExecutingExecutive indicates the executive synthesis is executing.
	RunStateExecutingExecutive RunState = "executing_executive"
	// RunStateDone indicates the run completed and produced a result.
	RunStateDone RunState = "done"
	// RunStateFailed indicates the run was cancelled or hit an unrecoverable error.
	RunStateFailed RunState = "failed"
)

// Valid returns true if the state is a known value.
func (s RunState) Valid() bool {
	switch s {
	case RunStatePending, RunStateDecomposing, RunStateExecutingWorkers,
		RunStateExecutingSynthesizers, RunStateExecutingExecutive,
		RunStateDone, RunStateFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true for states the run cannot leave.
func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateFailed
}
