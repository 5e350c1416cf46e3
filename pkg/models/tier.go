package models

// Tier identifies an agent's position in the synthesis hierarchy.
type Tier string

const (
	// TierWorker executes decomposed subtasks directly.
	TierWorker Tier = "worker"
	// TierSynthesizer aggregates up to five worker results.
	TierSynthesizer Tier = "synthesizer"
	// TierExecutive aggregates all synthesizer results into the final output.
	TierExecutive Tier = "executive"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierWorker, TierSynthesizer, TierExecutive:
		return true
	default:
		return false
	}
}
