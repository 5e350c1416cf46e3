package synthesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

// Input is one lower-tier outcome to merge: a worker result for a
// synthesizer, a synthesizer result for the executive.
type Input struct {
	// ID identifies the source result.
	ID string
	// Success reports whether the source result carried output.
	Success bool
	// Output is the payload to merge. Set iff Success is true.
	Output string
	// Error describes the source failure. Set iff Success is false.
	Error string
}

// WorkerInputs converts worker results into synthesis inputs, keyed by
// subtask ID, preserving order.
func WorkerInputs(results []*models.AgentResult) []Input {
	inputs := make([]Input, len(results))
	for i, r := range results {
		inputs[i] = Input{ID: r.SubTaskID, Success: r.Success, Output: r.Output, Error: r.Error}
	}
	return inputs
}

// SynthesizerInputs converts synthesizer results into executive inputs,
// preserving order.
func SynthesizerInputs(results []*models.SynthesisResult) []Input {
	inputs := make([]Input, len(results))
	for i, r := range results {
		inputs[i] = Input{ID: r.ID, Success: r.Success, Output: r.Output, Error: r.Error}
	}
	return inputs
}

// ComposeSubTask builds the merge subtask a synthesis agent executes over
// inputs. groupIndex and groupCount place the subtask within its tier batch.
func ComposeSubTask(rootTaskID string, tier models.Tier, groupIndex, groupCount int, inputs []Input) *models.SubTask {
	return &models.SubTask{
		ID:          uuid.New().String(),
		RootTaskID:  rootTaskID,
		Index:       groupIndex,
		Total:       groupCount,
		Instruction: mergeInstruction(tier, inputs),
		CreatedAt:   time.Now(),
	}
}

// mergeInstruction renders the contributions into a merge prompt. A batch
// where every contribution failed still produces a prompt: the merge then
// asks for a diagnostic summary instead of a synthesis.
func mergeInstruction(tier models.Tier, inputs []Input) string {
	var sb strings.Builder

	failed := 0
	for _, in := range inputs {
		if !in.Success {
			failed++
		}
	}

	switch {
	case len(inputs) > 0 && failed == len(inputs):
		sb.WriteString("## Failed Contributions\n\nEvery contribution below failed. Summarize what went wrong, group the failures by cause, and state what a retry should do differently:\n\n")
	case tier == models.TierExecutive:
		sb.WriteString("## Results from All Synthesizers\n\nSynthesize the following results into one final, cohesive response:\n\n")
	default:
		sb.WriteString("## Results from All Agents\n\nSynthesize the following results into a cohesive response:\n\n")
	}

	for i, in := range inputs {
		if in.Success {
			fmt.Fprintf(&sb, "### Contribution %d\n\n%s\n\n", i+1, in.Output)
		} else {
			fmt.Fprintf(&sb, "### Contribution %d (failed)\n\n%s\n\n", i+1, in.Error)
		}
	}
	return sb.String()
}

// BuildResult converts the terminal outcome of a merge subtask into the
// SynthesisResult consumed by the next tier up.
func BuildResult(merge *models.AgentResult, tier models.Tier, groupIndex int, inputs []Input) *models.SynthesisResult {
	ids := make([]string, len(inputs))
	failed := 0
	for i, in := range inputs {
		ids[i] = in.ID
		if !in.Success {
			failed++
		}
	}

	res := &models.SynthesisResult{
		ID:           uuid.New().String(),
		Tier:         tier,
		GroupIndex:   groupIndex,
		InputIDs:     ids,
		FailedInputs: failed,
		Success:      merge.Success,
		Duration:     merge.Duration,
		Cost:         merge.Cost,
		CompletedAt:  merge.CompletedAt,
	}
	if merge.Success {
		res.Output = merge.Output
	} else {
		res.Error = merge.Error
	}
	return res
}
