// Package synthesis sizes and composes the aggregation tiers that merge
// worker results into a final answer.
package synthesis

import "github.com/ShayCichocki/flotilla/pkg/models"

// GroupSize is the maximum number of results one synthesizer merges.
const GroupSize = 5

// Plan describes the synthesis tiers above a worker batch.
type Plan struct {
	// SynthesizerCount is the number of synthesizer slots.
	SynthesizerCount int
	// HasExecutive reports whether an executive merges the synthesizer
	// outputs into the final answer.
	HasExecutive bool
}

// Scale maps a worker count to its synthesis plan: one synthesizer per
// started group of five workers once there are at least five, and an
// executive once two or more synthesizers exist. Deterministic and total;
// counts below five, including zero, get no synthesis tier at all.
func Scale(workerCount int) Plan {
	if workerCount < 5 {
		return Plan{}
	}
	n := (workerCount + GroupSize - 1) / GroupSize
	return Plan{SynthesizerCount: n, HasExecutive: n >= 2}
}

// Groups partitions results into synthesizer groups of up to GroupSize,
// assigned in input order. For five or more results the group count equals
// Scale's synthesizer count.
func Groups(results []*models.AgentResult) [][]*models.AgentResult {
	if len(results) == 0 {
		return nil
	}
	groups := make([][]*models.AgentResult, 0, (len(results)+GroupSize-1)/GroupSize)
	for start := 0; start < len(results); start += GroupSize {
		end := start + GroupSize
		if end > len(results) {
			end = len(results)
		}
		groups = append(groups, results[start:end:end])
	}
	return groups
}
