package decompose

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

// decompositionPrompt is the prompt template for the provider-driven
// breakdown of a root task.
const decompositionPrompt = `Break this task into exactly %d subtasks that can be worked on independently and in parallel.

Task:
%s

Return ONLY a numbered list, one subtask per line, no other text:
1. First subtask
2. Second subtask

Guidelines:
- The first subtask covers the broad overview; later subtasks narrow in on specifics
- Each subtask must be self-contained and actionable without seeing the others
- Subtasks should be roughly equal in size
- No nested lists, no headings, no closing remarks`

// buildPrompt fills the decomposition template and appends the domain hint
// when the root task carries one.
func buildPrompt(root *models.RootTask, targetCount int) string {
	prompt := fmt.Sprintf(decompositionPrompt, targetCount, root.Instruction)
	if hint := strings.TrimSpace(root.DomainHint); hint != "" {
		prompt += fmt.Sprintf("\n- Approach this as a %s task", hint)
	}
	return prompt
}
