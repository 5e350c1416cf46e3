package decompose

import (
	"fmt"
	"strings"
)

// facetTemplates maps a domain hint to the facet instructions its template
// decomposition leads with. The first facet is always the overview.
var facetTemplates = map[string][]string{
	"research": {
		"Survey the background and prior work relevant to: %s",
		"Gather primary sources and concrete evidence for: %s",
		"Identify the key open questions and points of disagreement in: %s",
		"Summarize the methods and approaches used to address: %s",
		"Collect counterarguments, risks, and limitations around: %s",
	},
	"build": {
		"Outline the overall design and interfaces for: %s",
		"Implement the core functionality of: %s",
		"Handle the error paths and edge cases of: %s",
		"Write tests that exercise: %s",
		"Document how to use and integrate: %s",
	},
	"analyze": {
		"Describe the overall structure and components of: %s",
		"Identify the strengths and weaknesses of: %s",
		"Quantify the trends and patterns present in: %s",
		"Compare the main alternatives and tradeoffs for: %s",
		"Recommend concrete next steps based on: %s",
	},
}

// templateItems produces a deterministic decomposition without consulting a
// provider. Known hints lead with their domain facets; unknown hints and
// facet counts past the template fall back to roughly equal generic parts.
func templateItems(hint, instruction string, n int) []string {
	if n < 1 {
		n = 1
	}

	items := make([]string, 0, n)
	if facets, ok := facetTemplates[strings.ToLower(strings.TrimSpace(hint))]; ok {
		for i := 0; i < n && i < len(facets); i++ {
			items = append(items, fmt.Sprintf(facets[i], instruction))
		}
	}

	for len(items) < n {
		if len(items) == 0 {
			items = append(items, fmt.Sprintf("Produce an overview covering every aspect of: %s", instruction))
			continue
		}
		items = append(items, fmt.Sprintf("Work on part %d of %d of: %s", len(items)+1, n, instruction))
	}
	return items
}
