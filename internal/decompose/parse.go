package decompose

import "strings"

// ParseNumbered extracts list items from a provider response. It accepts
// "1.", "1)" and "1:" numbering as well as "-" and "*" bullets, strips
// markdown emphasis from each item, skips prose lines, and stops after
// limit items. Unusable input yields an empty slice, never an error.
func ParseNumbered(text string, limit int) []string {
	if limit < 1 {
		return nil
	}

	var items []string
	for _, line := range strings.Split(text, "\n") {
		item, ok := splitListItem(line)
		if !ok {
			continue
		}
		item = stripEmphasis(item)
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items
}

// splitListItem strips the list marker from a line, reporting whether the
// line was a list item at all. Bullets need a trailing space so emphasis
// markers at the start of prose are not mistaken for them.
func splitListItem(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}

	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") {
		return strings.TrimSpace(s[2:]), true
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return "", false
	}
	switch s[i] {
	case '.', ')', ':':
		return strings.TrimSpace(s[i+1:]), true
	}
	return "", false
}

// stripEmphasis removes markdown bold, italic, and code markers wrapping an
// item so "1. **Gather sources**" parses the same as "1. Gather sources".
func stripEmphasis(s string) string {
	s = strings.TrimSpace(s)
	for {
		t := strings.TrimPrefix(s, "**")
		t = strings.TrimSuffix(t, "**")
		t = strings.Trim(t, "*_`")
		t = strings.TrimSpace(t)
		if t == s {
			return s
		}
		s = t
	}
}
