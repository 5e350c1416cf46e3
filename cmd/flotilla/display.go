package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/flotilla/pkg/models"
)

// eventLine renders one progress event as a tagged stdout line.
func eventLine(ev models.StreamEvent) string {
	switch ev.Type {
	case models.EventRunStarted:
		return fmt.Sprintf("[RUN] %s", ev.Message)
	case models.EventTaskDecomposed:
		return fmt.Sprintf("[PLAN] %s", ev.Message)
	case models.EventSubTaskStarted:
		return fmt.Sprintf("[STARTED] %s (agent: %s)", ev.Message, shortID(ev.AgentID))
	case models.EventSubTaskRetrying:
		return fmt.Sprintf("[RETRY] %s (attempt %d)", ev.Message, ev.Attempt)
	case models.EventSubTaskCompleted:
		return fmt.Sprintf("[DONE] %s", ev.Message)
	case models.EventSubTaskFailed:
		return fmt.Sprintf("[FAILED] %s", ev.Message)
	case models.EventSynthesisStarted:
		return fmt.Sprintf("[SYNTH] %s", ev.Message)
	case models.EventSynthesisCompleted:
		return fmt.Sprintf("[SYNTHED] %s", ev.Message)
	case models.EventRunCompleted:
		return fmt.Sprintf("[COMPLETE] %s", ev.Message)
	case models.EventRunFailed:
		return fmt.Sprintf("[FAILED] %s", ev.Message)
	default:
		return fmt.Sprintf("[%s] %s", strings.ToUpper(string(ev.Type)), ev.Message)
	}
}

// shortID truncates an ID to 8 characters for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to max characters, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatDuration formats a duration in human-readable form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}

// formatNumber formats a number with commas.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Add commas every 3 digits from the right
	var result strings.Builder
	offset := len(s) % 3
	if offset > 0 {
		result.WriteString(s[:offset])
		if len(s) > offset {
			result.WriteString(",")
		}
	}
	for i := offset; i < len(s); i += 3 {
		result.WriteString(s[i : i+3])
		if i+3 < len(s) {
			result.WriteString(",")
		}
	}
	return result.String()
}
