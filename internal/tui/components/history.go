package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/ambient/internal/tui/styles"
)

// HistoryEntry is one requested floor change and how it ended.
type HistoryEntry struct {
	Floor    int
	Title    string
	Outcome  string
	Accepted bool
	At       time.Time
}

// History displays recent floor changes
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No changes yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			content,
		))
}

func (h *History) renderHistory(entries []HistoryEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		timeAgo := formatTimeAgo(entry.At)

		icon := styles.Playing.Render("✓")
		if !entry.Accepted {
			icon = styles.Dim.Render("·")
		}

		// icon, space, floor number and the outcome column
		available := width - len(timeAgo) - 16
		info := fmt.Sprintf("%2d %s", entry.Floor, truncate(entry.Title, available))
		outcome := styles.Dim.Render(fmt.Sprintf("%-11s", entry.Outcome))

		padding := width - 2 - lipgloss.Width(info) - 12 - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s %s %s%s%s",
			icon,
			info,
			outcome,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
