package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/ambient/internal/core"
	"github.com/tessro/ambient/internal/tui/styles"
)

// Floors lists every floor with its load status and lets one be selected.
type Floors struct {
	selected int
	offset   int
}

// NewFloors creates a new Floors component
func NewFloors() *Floors {
	return &Floors{}
}

// SelectNext selects the next floor, stopping at the last of n.
func (f *Floors) SelectNext(n int) {
	if f.selected < n-1 {
		f.selected++
	}
}

// SelectPrev selects the previous floor
func (f *Floors) SelectPrev() {
	if f.selected > 0 {
		f.selected--
	}
}

// Select selects floor i if it is one of n floors.
func (f *Floors) Select(i, n int) bool {
	if i < 0 || i >= n {
		return false
	}
	f.selected = i
	return true
}

// Selected returns the selected floor
func (f *Floors) Selected() int {
	return f.selected
}

// Render renders the floors panel
func (f *Floors) Render(tracks []core.Track, state core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Floors", focused)

	var content string
	if len(tracks) == 0 {
		content = styles.Muted.Render("No tracks loaded")
	} else {
		content = f.renderFloors(tracks, state, width-4, height-4)
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

func (f *Floors) renderFloors(tracks []core.Track, state core.PlaybackState, width, maxLines int) string {
	if f.selected >= len(tracks) {
		f.selected = len(tracks) - 1
	}

	visible := maxLines
	if visible < 1 {
		visible = 1
	}
	// Keep the selection on screen.
	if f.selected < f.offset {
		f.offset = f.selected
	}
	if f.selected >= f.offset+visible {
		f.offset = f.selected - visible + 1
	}

	end := f.offset + visible
	if end > len(tracks) {
		end = len(tracks)
	}

	// Fixed overhead: "> " (2) + "XX " (3) + icon and space (2)
	const overhead = 7

	lines := make([]string, 0, end-f.offset)
	for i := f.offset; i < end; i++ {
		t := tracks[i]

		icon := " "
		style := lipgloss.NewStyle()
		switch {
		case !t.Loaded:
			icon = styles.Failed.Render("✗")
			style = styles.Dim
		case t.Floor == state.CurrentFloor():
			icon = styles.StatusIcon(state.Playing)
			style = styles.Playing
		case t.Floor == state.NextFloor():
			icon = styles.Dim.Render("⏭")
		}

		line := fmt.Sprintf("%2d %s %s", t.Floor, icon, style.Render(truncate(t.Title, width-overhead)))
		if i == f.selected {
			line = styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
