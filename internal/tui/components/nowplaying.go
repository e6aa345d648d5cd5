package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/ambient/internal/core"
	"github.com/tessro/ambient/internal/tui/styles"
)

// NowPlaying displays the current floor and the volume
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = styles.Muted.Render("No track selected")
	} else {
		content = n.renderTrack(state, width-4)
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

func (n *NowPlaying) renderTrack(state core.PlaybackState, width int) string {
	track := state.Current

	icon := styles.StatusIcon(state.Playing)
	heading := styles.Title.Width(width - 4).Render(track.Title)
	floor := styles.Subtitle.Render(fmt.Sprintf("Floor %d", track.Floor))

	status := styles.Paused.Render("Paused")
	if state.Playing {
		status = styles.Playing.Render("Playing")
	}
	if state.Transitioning {
		status += styles.Dim.Render("  crossfading…")
	}

	// Volume bar
	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}
	volume := fmt.Sprintf("🔊 %s %3d%%", styles.ProgressBar(float64(state.VolumePercent()), barWidth), state.VolumePercent())

	next := styles.Dim.Render("Next: none")
	if state.Next != nil {
		next = styles.Dim.Render("Next: " + state.Next.String())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+heading,
		"  "+floor,
		"",
		"  "+status,
		"",
		volume,
		"",
		next,
	)
}
