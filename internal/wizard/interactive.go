package wizard

import (
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/tessro/ambient/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	tracks  []core.Track
	picker  func([]core.Track) (int, error)
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
		picker:  RunFloorPicker,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetTracks sets the floors offered by the picker.
func (i *Interactive) SetTracks(tracks []core.Track) {
	i.tracks = tracks
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptFloor launches the floor picker if interactive mode is available.
// It returns -1 if cancelled or not interactive.
func (i *Interactive) PromptFloor() (int, error) {
	if !i.CanInteract() || len(i.tracks) == 0 {
		return -1, nil
	}
	return i.picker(i.tracks)
}

// NeedsFloor returns true if a floor argument is required but missing.
func NeedsFloor(args []string) bool {
	return len(args) == 0
}

// ParseFloor parses a floor argument.
func ParseFloor(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FirstPlayable returns the lowest loaded floor at or after from, wrapping
// around, or -1 if none loaded.
func FirstPlayable(tracks []core.Track, from int) int {
	n := len(tracks)
	for k := 0; k < n; k++ {
		i := ((from+k)%n + n) % n
		if tracks[i].Loaded {
			return tracks[i].Floor
		}
	}
	return -1
}
