package core

import (
	"context"
	"time"
)

// Handle is a single playable, looping audio stream.
type Handle interface {
	// Playback control
	Play(ctx context.Context) error
	Pause()

	// Volume control (0.0-1.0)
	Volume() float64
	SetVolume(v float64)

	// Position control
	Position() time.Duration
	SetPosition(pos time.Duration) error

	// Close stops playback and releases the source.
	Close() error
}

// Backend opens handles for track sources.
//
// Open blocks until the source is ready to play through or has failed to
// load. The returned handle loops, starts paused and has volume 0.
type Backend interface {
	Open(ctx context.Context, src TrackSource) (Handle, error)
}

// Rewind resets a handle to the start of its stream with volume 0.
func Rewind(h Handle) error {
	h.SetVolume(0)
	return h.SetPosition(0)
}
