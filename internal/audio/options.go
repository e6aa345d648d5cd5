package audio

import (
	"time"

	"go.uber.org/zap"

	"github.com/tessro/ambient/internal/core"
)

// DefaultVolume is the initial target volume.
const DefaultVolume = 0.5

// Timings holds the durations of every fade the controller runs.
//
// The plain track change uses Crossfade/FadeIn; the smooth (preloading)
// change uses SmoothCrossfade/SmoothFadeIn.
type Timings struct {
	Crossfade       time.Duration
	FadeIn          time.Duration
	SmoothCrossfade time.Duration
	SmoothFadeIn    time.Duration
	Play            time.Duration
	Pause           time.Duration
}

// DefaultTimings returns the standard fade durations.
func DefaultTimings() Timings {
	return Timings{
		Crossfade:       1200 * time.Millisecond,
		FadeIn:          800 * time.Millisecond,
		SmoothCrossfade: 1000 * time.Millisecond,
		SmoothFadeIn:    500 * time.Millisecond,
		Play:            500 * time.Millisecond,
		Pause:           500 * time.Millisecond,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithVolume sets the initial target volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(c *Controller) {
		c.volume = core.ClampVolume(v)
	}
}

// WithPreload makes ChangeTrack prime the next floor after every
// transition, like ChangeTrackSmooth.
func WithPreload(enabled bool) Option {
	return func(c *Controller) {
		c.preload = enabled
	}
}

// WithTimings replaces the fade durations.
func WithTimings(t Timings) Option {
	return func(c *Controller) {
		c.timings = t
	}
}

// WithLoadConcurrency limits how many tracks load at once. Zero means no limit.
func WithLoadConcurrency(n int) Option {
	return func(c *Controller) {
		c.loadConcurrency = n
	}
}
