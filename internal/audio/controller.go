// Package audio implements the per-floor ambient track controller: loading,
// fades, crossfades and the guarded transition state machine.
package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
	"github.com/tessro/ambient/internal/fade"
)

// Controller owns the track registry and the playback state.
//
// Track changes are serialized by the transitioning flag; a request made
// while one is in flight is rejected, not queued. Play, Pause and SetVolume
// are not serialized against transitions.
type Controller struct {
	backend         core.Backend
	sources         []core.TrackSource
	logger          *zap.Logger
	loadConcurrency int

	mu            sync.Mutex
	registry      Registry
	timings       Timings
	preload       bool
	current       *core.Track
	next          *core.Track
	playing       bool
	volume        float64
	transitioning bool
	initialized   bool

	// lifetime is cancelled by Cleanup; every fade runs under it.
	lifetime   context.Context
	cancel     context.CancelFunc
	generation uint64
}

// New creates a controller for the given sources. Floor i plays sources[i].
func New(backend core.Backend, sources []core.TrackSource, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		sources: append([]core.TrackSource(nil), sources...),
		logger:  zap.NewNop(),
		timings: DefaultTimings(),
		volume:  DefaultVolume,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lifetime, c.cancel = context.WithCancel(context.Background())
	return c
}

// Initialize loads every source. It returns once each track has loaded or
// failed; load failures only mark the track unplayable.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if len(c.sources) == 0 {
		c.mu.Unlock()
		return apperrors.ErrNoTracks
	}
	if c.initialized {
		c.mu.Unlock()
		return apperrors.ErrAlreadyInitialized
	}
	c.initialized = true
	gen := c.generation
	c.mu.Unlock()

	start := time.Now()
	result := NewLoader(c.backend, c.loadConcurrency, c.logger).Load(ctx, c.sources)

	loaded := 0
	for _, t := range result.Data {
		if t.Loaded {
			loaded++
		}
	}

	c.mu.Lock()
	if gen != c.generation {
		// Cleanup ran while loading.
		c.mu.Unlock()
		closeTracks(result.Data, c.logger)
		return nil
	}
	c.registry.set(result.Data)
	c.mu.Unlock()

	c.logger.Info("audio initialized",
		zap.Int("tracks", len(result.Data)),
		zap.Int("loaded", loaded),
		zap.Int("failed", len(result.Errors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if result.HasErrors() {
		c.logger.Debug("load failures", zap.String("summary", result.ErrorSummary()))
	}
	return nil
}

// ChangeTrack switches to floor, crossfading if something is playing.
func (c *Controller) ChangeTrack(ctx context.Context, floor int) Outcome {
	return c.changeTrack(ctx, floor, false)
}

// ChangeTrackSmooth is ChangeTrack with the shorter smooth timings, reuse of
// a preloaded handle and priming of the following floor afterwards.
func (c *Controller) ChangeTrackSmooth(ctx context.Context, floor int) Outcome {
	return c.changeTrack(ctx, floor, true)
}

func (c *Controller) changeTrack(ctx context.Context, floor int, smooth bool) Outcome {
	c.mu.Lock()
	if c.transitioning {
		c.mu.Unlock()
		c.logger.Warn("track change rejected: transition in progress", zap.Int("floor", floor))
		return OutcomeBusy
	}
	track, ok := c.registry.At(floor)
	if !ok || !track.Playable() {
		c.mu.Unlock()
		c.logger.Warn("audio track for floor not available", zap.Int("floor", floor))
		return OutcomeUnavailable
	}
	if c.current == track {
		c.mu.Unlock()
		return OutcomeSameTrack
	}

	c.transitioning = true
	current := c.current
	var currentHandle core.Handle
	if current != nil {
		currentHandle = current.Handle
	}
	h := track.Handle
	reused := c.next == track
	playing := c.playing
	target := c.volume
	preload := smooth || c.preload
	crossfadeDur, fadeInDur := c.timings.Crossfade, c.timings.FadeIn
	if smooth {
		crossfadeDur, fadeInDur = c.timings.SmoothCrossfade, c.timings.SmoothFadeIn
	}
	lifetime, gen := c.lifetime, c.generation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		// Cleanup already cleared the flag; a later transition may own it now.
		if gen == c.generation {
			c.transitioning = false
		}
		c.mu.Unlock()
	}()

	log := c.logger.With(
		zap.String("transition_id", uuid.NewString()),
		zap.Int("floor", floor),
		zap.String("title", track.Title),
	)

	var outcome Outcome
	if currentHandle != nil && playing {
		log.Debug("crossfading", zap.Int("from", current.Floor), zap.Bool("preloaded", reused))

		if err := core.Rewind(h); err != nil {
			log.Error("error changing track", zap.Error(err))
			return OutcomeFailed
		}
		if err := h.Play(ctx); err != nil {
			log.Error("error changing track", zap.Error(err))
			return OutcomeFailed
		}
		if err := fade.Crossfade(lifetime, currentHandle, h, target, crossfadeDur); err != nil {
			return fadeOutcome(log, err)
		}
		if !c.commit(gen, func() {
			c.current = track
			if c.next == track {
				c.next = nil
			}
		}) {
			return OutcomeCancelled
		}
		outcome = OutcomeOK
	} else {
		if !c.commit(gen, func() {
			c.current = track
			if c.next == track {
				c.next = nil
			}
		}) {
			return OutcomeCancelled
		}
		if err := core.Rewind(h); err != nil {
			log.Error("error changing track", zap.Error(err))
			return OutcomeFailed
		}

		outcome = OutcomeStaged
		if playing {
			if err := h.Play(ctx); err != nil {
				log.Error("error changing track", zap.Error(err))
				return OutcomeFailed
			}
			if err := fade.Fade(lifetime, h, 0, target, fadeInDur); err != nil {
				return fadeOutcome(log, err)
			}
			outcome = OutcomeOK
		}
	}

	log.Info("track changed", zap.Stringer("outcome", outcome))
	if preload {
		c.preloadNext(gen, floor)
	}
	return outcome
}

// preloadNext primes the track after floor so a later change can start it
// without seeking.
func (c *Controller) preloadNext(gen uint64, floor int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	t, ok := c.registry.At(c.registry.NextFloor(floor))
	if !ok || !t.Playable() || t == c.current {
		return
	}
	if err := core.Rewind(t.Handle); err != nil {
		c.logger.Warn("failed to preload track", zap.Int("floor", t.Floor), zap.Error(err))
		return
	}
	c.next = t
	c.logger.Debug("preloaded next track", zap.Int("floor", t.Floor))
}

// Play starts the current track and fades it in to the target volume.
func (c *Controller) Play(ctx context.Context) Outcome {
	c.mu.Lock()
	cur := c.current
	if !cur.Playable() {
		c.mu.Unlock()
		return OutcomeNoop
	}
	c.playing = true
	h := cur.Handle
	target := c.volume
	dur := c.timings.Play
	lifetime, gen := c.lifetime, c.generation
	c.mu.Unlock()

	h.SetVolume(0)
	if err := h.Play(ctx); err != nil {
		c.commit(gen, func() { c.playing = false })
		c.logger.Error("error playing audio", zap.Int("floor", cur.Floor), zap.Error(err))
		return OutcomeFailed
	}
	if err := fade.Fade(lifetime, h, 0, target, dur); err != nil {
		return fadeOutcome(c.logger, err)
	}
	return OutcomeOK
}

// Pause fades the current track out and pauses it. ctx is accepted to match
// Play; the fade only stops early on Cleanup.
//
// Pause is not serialized against a track change. Pausing during a crossfade
// clears playing while the crossfade still brings the new track up to the
// target volume.
func (c *Controller) Pause(ctx context.Context) Outcome {
	c.mu.Lock()
	cur := c.current
	if cur == nil || cur.Handle == nil || !c.playing {
		c.mu.Unlock()
		return OutcomeNoop
	}
	h := cur.Handle
	from := c.volume
	dur := c.timings.Pause
	lifetime, gen := c.lifetime, c.generation
	c.mu.Unlock()

	if err := fade.Fade(lifetime, h, from, 0, dur); err != nil {
		return fadeOutcome(c.logger, err)
	}
	h.Pause()

	c.commit(gen, func() { c.playing = false })
	return OutcomeOK
}

// SetVolume stores the clamped target volume and applies it to the current
// track if it is playing. It returns the stored value.
//
// This does not coordinate with a fade in flight; the next fade step
// overwrites the handle volume. The same holds for Pause during a crossfade,
// which leaves the new track playing with playing set to false.
func (c *Controller) SetVolume(v float64) float64 {
	v = core.ClampVolume(v)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = v
	if c.current != nil && c.current.Handle != nil && c.playing {
		c.current.Handle.SetVolume(v)
	}
	return v
}

// StartWithTrack changes to floor and then plays.
func (c *Controller) StartWithTrack(ctx context.Context, floor int) (change, play Outcome) {
	change = c.ChangeTrack(ctx, floor)
	play = c.Play(ctx)
	return change, play
}

// SetTimings replaces the fade durations for operations started afterwards.
func (c *Controller) SetTimings(t Timings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timings = t
}

// Cleanup stops and releases every handle and resets the controller. Fades
// in flight are abandoned. It is safe to call more than once, and
// Initialize may be called again afterwards.
func (c *Controller) Cleanup() {
	c.mu.Lock()
	c.cancel()
	c.lifetime, c.cancel = context.WithCancel(context.Background())
	c.generation++
	tracks := c.registry.clear()
	c.current = nil
	c.next = nil
	c.playing = false
	c.transitioning = false
	c.initialized = false
	c.mu.Unlock()

	closeTracks(tracks, c.logger)
	if len(tracks) > 0 {
		c.logger.Info("audio cleaned up", zap.Int("tracks", len(tracks)))
	}
}

// Snapshot returns a copy of the playback state without live handles.
func (c *Controller) Snapshot() core.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.PlaybackState{
		Current:       c.current.View(),
		Next:          c.next.View(),
		Playing:       c.playing,
		Volume:        c.volume,
		Transitioning: c.transitioning,
	}
}

// Tracks returns handle-free copies of the registered tracks.
func (c *Controller) Tracks() []core.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Views()
}

// Floors returns the number of registered floors.
func (c *Controller) Floors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Len()
}

// commit runs fn under the lock unless Cleanup has run since gen was read.
func (c *Controller) commit(gen uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	fn()
	return true
}

func fadeOutcome(log *zap.Logger, err error) Outcome {
	if errors.Is(err, context.Canceled) {
		log.Debug("fade abandoned by cleanup")
		return OutcomeCancelled
	}
	log.Error("fade failed", zap.Error(err))
	return OutcomeFailed
}

func closeTracks(tracks []*core.Track, log *zap.Logger) {
	for _, t := range tracks {
		if t == nil || t.Handle == nil {
			continue
		}
		t.Handle.Pause()
		if err := t.Handle.Close(); err != nil {
			log.Warn("failed to release track", zap.Int("floor", t.Floor), zap.Error(err))
		}
		t.Handle = nil
		t.Loaded = false
	}
}
