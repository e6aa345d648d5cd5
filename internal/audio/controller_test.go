package audio

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
	"github.com/tessro/ambient/internal/media/memory"
)

var floorTitles = []string{
	"Salutations",
	"Mushroom Forest",
	"Islands Beneath the Sea",
	"Lost River",
	"Lava Castle",
}

func testSources() []core.TrackSource {
	sources := make([]core.TrackSource, len(floorTitles))
	for i, title := range floorTitles {
		sources[i] = core.TrackSource{Path: fmt.Sprintf("/audio/%s.mp3", title), Title: title}
	}
	return sources
}

func fastTimings() Timings {
	return Timings{
		Crossfade:       50 * time.Millisecond,
		FadeIn:          20 * time.Millisecond,
		SmoothCrossfade: 50 * time.Millisecond,
		SmoothFadeIn:    20 * time.Millisecond,
		Play:            20 * time.Millisecond,
		Pause:           20 * time.Millisecond,
	}
}

type harness struct {
	c       *Controller
	backend *memory.Backend
	sources []core.TrackSource
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T, backendOpts []memory.Option, opts ...Option) *harness {
	t.Helper()

	obsCore, logs := observer.New(zapcore.DebugLevel)
	backend := memory.NewBackend(backendOpts...)
	sources := testSources()

	opts = append([]Option{WithTimings(fastTimings()), WithLogger(zap.New(obsCore))}, opts...)
	c := New(backend, sources, opts...)
	require.NoError(t, c.Initialize(context.Background()))
	t.Cleanup(c.Cleanup)

	return &harness{c: c, backend: backend, sources: sources, logs: logs}
}

func (h *harness) handle(floor int) *memory.Handle {
	return h.backend.Latest(h.sources[floor].Path)
}

func assertVolumesInRange(t *testing.T, h *memory.Handle) {
	t.Helper()
	for i, v := range h.VolumeHistory() {
		assert.GreaterOrEqual(t, v, 0.0, "write %d", i)
		assert.LessOrEqual(t, v, 1.0, "write %d", i)
	}
}

func TestInitialize_RecordsLoadStatus(t *testing.T) {
	sources := testSources()
	h := newHarness(t, []memory.Option{memory.WithLoadFailure(sources[2].Path, nil)})

	tracks := h.c.Tracks()
	require.Len(t, tracks, len(sources))
	for i, tr := range tracks {
		assert.Equal(t, i, tr.Floor)
		assert.Equal(t, sources[i].Title, tr.Title)
		assert.Equal(t, i != 2, tr.Loaded, "floor %d", i)
	}
	assert.Equal(t, 1, h.logs.FilterMessage("failed to load audio track").Len())

	for i := range sources {
		if i == 2 {
			continue
		}
		mh := h.handle(i)
		require.NotNil(t, mh)
		assert.True(t, mh.Loops())
		assert.Equal(t, 0.0, mh.Volume())
		assert.False(t, mh.Playing())
	}
}

func TestInitialize_ToleratesTotalFailure(t *testing.T) {
	var opts []memory.Option
	for _, src := range testSources() {
		opts = append(opts, memory.WithLoadFailure(src.Path, nil))
	}
	h := newHarness(t, opts)

	tracks := h.c.Tracks()
	require.Len(t, tracks, len(floorTitles))
	for _, tr := range tracks {
		assert.False(t, tr.Loaded)
		assert.Error(t, tr.LoadErr)
	}
	assert.Equal(t, OutcomeUnavailable, h.c.ChangeTrack(context.Background(), 0))
}

func TestInitialize_Errors(t *testing.T) {
	c := New(memory.NewBackend(), nil)
	require.ErrorIs(t, c.Initialize(context.Background()), apperrors.ErrNoTracks)

	c = New(memory.NewBackend(), testSources())
	require.NoError(t, c.Initialize(context.Background()))
	require.ErrorIs(t, c.Initialize(context.Background()), apperrors.ErrAlreadyInitialized)

	c.Cleanup()
	require.NoError(t, c.Initialize(context.Background()), "initialize after cleanup")
	assert.Equal(t, len(floorTitles), c.Floors())
	c.Cleanup()
}

func TestInitialize_LoadConcurrency(t *testing.T) {
	backend := memory.NewBackend(memory.WithLoadDelay(10 * time.Millisecond))
	c := New(backend, testSources(), WithLoadConcurrency(1))
	defer c.Cleanup()

	start := time.Now()
	require.NoError(t, c.Initialize(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "one load at a time")
	assert.Equal(t, len(floorTitles), backend.Opened())
}

func TestStartWithTrack_ColdStart(t *testing.T) {
	h := newHarness(t, nil)

	change, play := h.c.StartWithTrack(context.Background(), 0)
	assert.Equal(t, OutcomeStaged, change)
	assert.Equal(t, OutcomeOK, play)

	s := h.c.Snapshot()
	require.True(t, s.HasTrack())
	assert.Equal(t, 0, s.CurrentFloor())
	assert.True(t, s.Playing)
	assert.False(t, s.Transitioning)
	assert.Equal(t, DefaultVolume, s.Volume)

	mh := h.handle(0)
	assert.True(t, mh.Playing())
	assert.Equal(t, 0.5, mh.Volume(), "fade must end exactly on the target")

	history := mh.VolumeHistory()
	require.NotEmpty(t, history)
	// Ramp starts from silence and never exceeds the target.
	fadeIn := history[len(history)-20:]
	for i := 1; i < len(fadeIn); i++ {
		assert.GreaterOrEqual(t, fadeIn[i], fadeIn[i-1])
	}
	assert.Equal(t, 0.0, history[len(history)-21])
	assertVolumesInRange(t, mh)
}

func TestChangeTrack_Crossfade(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	assert.Equal(t, OutcomeOK, h.c.ChangeTrack(ctx, 1))

	from, to := h.handle(0), h.handle(1)
	assert.False(t, from.Playing(), "outgoing track must be stopped")
	assert.Equal(t, 0.0, from.Volume())
	assert.True(t, to.Playing())
	assert.Equal(t, 0.5, to.Volume())

	s := h.c.Snapshot()
	assert.Equal(t, 1, s.CurrentFloor())
	assert.True(t, s.Playing)
	assert.False(t, s.Transitioning)

	assertVolumesInRange(t, from)
	assertVolumesInRange(t, to)
	assert.Equal(t, 1, h.logs.FilterMessage("track changed").FilterField(zap.Int("floor", 1)).Len())
}

func TestChangeTrack_RejectsWhileTransitioning(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	slow := fastTimings()
	slow.Crossfade = 200 * time.Millisecond
	h.c.SetTimings(slow)

	var wg sync.WaitGroup
	var first Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = h.c.ChangeTrack(ctx, 1)
	}()

	require.Eventually(t, func() bool { return h.c.Snapshot().Transitioning }, time.Second, time.Millisecond)

	for _, floor := range []int{2, 3, 0, 1} {
		assert.Equal(t, OutcomeBusy, h.c.ChangeTrack(ctx, floor), "floor %d", floor)
		assert.Equal(t, OutcomeBusy, h.c.ChangeTrackSmooth(ctx, floor), "floor %d", floor)
	}

	wg.Wait()
	assert.Equal(t, OutcomeOK, first)
	assert.Equal(t, 8, h.logs.FilterLevelExact(zapcore.WarnLevel).
		FilterMessage("track change rejected: transition in progress").Len())

	s := h.c.Snapshot()
	assert.Equal(t, 1, s.CurrentFloor())
	assert.False(t, s.Transitioning)

	for _, floor := range []int{2, 3} {
		plays, _, seeks := h.handle(floor).Stats()
		assert.Zero(t, plays, "floor %d must not start", floor)
		assert.Zero(t, seeks, "floor %d must not be touched", floor)
	}
}

func TestChangeTrack_SameTrack(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	mh := h.handle(0)
	before := len(mh.VolumeHistory())
	plays, pauses, seeks := mh.Stats()

	assert.Equal(t, OutcomeSameTrack, h.c.ChangeTrack(ctx, 0))
	assert.Equal(t, OutcomeSameTrack, h.c.ChangeTrackSmooth(ctx, 0))

	assert.Len(t, mh.VolumeHistory(), before)
	p2, pa2, s2 := mh.Stats()
	assert.Equal(t, []int{plays, pauses, seeks}, []int{p2, pa2, s2})
	assert.True(t, h.c.Snapshot().Playing)
}

func TestChangeTrack_UnloadedFloor(t *testing.T) {
	sources := testSources()
	h := newHarness(t, []memory.Option{memory.WithLoadFailure(sources[2].Path, nil)})
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)
	before := h.c.Snapshot()

	assert.Equal(t, OutcomeUnavailable, h.c.ChangeTrack(ctx, 2))

	after := h.c.Snapshot()
	assert.Equal(t, before, after)
	assert.False(t, after.Transitioning)

	warnings := h.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("audio track for floor not available")
	assert.Equal(t, 1, warnings.Len())
}

func TestChangeTrack_UnknownFloor(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	assert.Equal(t, OutcomeUnavailable, h.c.ChangeTrack(ctx, -1))
	assert.Equal(t, OutcomeUnavailable, h.c.ChangeTrack(ctx, len(floorTitles)))
	s := h.c.Snapshot()
	assert.False(t, s.HasTrack())
}

func TestChangeTrack_StagedWhilePaused(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	assert.Equal(t, OutcomeStaged, h.c.ChangeTrack(ctx, 3))
	mh := h.handle(3)
	assert.False(t, mh.Playing())
	assert.Equal(t, time.Duration(0), mh.Position())

	s := h.c.Snapshot()
	assert.Equal(t, 3, s.CurrentFloor())
	assert.False(t, s.Playing)

	assert.Equal(t, OutcomeOK, h.c.Play(ctx))
	assert.True(t, mh.Playing())
	assert.Equal(t, 0.5, mh.Volume())
}

func TestChangeTrack_PlayFailure(t *testing.T) {
	sources := testSources()
	h := newHarness(t, []memory.Option{memory.WithPlayFailure(sources[1].Path, nil)})
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	assert.Equal(t, OutcomeFailed, h.c.ChangeTrack(ctx, 1))

	s := h.c.Snapshot()
	assert.Equal(t, 0, s.CurrentFloor(), "failed change keeps the old track")
	assert.False(t, s.Transitioning, "guard must be released on failure")
	assert.Equal(t, 1, h.logs.FilterMessage("error changing track").Len())

	assert.Equal(t, OutcomeOK, h.c.ChangeTrack(ctx, 3), "controller stays usable")
}

func TestPlay_Noop(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, OutcomeNoop, h.c.Play(context.Background()))
	assert.False(t, h.c.Snapshot().Playing)
}

func TestPlay_StartFailureRevertsPlaying(t *testing.T) {
	sources := testSources()
	h := newHarness(t, []memory.Option{memory.WithPlayFailure(sources[0].Path, nil)})
	ctx := context.Background()

	change, play := h.c.StartWithTrack(ctx, 0)
	assert.Equal(t, OutcomeStaged, change)
	assert.Equal(t, OutcomeFailed, play)

	s := h.c.Snapshot()
	assert.False(t, s.Playing)
	assert.Equal(t, 0, s.CurrentFloor())
	assert.Equal(t, 1, h.logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("error playing audio").Len())
}

func TestPause(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	assert.Equal(t, OutcomeNoop, h.c.Pause(ctx), "nothing to pause")

	h.c.StartWithTrack(ctx, 0)
	assert.Equal(t, OutcomeOK, h.c.Pause(ctx))

	mh := h.handle(0)
	assert.False(t, mh.Playing())
	assert.Equal(t, 0.0, mh.Volume())
	assert.False(t, h.c.Snapshot().Playing)

	assert.Equal(t, OutcomeNoop, h.c.Pause(ctx), "already paused")

	assert.Equal(t, OutcomeOK, h.c.Play(ctx))
	assert.True(t, mh.Playing())
	assert.Equal(t, 0.5, mh.Volume())
}

func TestSetVolume(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	tests := []struct {
		in   float64
		want float64
	}{
		{0.3, 0.3},
		{1.7, 1},
		{-3, 0},
		{0.8, 0.8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.c.SetVolume(tt.in))
		assert.Equal(t, tt.want, h.c.Snapshot().Volume)
	}

	// Not playing: the staged handle is left alone.
	h.c.ChangeTrack(ctx, 0)
	mh := h.handle(0)
	h.c.SetVolume(0.6)
	assert.Equal(t, 0.0, mh.Volume())

	h.c.Play(ctx)
	assert.Equal(t, 0.6, mh.Volume())
	h.c.SetVolume(0.2)
	assert.Equal(t, 0.2, mh.Volume(), "applied to the live handle")

	assert.Equal(t, OutcomeOK, h.c.ChangeTrack(ctx, 1))
	assert.Equal(t, 0.2, h.handle(1).Volume(), "crossfade ends on the new target")
}

func TestCleanup_MidFade(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	slow := fastTimings()
	slow.Play = 300 * time.Millisecond
	h.c.SetTimings(slow)

	var wg sync.WaitGroup
	var change, play Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		change, play = h.c.StartWithTrack(ctx, 1)
	}()

	require.Eventually(t, h.handle(1).Playing, time.Second, time.Millisecond)
	h.c.Cleanup()
	wg.Wait()

	assert.Equal(t, OutcomeStaged, change)
	assert.Equal(t, OutcomeCancelled, play)

	s := h.c.Snapshot()
	assert.Nil(t, s.Current)
	assert.Nil(t, s.Next)
	assert.False(t, s.Playing)
	assert.Empty(t, h.c.Tracks())
	assert.Zero(t, h.c.Floors())

	for i := range h.sources {
		mh := h.handle(i)
		assert.True(t, mh.Closed(), "floor %d", i)
		assert.False(t, mh.Playing(), "floor %d", i)
		assert.Empty(t, mh.Path(), "floor %d source cleared", i)
	}
}

func TestCleanup_MidCrossfade(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	slow := fastTimings()
	slow.Crossfade = 300 * time.Millisecond
	h.c.SetTimings(slow)

	done := make(chan Outcome, 1)
	go func() { done <- h.c.ChangeTrack(ctx, 1) }()

	require.Eventually(t, h.handle(1).Playing, time.Second, time.Millisecond)
	h.c.Cleanup()

	s := h.c.Snapshot()
	assert.False(t, s.Transitioning, "cleanup ends the transition")
	assert.Nil(t, s.Current)

	select {
	case o := <-done:
		assert.Equal(t, OutcomeCancelled, o)
	case <-time.After(time.Second):
		require.Fail(t, "crossfade did not stop after cleanup")
	}
}

func TestCleanup_ControllerUsableAfterAbandonedTransition(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)

	slow := fastTimings()
	slow.Crossfade = 300 * time.Millisecond
	h.c.SetTimings(slow)

	done := make(chan Outcome, 1)
	go func() { done <- h.c.ChangeTrack(ctx, 1) }()

	require.Eventually(t, h.handle(1).Playing, time.Second, time.Millisecond)
	h.c.Cleanup()
	require.NoError(t, h.c.Initialize(ctx))

	// Accepted at once, even before the abandoned change has returned.
	assert.Equal(t, OutcomeStaged, h.c.ChangeTrack(ctx, 2))
	assert.Equal(t, OutcomeCancelled, <-done)

	s := h.c.Snapshot()
	assert.Equal(t, 2, s.CurrentFloor())
	assert.False(t, s.Transitioning)
}

func TestCleanup_Idempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.c.StartWithTrack(context.Background(), 0)

	h.c.Cleanup()
	h.c.Cleanup()

	s := h.c.Snapshot()
	assert.Nil(t, s.Current)
	assert.False(t, s.Playing)
	assert.Equal(t, OutcomeUnavailable, h.c.ChangeTrack(context.Background(), 0))
	assert.Equal(t, OutcomeNoop, h.c.Play(context.Background()))
}

func TestChangeTrackSmooth_PreloadsNextFloor(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.c.StartWithTrack(ctx, 0)
	assert.Nil(t, h.c.Snapshot().Next, "plain change does not preload")

	assert.Equal(t, OutcomeOK, h.c.ChangeTrackSmooth(ctx, 1))

	s := h.c.Snapshot()
	assert.Equal(t, 1, s.CurrentFloor())
	require.NotNil(t, s.Next)
	assert.Equal(t, 2, s.NextFloor())

	primed := h.handle(2)
	assert.Equal(t, time.Duration(0), primed.Position())
	assert.Equal(t, 0.0, primed.Volume())
	assert.False(t, primed.Playing())

	opened := h.backend.Opened()
	assert.Equal(t, OutcomeOK, h.c.ChangeTrackSmooth(ctx, 2))

	assert.Equal(t, opened, h.backend.Opened(), "preloaded handle is reused")
	assert.Len(t, h.backend.Handles(h.sources[2].Path), 1)
	assert.Same(t, primed, h.handle(2))
	assert.True(t, primed.Playing())
	assert.Equal(t, 0.5, primed.Volume())

	s = h.c.Snapshot()
	assert.Equal(t, 2, s.CurrentFloor())
	assert.Equal(t, 3, s.NextFloor())
	assert.Equal(t, 1, h.logs.FilterMessage("crossfading").FilterField(zap.Bool("preloaded", true)).Len())
}

func TestChangeTrackSmooth_WrapsAround(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, OutcomeStaged, h.c.ChangeTrackSmooth(context.Background(), 4))
	s := h.c.Snapshot()
	assert.Equal(t, 0, s.NextFloor())
}

func TestChangeTrackSmooth_SkipsUnloadedNext(t *testing.T) {
	sources := testSources()
	h := newHarness(t, []memory.Option{memory.WithLoadFailure(sources[2].Path, nil)})

	assert.Equal(t, OutcomeStaged, h.c.ChangeTrackSmooth(context.Background(), 1))
	assert.Nil(t, h.c.Snapshot().Next)
}

func TestChangeTrack_PreloadOption(t *testing.T) {
	h := newHarness(t, nil, WithPreload(true))
	ctx := context.Background()

	h.c.StartWithTrack(ctx, 3)
	s := h.c.Snapshot()
	assert.Equal(t, 4, s.NextFloor())
}

func TestPreload_NeverPrimesCurrentTrack(t *testing.T) {
	backend := memory.NewBackend()
	src := core.TrackSource{Path: "/audio/only.mp3", Title: "Only"}
	c := New(backend, []core.TrackSource{src}, WithTimings(fastTimings()))
	require.NoError(t, c.Initialize(context.Background()))
	defer c.Cleanup()

	change, play := c.StartWithTrack(context.Background(), 0)
	require.Equal(t, OutcomeStaged, change)
	require.Equal(t, OutcomeOK, play)

	c.mu.Lock()
	c.preload = true
	c.mu.Unlock()
	c.preloadNext(c.generation, 0)

	assert.Nil(t, c.Snapshot().Next)
	assert.Equal(t, 0.5, backend.Latest(src.Path).Volume(), "current track keeps playing")
}

func TestWithVolume(t *testing.T) {
	c := New(memory.NewBackend(), testSources(), WithVolume(1.4))
	assert.Equal(t, 1.0, c.Snapshot().Volume)

	c = New(memory.NewBackend(), testSources(), WithVolume(0.25))
	assert.Equal(t, 0.25, c.Snapshot().Volume)
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeOK.Accepted())
	assert.True(t, OutcomeStaged.Accepted())
	assert.False(t, OutcomeBusy.Accepted())
	assert.False(t, OutcomeSameTrack.Accepted())

	assert.Equal(t, "same_track", OutcomeSameTrack.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
