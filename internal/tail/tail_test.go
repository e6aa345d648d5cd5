package tail

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/ambient/internal/core"
)

type fakeSource struct {
	mu    sync.Mutex
	state core.PlaybackState
}

func (f *fakeSource) Snapshot() core.PlaybackState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSource) set(fn func(s *core.PlaybackState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
}

func track(floor int, title string) *core.Track {
	return &core.Track{Floor: floor, Title: title, Path: "/audio/" + title + ".mp3", Loaded: true}
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDiffStates(t *testing.T) {
	lobby, forest := track(0, "Salutations"), track(1, "Mushroom Forest")

	tests := []struct {
		name string
		prev *core.PlaybackState
		curr core.PlaybackState
		want []EventType
	}{
		{
			name: "first poll idle",
			curr: core.PlaybackState{Volume: 0.5},
			want: []EventType{},
		},
		{
			name: "first poll playing",
			curr: core.PlaybackState{Current: lobby, Playing: true},
			want: []EventType{EventTrackChange},
		},
		{
			name: "staged",
			prev: &core.PlaybackState{},
			curr: core.PlaybackState{Current: lobby},
			want: []EventType{EventTrackStaged},
		},
		{
			name: "resume",
			prev: &core.PlaybackState{Current: lobby},
			curr: core.PlaybackState{Current: lobby, Playing: true},
			want: []EventType{EventResume},
		},
		{
			name: "crossfade starts",
			prev: &core.PlaybackState{Current: lobby, Playing: true},
			curr: core.PlaybackState{Current: lobby, Playing: true, Transitioning: true},
			want: []EventType{EventTransitionStart},
		},
		{
			name: "crossfade ends with preload",
			prev: &core.PlaybackState{Current: lobby, Playing: true, Transitioning: true},
			curr: core.PlaybackState{Current: forest, Next: track(2, "Islands Beneath the Sea"), Playing: true},
			want: []EventType{EventTrackChange, EventPreload, EventTransitionEnd},
		},
		{
			name: "pause and volume",
			prev: &core.PlaybackState{Current: lobby, Playing: true, Volume: 0.5},
			curr: core.PlaybackState{Current: lobby, Volume: 0.2},
			want: []EventType{EventPause, EventVolumeChange},
		},
		{
			name: "cleanup",
			prev: &core.PlaybackState{Current: lobby, Next: forest, Playing: true},
			curr: core.PlaybackState{},
			want: []EventType{EventPause},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := tt.curr
			got := types(diffStates(tt.prev, &curr))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcher_EmitsChanges(t *testing.T) {
	src := &fakeSource{state: core.PlaybackState{Volume: 0.5}}
	w := NewWatcher(src, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	src.set(func(s *core.PlaybackState) {
		s.Current = track(3, "Lost River")
		s.Playing = true
	})

	select {
	case e := <-w.Events():
		assert.Equal(t, EventTrackChange, e.Type)
		assert.Equal(t, 3, e.Current.CurrentFloor())
	case <-time.After(time.Second):
		require.Fail(t, "no event")
	}

	w.Stop()
	w.Stop()
	require.NoError(t, <-done)

	_, ok := <-w.Events()
	assert.False(t, ok, "events closed after stop")
}

func TestNewWatcher_DefaultInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		w := NewWatcher(&fakeSource{}, d)
		assert.Equal(t, 250*time.Millisecond, w.interval, "interval %v", d)
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	w := NewWatcher(&fakeSource{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.Start(ctx), context.Canceled)
}

func TestFormatter_Line(t *testing.T) {
	ts := time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC)
	state := &core.PlaybackState{Current: track(4, "Lava Castle"), Playing: true, Volume: 0.35}

	f := NewFormatter()
	assert.Equal(t, "🎵 Now playing: floor 4: Lava Castle", f.Format(Event{Type: EventTrackChange, Current: state}))

	f = NewFormatter(WithEmoji(false), WithTimestamp(true))
	assert.Equal(t, "13:04:05 Volume: 35%", f.Format(Event{Type: EventVolumeChange, Timestamp: ts, Current: state}))
	assert.Equal(t, "13:04:05 Paused", f.Format(Event{Type: EventPause, Timestamp: ts, Current: state}))
}

func TestFormatter_Template(t *testing.T) {
	state := &core.PlaybackState{
		Current: track(1, "Mushroom Forest"),
		Next:    track(2, "Islands Beneath the Sea"),
		Playing: true,
		Volume:  0.5,
	}

	f := NewFormatter(WithTemplate("{{.Type}} {{.Floor}}->{{.NextFloor}} {{.Title}} {{.Volume}}"))
	assert.Equal(t, "preload 1->2 Mushroom Forest 50", f.Format(Event{Type: EventPreload, Current: state}))

	// Invalid templates fall back to the line format.
	f = NewFormatter(WithTemplate("{{.Type"), WithEmoji(false))
	assert.Equal(t, "Transition started", f.Format(Event{Type: EventTransitionStart, Current: state}))

	_, err := ParseTemplate("{{.Type")
	assert.Error(t, err)
}

func TestFormatter_JSON(t *testing.T) {
	ts := time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC)
	state := &core.PlaybackState{
		Current: track(1, "Mushroom Forest"),
		Next:    track(2, "Islands Beneath the Sea"),
		Volume:  0.25,
	}

	f := NewFormatter(WithJSON(true), WithTemplate("{{.Type}}"))
	line := f.Format(Event{Type: EventPreload, Timestamp: ts, Current: state})

	var got struct {
		Type      string `json:"type"`
		Time      string `json:"time"`
		Floor     int    `json:"floor"`
		NextFloor int    `json:"next_floor"`
		Title     string `json:"title"`
		Playing   bool   `json:"playing"`
		Volume    int    `json:"volume"`
		Message   string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "preload", got.Type)
	assert.Equal(t, "2026-01-02T13:04:05Z", got.Time)
	assert.Equal(t, 1, got.Floor)
	assert.Equal(t, 2, got.NextFloor)
	assert.Equal(t, "Mushroom Forest", got.Title)
	assert.False(t, got.Playing)
	assert.Equal(t, 25, got.Volume)
	assert.Equal(t, "Preloaded: floor 2: Islands Beneath the Sea", got.Message)
}

func TestEventTypeNames(t *testing.T) {
	for typ := EventTrackChange; typ <= EventPreload; typ++ {
		name := typ.String()
		assert.NotEqual(t, "unknown", name)
		assert.False(t, strings.Contains(name, " "), name)
		assert.NotEqual(t, "❓", eventEmoji(typ))
	}
	assert.Equal(t, "unknown", EventType(42).String())
}
