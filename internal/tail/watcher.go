package tail

import (
	"context"
	"sync"
	"time"

	"github.com/tessro/ambient/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackStaged
	EventPause
	EventResume
	EventVolumeChange
	EventTransitionStart
	EventTransitionEnd
	EventPreload
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// Snapshotter exposes the playback state. *audio.Controller implements it.
type Snapshotter interface {
	Snapshot() core.PlaybackState
}

// Watcher polls a controller for state changes and emits events.
type Watcher struct {
	source   Snapshotter
	interval time.Duration
	events   chan Event
	done     chan struct{}
	stop     sync.Once
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Snapshotter, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls for state changes until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *core.PlaybackState

	for {
		curr := w.source.Snapshot()
		for _, e := range diffStates(prev, &curr) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = &curr

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.done) })
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *core.PlaybackState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	emit := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First poll - no previous state
	if prev == nil {
		if curr.HasTrack() {
			if curr.Playing {
				emit(EventTrackChange)
			} else {
				emit(EventTrackStaged)
			}
		}
		if curr.Transitioning {
			emit(EventTransitionStart)
		}
		return events
	}

	if !prev.Transitioning && curr.Transitioning {
		emit(EventTransitionStart)
	}

	if trackChanged(prev.Current, curr.Current) && curr.HasTrack() {
		if curr.Playing {
			emit(EventTrackChange)
		} else {
			emit(EventTrackStaged)
		}
	}

	// Pause/Resume detection
	if prev.Playing && !curr.Playing {
		emit(EventPause)
	} else if !prev.Playing && curr.Playing {
		emit(EventResume)
	}

	if prev.Volume != curr.Volume {
		emit(EventVolumeChange)
	}

	if curr.Next != nil && trackChanged(prev.Next, curr.Next) {
		emit(EventPreload)
	}

	if prev.Transitioning && !curr.Transitioning {
		emit(EventTransitionEnd)
	}

	return events
}

// trackChanged returns true if a and b are different floors.
func trackChanged(a, b *core.Track) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return a.Floor != b.Floor || a.Path != b.Path
}
