// Package memory provides in-memory audio handles that record every change.
//
// It backs the dry-run mode of the CLI and the controller tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
)

// Backend opens memory handles. Failures can be injected per path.
type Backend struct {
	mu          sync.Mutex
	loadDelay   time.Duration
	failLoad    map[string]error
	failPlay    map[string]error
	handles     map[string][]*Handle
	openedCount int
}

// Option configures a Backend.
type Option func(*Backend)

// WithLoadDelay makes every Open wait d before reporting ready.
func WithLoadDelay(d time.Duration) Option {
	return func(b *Backend) {
		b.loadDelay = d
	}
}

// WithLoadFailure makes Open fail for path.
func WithLoadFailure(path string, err error) Option {
	return func(b *Backend) {
		if err == nil {
			err = fmt.Errorf("decode %s: invalid data", path)
		}
		b.failLoad[path] = err
	}
}

// WithPlayFailure makes Play fail for handles opened from path.
func WithPlayFailure(path string, err error) Option {
	return func(b *Backend) {
		if err == nil {
			err = apperrors.ErrPlaybackStart
		}
		b.failPlay[path] = err
	}
}

// NewBackend creates a memory backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		failLoad: make(map[string]error),
		failPlay: make(map[string]error),
		handles:  make(map[string][]*Handle),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open returns a paused, silent, looping handle for src.
func (b *Backend) Open(ctx context.Context, src core.TrackSource) (core.Handle, error) {
	if b.loadDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.loadDelay):
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err, ok := b.failLoad[src.Path]; ok {
		return nil, err
	}

	h := &Handle{
		path:    src.Path,
		playErr: b.failPlay[src.Path],
		loop:    true,
	}
	b.handles[src.Path] = append(b.handles[src.Path], h)
	b.openedCount++
	return h, nil
}

// Handles returns every handle opened for path, oldest first.
func (b *Backend) Handles(path string) []*Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Handle(nil), b.handles[path]...)
}

// Latest returns the most recent handle opened for path, or nil.
func (b *Backend) Latest(path string) *Handle {
	hs := b.Handles(path)
	if len(hs) == 0 {
		return nil
	}
	return hs[len(hs)-1]
}

// Opened returns the total number of handles opened.
func (b *Backend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openedCount
}

// Handle is an in-memory core.Handle.
type Handle struct {
	mu       sync.Mutex
	path     string
	playing  bool
	closed   bool
	loop     bool
	volume   float64
	position time.Duration
	playErr  error

	volumes []float64
	plays   int
	pauses  int
	seeks   int
}

// Path returns the source path the handle was opened from.
func (h *Handle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// Play starts playback.
func (h *Handle) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("play %s: %w", h.path, apperrors.ErrHandleClosed)
	}
	if h.playErr != nil {
		return fmt.Errorf("play %s: %w", h.path, h.playErr)
	}
	h.playing = true
	h.plays++
	return nil
}

// Pause stops playback, keeping the position.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.pauses++
}

// Volume returns the current volume.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// SetVolume sets the volume and records it.
func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
	h.volumes = append(h.volumes, v)
}

// Position returns the playback position.
func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

// SetPosition seeks to pos.
func (h *Handle) SetPosition(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("seek %s: %w", h.path, apperrors.ErrHandleClosed)
	}
	h.position = pos
	h.seeks++
	return nil
}

// Close stops playback and clears the source.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.closed = true
	h.path = ""
	return nil
}

// Advance moves the position forward by d while playing.
func (h *Handle) Advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.playing {
		h.position += d
	}
}

// Playing reports whether the handle is playing.
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Closed reports whether Close was called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Loops reports whether the handle loops.
func (h *Handle) Loops() bool {
	return h.loop
}

// VolumeHistory returns every volume written, oldest first.
func (h *Handle) VolumeHistory() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.volumes...)
}

// Stats returns the number of Play, Pause and SetPosition calls.
func (h *Handle) Stats() (plays, pauses, seeks int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays, h.pauses, h.seeks
}

var _ core.Handle = (*Handle)(nil)
var _ core.Backend = (*Backend)(nil)
