// Package ebitenaudio plays tracks through Ebitengine's audio package.
package ebitenaudio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
)

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = 44100

// Format is a supported encoded audio format.
type Format string

const (
	FormatMP3    Format = "mp3"
	FormatVorbis Format = "vorbis"
	FormatWAV    Format = "wav"
)

// FormatFor returns the decoder format for path based on its extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	case ".wav":
		return FormatWAV, nil
	default:
		return "", fmt.Errorf("%s: %w", path, apperrors.ErrUnsupportedFormat)
	}
}

// Backend decodes files from disk into looping Ebitengine players.
type Backend struct {
	ctx  *audio.Context
	root string
}

// New creates a backend sharing the process-wide audio context.
// Relative track paths are resolved against root.
func New(sampleRate int, root string) *Backend {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &Backend{ctx: ctx, root: root}
}

// Resolve returns the filesystem path for a track path.
func (b *Backend) Resolve(path string) string {
	return resolve(b.root, path)
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		// Web-style paths ("/audio/x.mp3") are relative to root when one is set.
		if root != "" && strings.HasPrefix(path, "/") {
			if _, err := os.Stat(path); err != nil {
				return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
			}
		}
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// Open decodes src and returns a paused, silent, looping handle.
func (b *Backend) Open(ctx context.Context, src core.TrackSource) (core.Handle, error) {
	format, err := FormatFor(src.Path)
	if err != nil {
		return nil, err
	}

	path := b.Resolve(src.Path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, length, err := decode(format, b.ctx.SampleRate(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	player, err := b.ctx.NewPlayer(audio.NewInfiniteLoop(stream, length))
	if err != nil {
		return nil, fmt.Errorf("create player for %s: %w", path, err)
	}
	player.SetVolume(0)

	return &Handle{player: player, path: path}, nil
}

func decode(format Format, sampleRate int, r io.ReadSeeker) (io.ReadSeeker, int64, error) {
	switch format {
	case FormatMP3:
		s, err := mp3.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	case FormatVorbis:
		s, err := vorbis.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	case FormatWAV:
		s, err := wav.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	default:
		return nil, 0, apperrors.ErrUnsupportedFormat
	}
}

// Handle wraps an Ebitengine player.
type Handle struct {
	mu     sync.Mutex
	player *audio.Player
	path   string
	closed bool
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
	h.player.Play()
	if !h.player.IsPlaying() {
		return fmt.Errorf("play %s: %w", h.path, apperrors.ErrPlaybackStart)
	}
	return nil
}

// Pause pauses playback.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.player.Pause()
	}
}

// Volume returns the player volume.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.player.Volume()
}

// SetVolume sets the player volume.
func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.player.SetVolume(v)
	}
}

// Position returns the playback position within the loop.
func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.player.Position()
}

// SetPosition seeks within the stream.
func (h *Handle) SetPosition(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("seek %s: %w", h.path, apperrors.ErrHandleClosed)
	}
	return h.player.SetPosition(pos)
}

// Close stops the player and releases its stream.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.player.Pause()
	return h.player.Close()
}

var _ core.Backend = (*Backend)(nil)
var _ core.Handle = (*Handle)(nil)
