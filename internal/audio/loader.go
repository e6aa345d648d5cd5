package audio

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
)

// Loader opens a handle for every configured source.
type Loader struct {
	backend     core.Backend
	concurrency int
	logger      *zap.Logger
}

// NewLoader creates a loader. concurrency <= 0 loads every source at once.
func NewLoader(backend core.Backend, concurrency int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{backend: backend, concurrency: concurrency, logger: logger}
}

// Load returns one track per source, in source order, once every source has
// either loaded or failed. Failures are recorded on the track and collected
// in the result's Errors; they never abort the other loads.
func (l *Loader) Load(ctx context.Context, sources []core.TrackSource) *apperrors.PartialResult[[]*core.Track] {
	result := &apperrors.PartialResult[[]*core.Track]{
		Data: make([]*core.Track, len(sources)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}

	for i, src := range sources {
		g.Go(func() error {
			track := &core.Track{Floor: i, Path: src.Path, Title: src.Title}

			h, err := l.backend.Open(ctx, src)
			if err != nil {
				track.LoadErr = err
				l.logger.Warn("failed to load audio track",
					zap.Int("floor", i),
					zap.String("path", src.Path),
					zap.Error(err),
				)
				mu.Lock()
				result.AddError(fmt.Errorf("floor %d (%s): %w", i, src.Path, err))
				mu.Unlock()
			} else {
				h.SetVolume(0)
				track.Handle = h
				track.Loaded = true
				l.logger.Debug("loaded audio track",
					zap.Int("floor", i),
					zap.String("title", src.Title),
				)
			}

			result.Data[i] = track
			return nil
		})
	}

	// Failures are collected in result; the goroutines always return nil.
	_ = g.Wait()
	return result
}
