package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tessro/ambient/internal/audio"
	"github.com/tessro/ambient/internal/config"
	"github.com/tessro/ambient/internal/core"
	apperrors "github.com/tessro/ambient/internal/errors"
	"github.com/tessro/ambient/internal/media/ebitenaudio"
	"github.com/tessro/ambient/internal/media/memory"
)

// newBackend returns the audio backend named in the config.
func newBackend() core.Backend {
	switch cfg.Loader.Backend {
	case config.BackendMemory:
		return memory.NewBackend()
	default:
		return ebitenaudio.New(cfg.Loader.SampleRate, cfg.Loader.AudioRoot)
	}
}

// loadController creates a controller for the configured tracks and loads
// them. The caller must call Cleanup.
func loadController(ctx context.Context) (*audio.Controller, error) {
	ctrl := audio.New(newBackend(), cfg.Tracks,
		audio.WithLogger(logger),
		audio.WithVolume(cfg.Playback.Volume),
		audio.WithPreload(cfg.Playback.Preload),
		audio.WithTimings(cfg.Playback.Timings()),
		audio.WithLoadConcurrency(cfg.Loader.Concurrency),
	)
	if err := ctrl.Initialize(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// openController is loadController for commands that play: it fails if no
// track loaded.
func openController(ctx context.Context) (*audio.Controller, error) {
	ctrl, err := loadController(ctx)
	if err != nil {
		return nil, err
	}

	loaded := 0
	for _, t := range ctrl.Tracks() {
		if t.Loaded {
			loaded++
		}
	}
	if loaded == 0 {
		ctrl.Cleanup()
		return nil, apperrors.WithSuggestion(
			fmt.Errorf("%w: none of %d tracks loaded", apperrors.ErrFloorUnavailable, len(cfg.Tracks)),
			fmt.Sprintf("Check that the files exist under %q or set loader.audio_root", cfg.Loader.AudioRoot),
		)
	}
	return ctrl, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// watchConfig applies volume and fade changes from the config file until ctx
// is done. The track list is never reloaded.
func watchConfig(ctx context.Context, ctrl *audio.Controller) error {
	path := cfgFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return apperrors.WithSuggestion(apperrors.ErrConfigNotFound, "Run 'ambient config init' to create one")
	}

	w, err := config.Watch(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case next, ok := <-w.Updates:
				if !ok {
					return
				}
				applyConfig(ctrl, next)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config reload failed", zap.String("path", w.Path()), zap.Error(err))
			}
		}
	}()

	logger.Debug("watching config", zap.String("path", w.Path()))
	return nil
}

// applyConfig pushes the reloadable settings of next into ctrl.
func applyConfig(ctrl *audio.Controller, next *config.Config) {
	if next.Playback.Volume != cfg.Playback.Volume {
		v := ctrl.SetVolume(next.Playback.Volume)
		logger.Info("volume reloaded", zap.Float64("volume", v))
	}
	ctrl.SetTimings(next.Playback.Timings())

	cfg.Playback.Volume = next.Playback.Volume
	cfg.Playback.CrossfadeMS = next.Playback.CrossfadeMS
	cfg.Playback.FadeInMS = next.Playback.FadeInMS
	cfg.Playback.SmoothCrossfadeMS = next.Playback.SmoothCrossfadeMS
	cfg.Playback.SmoothFadeInMS = next.Playback.SmoothFadeInMS
	cfg.Playback.PlayFadeMS = next.Playback.PlayFadeMS
	cfg.Playback.PauseFadeMS = next.Playback.PauseFadeMS
}

// shutdown fades the current track out and releases every handle.
func shutdown(ctrl *audio.Controller) {
	ctrl.Pause(context.Background())
	ctrl.Cleanup()
}
