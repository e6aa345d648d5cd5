package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Playback.Validate(len(c.Tracks)); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.Loader.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("loader: %w", err))
	}
	if len(c.Tracks) == 0 {
		errs = append(errs, errors.New("tracks: at least one track is required"))
	}
	for i, t := range c.Tracks {
		if t.Path == "" {
			errs = append(errs, fmt.Errorf("tracks[%d]: path is required", i))
		}
	}
	if err := c.Tail.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tail: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks PlaybackConfig for errors against the number of floors.
func (c *PlaybackConfig) Validate(floors int) error {
	var errs []error
	if math.IsNaN(c.Volume) || c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, errors.New("volume must be between 0 and 1"))
	}
	if floors > 0 && (c.DefaultFloor < 0 || c.DefaultFloor >= floors) {
		errs = append(errs, fmt.Errorf("default_floor must be between 0 and %d", floors-1))
	}
	durations := []struct {
		name string
		ms   int
	}{
		{"crossfade_ms", c.CrossfadeMS},
		{"fade_in_ms", c.FadeInMS},
		{"smooth_crossfade_ms", c.SmoothCrossfadeMS},
		{"smooth_fade_in_ms", c.SmoothFadeInMS},
		{"play_fade_ms", c.PlayFadeMS},
		{"pause_fade_ms", c.PauseFadeMS},
	}
	for _, d := range durations {
		if d.ms < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative", d.name))
		}
	}
	return errors.Join(errs...)
}

// Validate checks LoaderConfig for errors.
func (c *LoaderConfig) Validate() error {
	switch c.Backend {
	case "", BackendEbiten, BackendMemory:
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be ebiten or memory)", c.Backend)
	}
	if c.SampleRate < 0 {
		return errors.New("sample_rate must be non-negative")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be non-negative")
	}
	return nil
}

// Validate checks TailConfig for errors.
func (c *TailConfig) Validate() error {
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	switch c.Format {
	case "", "console", "json":
		// valid
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Format)
	}
	if c.MaxSize < 0 || c.MaxBackups < 0 || c.MaxAge < 0 {
		return errors.New("rotation limits must be non-negative")
	}
	return nil
}
