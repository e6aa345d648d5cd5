package config

import (
	"time"

	"github.com/tessro/ambient/internal/audio"
	"github.com/tessro/ambient/internal/core"
)

// Backend names accepted by loader.backend.
const (
	BackendEbiten = "ebiten"
	BackendMemory = "memory"
)

// DefaultTracks returns the built-in floor playlist.
func DefaultTracks() []core.TrackSource {
	return []core.TrackSource{
		{Path: "/audio/Salutations.mp3", Title: "Salutations"},
		{Path: "/audio/Mushroom Forest.mp3", Title: "Mushroom Forest"},
		{Path: "/audio/Islands Beneath the Sea.mp3", Title: "Islands Beneath the Sea"},
		{Path: "/audio/Lost River.mp3", Title: "Lost River"},
		{Path: "/audio/Lava Castle.mp3", Title: "Lava Castle"},
	}
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	t := audio.DefaultTimings()
	return &Config{
		Playback: PlaybackConfig{
			Volume:            audio.DefaultVolume,
			Preload:           false,
			DefaultFloor:      0,
			CrossfadeMS:       int(t.Crossfade / time.Millisecond),
			FadeInMS:          int(t.FadeIn / time.Millisecond),
			SmoothCrossfadeMS: int(t.SmoothCrossfade / time.Millisecond),
			SmoothFadeInMS:    int(t.SmoothFadeIn / time.Millisecond),
			PlayFadeMS:        int(t.Play / time.Millisecond),
			PauseFadeMS:       int(t.Pause / time.Millisecond),
		},
		Loader: LoaderConfig{
			Backend:    BackendEbiten,
			AudioRoot:  ".",
			SampleRate: 44100,
		},
		Tracks: DefaultTracks(),
		Tail: TailConfig{
			Interval:  250,
			Emoji:     true,
			Timestamp: false,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
//
// Volume and the fade durations are left alone: zero is a meaningful value
// for all of them, and Load starts from Default before decoding.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Tracks
	if len(c.Tracks) == 0 {
		c.Tracks = d.Tracks
	}

	// Loader
	if c.Loader.Backend == "" {
		c.Loader.Backend = d.Loader.Backend
	}
	if c.Loader.AudioRoot == "" {
		c.Loader.AudioRoot = d.Loader.AudioRoot
	}
	if c.Loader.SampleRate == 0 {
		c.Loader.SampleRate = d.Loader.SampleRate
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = d.Log.MaxSize
	}
}

// Timings converts the configured fade durations.
func (p *PlaybackConfig) Timings() audio.Timings {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return audio.Timings{
		Crossfade:       ms(p.CrossfadeMS),
		FadeIn:          ms(p.FadeInMS),
		SmoothCrossfade: ms(p.SmoothCrossfadeMS),
		SmoothFadeIn:    ms(p.SmoothFadeInMS),
		Play:            ms(p.PlayFadeMS),
		Pause:           ms(p.PauseFadeMS),
	}
}
