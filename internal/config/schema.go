package config

import "github.com/tessro/ambient/internal/core"

// Config is the root configuration structure.
type Config struct {
	Playback PlaybackConfig     `toml:"playback" yaml:"playback" json:"playback"`
	Loader   LoaderConfig       `toml:"loader" yaml:"loader" json:"loader"`
	Tracks   []core.TrackSource `toml:"tracks" yaml:"tracks" json:"tracks"`
	Tail     TailConfig         `toml:"tail" yaml:"tail" json:"tail"`
	TUI      TUIConfig          `toml:"tui" yaml:"tui" json:"tui"`
	Log      LogConfig          `toml:"log" yaml:"log" json:"log"`
}

// PlaybackConfig holds volume and fade settings. Durations are milliseconds.
type PlaybackConfig struct {
	Volume            float64 `toml:"volume" yaml:"volume" json:"volume"`
	Preload           bool    `toml:"preload" yaml:"preload" json:"preload"`
	DefaultFloor      int     `toml:"default_floor" yaml:"default_floor" json:"default_floor"`
	CrossfadeMS       int     `toml:"crossfade_ms" yaml:"crossfade_ms" json:"crossfade_ms"`
	FadeInMS          int     `toml:"fade_in_ms" yaml:"fade_in_ms" json:"fade_in_ms"`
	SmoothCrossfadeMS int     `toml:"smooth_crossfade_ms" yaml:"smooth_crossfade_ms" json:"smooth_crossfade_ms"`
	SmoothFadeInMS    int     `toml:"smooth_fade_in_ms" yaml:"smooth_fade_in_ms" json:"smooth_fade_in_ms"`
	PlayFadeMS        int     `toml:"play_fade_ms" yaml:"play_fade_ms" json:"play_fade_ms"`
	PauseFadeMS       int     `toml:"pause_fade_ms" yaml:"pause_fade_ms" json:"pause_fade_ms"`
}

// LoaderConfig holds audio backend settings.
type LoaderConfig struct {
	Backend     string `toml:"backend" yaml:"backend" json:"backend"`
	AudioRoot   string `toml:"audio_root" yaml:"audio_root" json:"audio_root"`
	SampleRate  int    `toml:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	Concurrency int    `toml:"concurrency" yaml:"concurrency" json:"concurrency"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	Interval  int    `toml:"interval" yaml:"interval" json:"interval"`
	Emoji     bool   `toml:"emoji" yaml:"emoji" json:"emoji"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp" json:"timestamp"`
	Format    string `toml:"format" yaml:"format" json:"format"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" yaml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" yaml:"refresh_interval" json:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level" yaml:"level" json:"level"`
	Format     string `toml:"format" yaml:"format" json:"format"`
	File       string `toml:"file" yaml:"file" json:"file"`
	MaxSize    int    `toml:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `toml:"max_age" yaml:"max_age" json:"max_age"`
	Compress   bool   `toml:"compress" yaml:"compress" json:"compress"`
}
