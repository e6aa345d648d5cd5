package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/tessro/ambient/internal/errors"
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.ambientrc, $XDG_CONFIG_HOME/ambient/config.toml,
// $XDG_CONFIG_HOME/ambient/config.yaml
func Load() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Decode parses data over the defaults. Keys absent from data keep their
// default values; a tracks list in data replaces the default list.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()
	cfg.Tracks = nil

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// Encode writes cfg to w in the given format.
func Encode(w io.Writer, cfg any, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := toml.NewEncoder(w)
		enc.Indent = "  "
		return enc.Encode(cfg)
	}
}

// DefaultPath is where config init writes a new file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ambientrc"
	}
	return filepath.Join(home, ".ambientrc")
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".ambientrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths,
		filepath.Join(xdgConfig, "ambient", "config.toml"),
		filepath.Join(xdgConfig, "ambient", "config.yaml"),
	)

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Playback
	if v := os.Getenv("AMBIENT_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Playback.Volume = f
		}
	}
	if v := os.Getenv("AMBIENT_PRELOAD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Playback.Preload = b
		}
	}
	if v := os.Getenv("AMBIENT_DEFAULT_FLOOR"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.DefaultFloor = i
		}
	}

	// Loader
	if v := os.Getenv("AMBIENT_BACKEND"); v != "" {
		cfg.Loader.Backend = v
	}
	if v := os.Getenv("AMBIENT_AUDIO_ROOT"); v != "" {
		cfg.Loader.AudioRoot = v
	}

	// TUI
	if v := os.Getenv("AMBIENT_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("AMBIENT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AMBIENT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
