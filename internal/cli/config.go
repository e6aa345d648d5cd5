package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tessro/ambient/internal/config"
	apperrors "github.com/tessro/ambient/internal/errors"
	"github.com/tessro/ambient/internal/wizard"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing ambient configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values.

The file is YAML if its name ends in .yaml or .yml, TOML otherwise.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  playback.volume         Target volume (0-1)
  playback.preload        Preload the next floor after every change (true/false)
  playback.default_floor  Floor played when none is given
  playback.crossfade_ms   Crossfade duration in milliseconds
  loader.backend          Audio backend (ebiten/memory)
  loader.audio_root       Directory holding the track files
  tui.theme               Dashboard theme (auto/dark/light)
  log.level               Log level (debug/info/warn/error)

Any other section.key from 'ambient config show' works too.

Examples:
  ambient config set playback.volume 0.3
  ambient config set loader.audio_root ~/Music/ambient`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}
	return config.Encode(os.Stdout, cfg, config.FormatFor(getConfigPath()))
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, configPath),
			"Run 'ambient config init' first",
		)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Try common editors
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		if JSONOutput() || !wizard.IsTerminal() {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
		overwrite := false
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("Overwrite %s?", configPath)).
			Description("The existing file will be replaced with defaults.").
			Affirmative("Overwrite").
			Negative("Cancel").
			Value(&overwrite)
		if err := confirm.Run(); err != nil {
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
		if !overwrite {
			fmt.Println("Left existing config unchanged")
			return nil
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point loader.audio_root at the directory holding your tracks")
	fmt.Println("  2. Run 'ambient floors' to check that every track loads")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := config.FindConfigFile(); path != "" {
		return path
	}
	return config.DefaultPath()
}

// writeConfigFile encodes v to path with the ambient header.
func writeConfigFile(path string, v any) error {
	var buf bytes.Buffer
	_, _ = fmt.Fprintln(&buf, "# Ambient Configuration")
	_, _ = fmt.Fprintln(&buf, "")

	if err := config.Encode(&buf, v, config.FormatFor(path)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, configPath),
			"Run 'ambient config init' first",
		)
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	format := config.FormatFor(configPath)
	rawConfig := make(map[string]any)
	switch format {
	case config.FormatYAML:
		err = yaml.Unmarshal(data, &rawConfig)
	default:
		_, err = toml.Decode(string(data), &rawConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	typedValue, err := setConfigValue(rawConfig, key, value)
	if err != nil {
		return err
	}

	// Refuse to write a file that would not load.
	var check bytes.Buffer
	if err := config.Encode(&check, rawConfig, format); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	next, err := config.Decode(check.Bytes(), format)
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	if err := writeConfigFile(configPath, rawConfig); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"status": "updated",
			"key":    key,
			"value":  typedValue,
		})
	}
	fmt.Printf("Set %s = %v\n", key, typedValue)
	return nil
}

// setConfigValue stores value under key ("section.field") in raw, typed by
// the field it names, and returns the stored value.
func setConfigValue(raw map[string]any, key, value string) (any, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" || strings.Contains(field, ".") {
		return nil, fmt.Errorf("invalid key format. Use 'section.key' (e.g., playback.volume)")
	}
	if section == "tracks" {
		return nil, fmt.Errorf("tracks cannot be set from the command line; edit the file with 'ambient config edit'")
	}

	var typed any
	switch configKeyKind(key) {
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		typed = f
	case "int":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		typed = int64(i)
	case "bool":
		typed = value == "true" || value == "1" || value == "yes"
	case "string":
		typed = value
	default:
		return nil, fmt.Errorf("unknown config key %s", key)
	}

	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	sectionMap[field] = typed
	return typed, nil
}

func configKeyKind(key string) string {
	switch key {
	case "playback.volume":
		return "float"
	case "playback.default_floor", "playback.crossfade_ms", "playback.fade_in_ms",
		"playback.smooth_crossfade_ms", "playback.smooth_fade_in_ms",
		"playback.play_fade_ms", "playback.pause_fade_ms",
		"loader.sample_rate", "loader.concurrency",
		"tail.interval", "tui.refresh_interval",
		"log.max_size", "log.max_backups", "log.max_age":
		return "int"
	case "playback.preload", "tail.emoji", "tail.timestamp", "log.compress":
		return "bool"
	case "loader.backend", "loader.audio_root", "tail.format", "tui.theme",
		"log.level", "log.format", "log.file":
		return "string"
	default:
		return ""
	}
}
