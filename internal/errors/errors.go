package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoTracks           = errors.New("no tracks configured")
	ErrFloorUnavailable   = errors.New("floor not available")
	ErrTransitioning      = errors.New("transition in progress")
	ErrPlaybackStart      = errors.New("playback could not start")
	ErrHandleClosed       = errors.New("audio handle closed")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrAlreadyInitialized = errors.New("controller already initialized")
	ErrNoAudioDevice      = errors.New("no audio device")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// AmbientError wraps an error with a user-friendly suggestion.
type AmbientError struct {
	Err        error
	Suggestion string
}

func (e *AmbientError) Error() string {
	return e.Err.Error()
}

func (e *AmbientError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &AmbientError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var ambientErr *AmbientError
	if errors.As(err, &ambientErr) && ambientErr.Suggestion != "" {
		return ambientErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNoTracks) {
		return "Add [[tracks]] entries to your config file, or run 'ambient config init'"
	}

	if errors.Is(err, ErrFloorUnavailable) {
		return "Run 'ambient floors' to see which floors loaded"
	}

	if errors.Is(err, ErrUnsupportedFormat) {
		return "Use .mp3, .ogg or .wav files"
	}

	if errors.Is(err, ErrPlaybackStart) || errors.Is(err, ErrNoAudioDevice) ||
		strings.Contains(errStr, "audio device") {
		return "Check that an audio output is available, or use --backend memory for a dry run"
	}

	if errors.Is(err, ErrConfigNotFound) {
		return "Run 'ambient config init' to create a configuration file"
	}

	if errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'ambient config show' to inspect the loaded configuration"
	}

	if strings.Contains(errStr, "no such file") {
		return "Check the track paths in your config file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
