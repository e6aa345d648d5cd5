package tail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	jsonLines     bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithJSON makes Format emit one JSON object per event. It takes precedence
// over a template.
func WithJSON(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.jsonLines = enabled
	}
}

// WithTemplate sets a custom format template. An unparsable template is
// ignored; use ParseTemplate to check one first.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := ParseTemplate(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// ParseTemplate parses an event format template.
func ParseTemplate(tmpl string) (*template.Template, error) {
	return template.New("format").Parse(tmpl)
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.jsonLines {
		return f.formatJSON(e)
	}
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatJSON formats an event as a single JSON line.
func (f *Formatter) formatJSON(e Event) string {
	data := newTemplateData(e)
	out, err := json.Marshal(map[string]any{
		"type":       data.Type,
		"time":       data.Timestamp.Format(time.RFC3339Nano),
		"floor":      data.Floor,
		"next_floor": data.NextFloor,
		"title":      data.Title,
		"playing":    data.Playing,
		"volume":     data.Volume,
		"message":    f.eventDescription(e),
	})
	if err != nil {
		return f.formatLine(e)
	}
	return string(out)
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	var buf bytes.Buffer
	if err := f.template.Execute(&buf, newTemplateData(e)); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

func newTemplateData(e Event) templateData {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Floor:     -1,
		NextFloor: -1,
	}

	if e.Current != nil {
		data.Floor = e.Current.CurrentFloor()
		data.NextFloor = e.Current.NextFloor()
		data.Playing = e.Current.Playing
		data.Volume = e.Current.VolumePercent()
		if e.Current.Current != nil {
			data.Title = e.Current.Current.Title
		}
	}
	return data
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Floor     int
	NextFloor int
	Title     string
	Playing   bool
	Volume    int
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Current.HasTrack() {
			return fmt.Sprintf("Now playing: %s", e.Current.Current)
		}
		return "Track changed"

	case EventTrackStaged:
		if e.Current.HasTrack() {
			return fmt.Sprintf("Staged: %s", e.Current.Current)
		}
		return "Track staged"

	case EventPause:
		return "Paused"

	case EventResume:
		if e.Current.HasTrack() {
			return fmt.Sprintf("Playing: %s", e.Current.Current)
		}
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.VolumePercent())
		}
		return "Volume changed"

	case EventTransitionStart:
		return "Transition started"

	case EventTransitionEnd:
		return "Transition finished"

	case EventPreload:
		if e.Current != nil && e.Current.Next != nil {
			return fmt.Sprintf("Preloaded: %s", e.Current.Next)
		}
		return "Next track preloaded"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackStaged:
		return "📼"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventVolumeChange:
		return "🔊"
	case EventTransitionStart:
		return "🔀"
	case EventTransitionEnd:
		return "✅"
	case EventPreload:
		return "⏭️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackStaged:
		return "track_staged"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventVolumeChange:
		return "volume_change"
	case EventTransitionStart:
		return "transition_start"
	case EventTransitionEnd:
		return "transition_end"
	case EventPreload:
		return "preload"
	default:
		return "unknown"
	}
}

// String returns the event type name.
func (t EventType) String() string {
	return eventTypeName(t)
}
