package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/tessro/ambient/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates a string to maxLen, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatVolume formats a volume in [0, 1] as a percentage.
func FormatVolume(v float64) string {
	return fmt.Sprintf("%d%%", int(core.ClampVolume(v)*100+0.5))
}

// writeFloors renders tracks as a floor table.
func writeFloors(out io.Writer, tracks []core.Track, state core.PlaybackState) {
	t := NewTableWriter(out, "", "FLOOR", "TITLE", "PATH", "STATUS")
	for _, tr := range tracks {
		status := "ready"
		if !tr.Loaded {
			status = "failed"
			if tr.LoadErr != nil {
				status = "failed: " + TruncateString(tr.LoadErr.Error(), 40)
			}
		}
		t.Row(
			StatusIcon(tr.Floor == state.CurrentFloor()),
			fmt.Sprintf("%d", tr.Floor),
			TruncateString(tr.Title, 32),
			TruncateString(tr.Path, 40),
			status,
		)
	}
	t.Flush()
}
