package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/ambient/internal/core"
)

// FloorModel is the bubbletea model for the floor picker.
//
// Pressing / opens a title filter; unloaded floors are listed but cannot be
// picked.
type FloorModel struct {
	tracks    []core.Track
	visible   []int
	cursor    int
	selected  int
	filter    textinput.Model
	filtering bool
	width     int
	height    int
}

// Styles for floor picker
var (
	floorTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	floorItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	floorSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	floorLoadedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	floorFailedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	floorHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewFloorModel creates a new floor picker model.
func NewFloorModel(tracks []core.Track) FloorModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by title..."
	ti.CharLimit = 64
	ti.Width = 40

	m := FloorModel{
		tracks:   tracks,
		selected: -1,
		filter:   ti,
		width:    80,
		height:   20,
	}
	m.applyFilter()
	return m
}

// Init initializes the model.
func (m FloorModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m FloorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if m.pick() {
				return m, tea.Quit
			}

		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.visible)-1, 0)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m FloorModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		if len(m.visible) == 1 && m.pick() {
			return m, tea.Quit
		}
		return m, nil
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes the visible floors from the filter text.
func (m *FloorModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	visible := make([]int, 0, len(m.tracks))
	for i, t := range m.tracks {
		if query == "" || strings.Contains(strings.ToLower(t.Title), query) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// pick selects the floor under the cursor if it loaded.
func (m *FloorModel) pick() bool {
	if m.cursor >= len(m.visible) {
		return false
	}
	t := m.tracks[m.visible[m.cursor]]
	if !t.Loaded {
		return false
	}
	m.selected = t.Floor
	return true
}

// View renders the model.
func (m FloorModel) View() string {
	var b strings.Builder

	b.WriteString(floorTitleStyle.Render("🏢 Select Floor"))
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(floorHintStyle.Render("No floors match"))
		b.WriteString("\n")
	}
	for row, idx := range m.visible {
		t := m.tracks[idx]

		var line strings.Builder
		if t.Loaded {
			line.WriteString(floorLoadedStyle.Render("● "))
		} else {
			line.WriteString(floorFailedStyle.Render("✗ "))
		}
		line.WriteString(fmt.Sprintf("%d  %s", t.Floor, t.Title))
		if !t.Loaded {
			line.WriteString(floorHintStyle.Render(" (failed to load)"))
		}

		if row == m.cursor {
			b.WriteString(floorSelectedStyle.Render("▸ " + line.String()))
		} else {
			b.WriteString(floorItemStyle.Render("  " + line.String()))
		}
		b.WriteString("\n")
	}

	// Help
	b.WriteString("\n")
	b.WriteString(floorHintStyle.Render("↑/↓ navigate • / filter • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected floor, or -1 if none.
func (m FloorModel) Selected() int {
	return m.selected
}

// RunFloorPicker runs the floor picker and returns the selected floor, or -1
// if the picker was dismissed.
func RunFloorPicker(tracks []core.Track) (int, error) {
	model := NewFloorModel(tracks)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, err
	}
	return finalModel.(FloorModel).Selected(), nil
}
