package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/ambient/internal/audio"
	"github.com/tessro/ambient/internal/core"
	"github.com/tessro/ambient/internal/tui/components"
	"github.com/tessro/ambient/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelFloors Panel = iota
	PanelNowPlaying
	PanelHistory
)

const (
	volumeStep  = 0.05
	maxHistory  = 50
	errorWindow = 5 * time.Second
)

// Controller is the part of *audio.Controller the UI drives.
type Controller interface {
	Snapshot() core.PlaybackState
	Tracks() []core.Track
	ChangeTrackSmooth(ctx context.Context, floor int) audio.Outcome
	Play(ctx context.Context) audio.Outcome
	Pause(ctx context.Context) audio.Outcome
	SetVolume(v float64) float64
}

// App holds the TUI application state
type App struct {
	ctrl        Controller
	refreshRate time.Duration
}

// NewApp creates a new TUI application
func NewApp(ctrl Controller, refreshRate time.Duration) *App {
	if refreshRate <= 0 {
		refreshRate = 250 * time.Millisecond
	}
	return &App{ctrl: ctrl, refreshRate: refreshRate}
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	state   core.PlaybackState
	tracks  []core.Track
	history []components.HistoryEntry

	// Components
	floorsView  *components.Floors
	nowPlaying  *components.NowPlaying
	historyView *components.History

	// Overlays
	showHelp bool

	// Status line
	notice       string
	noticeExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	return Model{
		app:          app,
		focusedPanel: PanelFloors,
		floorsView:   components.NewFloors(),
		nowPlaying:   components.NewNowPlaying(),
		historyView:  components.NewHistory(),
		history:      make([]components.HistoryEntry, 0),
	}
}

// Messages
type tickMsg time.Time

type stateMsg struct {
	state  core.PlaybackState
	tracks []core.Track
}

type changeMsg struct {
	floor   int
	title   string
	outcome audio.Outcome
}

type actionMsg struct {
	action  string
	outcome audio.Outcome
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchState() tea.Cmd {
	ctrl := m.app.ctrl
	return func() tea.Msg {
		return stateMsg{state: ctrl.Snapshot(), tracks: ctrl.Tracks()}
	}
}

func (m Model) changeFloor(floor int) tea.Cmd {
	ctrl := m.app.ctrl
	title := ""
	if floor >= 0 && floor < len(m.tracks) {
		title = m.tracks[floor].Title
	}
	return func() tea.Msg {
		return changeMsg{
			floor:   floor,
			title:   title,
			outcome: ctrl.ChangeTrackSmooth(context.Background(), floor),
		}
	}
}

func (m Model) togglePlayPause() tea.Cmd {
	ctrl := m.app.ctrl
	playing := m.state.Playing
	return func() tea.Msg {
		if playing {
			return actionMsg{action: "pause", outcome: ctrl.Pause(context.Background())}
		}
		return actionMsg{action: "play", outcome: ctrl.Play(context.Background())}
	}
}

func (m Model) adjustVolume(delta float64) tea.Cmd {
	ctrl := m.app.ctrl
	target := m.state.Volume + delta
	return func() tea.Msg {
		ctrl.SetVolume(target)
		return actionMsg{action: "volume", outcome: audio.OutcomeOK}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.fetchState())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.fetchState())

	case stateMsg:
		if time.Now().After(m.noticeExpiry) {
			m.notice = ""
		}
		m.state = msg.state
		m.tracks = msg.tracks
		return m, nil

	case changeMsg:
		m.addToHistory(msg)
		if !msg.outcome.Accepted() {
			m.setNotice(fmt.Sprintf("Floor %d: %s", msg.floor, msg.outcome))
		}
		return m, m.fetchState()

	case actionMsg:
		if msg.outcome == audio.OutcomeFailed {
			m.setNotice(fmt.Sprintf("%s failed", msg.action))
		}
		return m, m.fetchState()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 3
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 2) % 3
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.togglePlayPause()
	case "+", "=":
		return m, m.adjustVolume(volumeStep)
	case "-":
		return m, m.adjustVolume(-volumeStep)
	case "r":
		return m, m.fetchState()
	}

	// Floor selection works from any panel.
	switch key := msg.String(); key {
	case "j", "down":
		m.floorsView.SelectNext(len(m.tracks))
	case "k", "up":
		m.floorsView.SelectPrev()
	case "enter":
		if len(m.tracks) > 0 {
			return m, m.changeFloor(m.floorsView.Selected())
		}
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.floorsView.Select(int(key[0]-'0'), len(m.tracks))
	}

	return m, nil
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeExpiry = time.Now().Add(errorWindow)
}

func (m *Model) addToHistory(msg changeMsg) {
	entry := components.HistoryEntry{
		Floor:    msg.floor,
		Title:    msg.title,
		Outcome:  msg.outcome.String(),
		Accepted: msg.outcome.Accepted(),
		At:       time.Now(),
	}

	// Add to front
	m.history = append([]components.HistoryEntry{entry}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Two columns. Left: Floors. Right: Now Playing (top), History (bottom)
	leftWidth := m.width * 45 / 100
	rightWidth := m.width - leftWidth - 2
	bodyHeight := m.height - 3
	topHeight := bodyHeight * 45 / 100
	bottomHeight := bodyHeight - topHeight - 2

	floors := m.floorsView.Render(m.tracks, m.state, leftWidth-2, bodyHeight, m.focusedPanel == PanelFloors)
	nowPlaying := m.nowPlaying.Render(m.state, rightWidth-2, topHeight, m.focusedPanel == PanelNowPlaying)
	history := m.historyView.Render(m.history, rightWidth-2, bottomHeight, m.focusedPanel == PanelHistory)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, history)
	main := lipgloss.JoinHorizontal(lipgloss.Top, floors, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  j/k,0-9:select  enter:change floor  space:play/pause  +/-:volume")

	if m.notice != "" {
		status = styles.Paused.Render(m.notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Ambient UI - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  Tab          Next panel
  Shift+Tab    Previous panel
  r            Refresh

  Floors
  ──────
  j/↓          Select next
  k/↑          Select previous
  0-9          Select floor
  Enter        Crossfade to selected floor

  Playback
  ────────
  Space        Play/Pause
  +/=          Volume up
  -            Volume down

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the TUI application
func Run(ctrl Controller, refreshRate time.Duration, theme string) error {
	styles.ApplyTheme(theme)

	model := NewModel(NewApp(ctrl, refreshRate))
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
