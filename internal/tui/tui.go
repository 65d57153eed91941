// Package tui provides a Bubble Tea terminal user interface for the
// configurator.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/apply"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/assets"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/config"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/control"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/fetch"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/viewer"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))
)

// State represents the current UI state.
type State int

const (
	StateConnecting State = iota
	StateBrowsing
	StateOptions
	StateError
)

// LogLevel classifies a log line for styling.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelSuccess
	LevelError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   LogLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	// Selection lists
	apps       []string
	appCursor  int
	options    []string
	optCursor  int
	currentApp string

	// Pipeline
	ctx        context.Context
	cancel     context.CancelFunc
	remote     *viewer.Remote
	controller *control.Controller

	// Apply results arrive on this channel from the controller's
	// callback and are drained on every tick.
	results chan control.Result

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateConnecting,
		spinner:  sp,
		settings: settings,
		logs:     make([]LogEntry, 0),
		results:  make(chan control.Result, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.spinner.Tick, m.tickResults())
}

// Message types
type (
	// ConnectedMsg is sent when the pipeline is wired up.
	ConnectedMsg struct {
		Apps       []string
		Remote     *viewer.Remote
		Controller *control.Controller
		Err        error
	}

	// TickMsg drains pending apply results.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateOptions:
				m.state = StateBrowsing
			case StateBrowsing, StateError:
				m.shutdown()
				return m, tea.Quit
			}

		case "q":
			if m.state == StateBrowsing || m.state == StateError {
				m.shutdown()
				return m, tea.Quit
			}

		case "up", "k":
			m.moveCursor(-1)

		case "down", "j":
			m.moveCursor(1)

		case "enter":
			switch m.state {
			case StateBrowsing:
				if len(m.apps) > 0 {
					m.currentApp = m.apps[m.appCursor]
					m.options = m.settings.Mapping.Options(m.currentApp)
					m.optCursor = 0
					m.state = StateOptions
				}
			case StateOptions:
				if len(m.options) > 0 && m.controller != nil {
					option := m.options[m.optCursor]
					m.controller.Select(m.currentApp, option)
					m.appendLog(LogEntry{
						Message: fmt.Sprintf("queued %s = %s", m.currentApp, option),
						Level:   LevelInfo,
					})
				}
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ConnectedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.apps = msg.Apps
			m.remote = msg.Remote
			m.controller = msg.Controller
			m.state = StateBrowsing
			m.appendLog(LogEntry{Message: "connected to viewer", Level: LevelSuccess})
		}

	case TickMsg:
		for {
			select {
			case res := <-m.results:
				m.appendLog(resultLog(res))
			default:
				cmds = append(cmds, m.tickResults())
				return m, tea.Batch(cmds...)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) moveCursor(delta int) {
	switch m.state {
	case StateBrowsing:
		m.appCursor = clamp(m.appCursor+delta, len(m.apps))
	case StateOptions:
		m.optCursor = clamp(m.optCursor+delta, len(m.options))
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n && n > 0 {
		return n - 1
	}
	return i
}

func (m *Model) appendLog(entry LogEntry) {
	m.logs = append(m.logs, entry)
	// Keep only last 8 logs
	if len(m.logs) > 8 {
		m.logs = m.logs[len(m.logs)-8:]
	}
}

func resultLog(res control.Result) LogEntry {
	if res.Err != nil {
		msg := fmt.Sprintf("%s = %s failed: %v", res.Application, res.Option, res.Err)
		if res.PriorOption != "" {
			msg += fmt.Sprintf(" (still %s)", res.PriorOption)
		}
		return LogEntry{Message: msg, Level: LevelError}
	}
	return LogEntry{
		Message: fmt.Sprintf("%s = %s applied in %s", res.Application, res.Option, res.Elapsed.Round(time.Millisecond)),
		Level:   LevelSuccess,
	}
}

func (m *Model) shutdown() {
	if m.controller != nil {
		m.controller.Close()
	}
	if m.remote != nil {
		m.remote.Close()
	}
	m.cancel()
}

// tickResults returns a command to drain apply results periodically.
func (m Model) tickResults() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Freedom Configurator"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Configure materials and variants in the 3D viewer"))
	b.WriteString("\n\n")

	switch m.state {
	case StateConnecting:
		b.WriteString(m.viewConnecting())
	case StateBrowsing:
		b.WriteString(m.viewBrowsing())
	case StateOptions:
		b.WriteString(m.viewOptions())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewConnecting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Connecting to viewer and loading catalog..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewBrowsing() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Applications:"))
	b.WriteString("\n\n")

	applied := map[string]string{}
	if m.controller != nil {
		applied = m.controller.Snapshot().Applied
	}

	for i, app := range m.apps {
		line := "  " + app
		if i == m.appCursor {
			line = selectedStyle.Render("> " + app)
		}
		if option, ok := applied[app]; ok {
			line += appliedStyle.Render("  [" + option + "]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewOptions() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Options for %s:", m.currentApp)))
	b.WriteString("\n\n")

	var applied string
	if m.controller != nil {
		applied = m.controller.Snapshot().Applied[m.currentApp]
	}

	for i, option := range m.options {
		line := "  " + option
		if i == m.optCursor {
			line = selectedStyle.Render("> " + option)
		}
		if option == applied {
			line += appliedStyle.Render("  (applied)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.controller != nil && len(m.controller.Snapshot().Pending) > 0 {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(infoStyle.Render(" applying..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case LevelError:
			style = errorStyle
			prefix = "✗"
		case LevelSuccess:
			style = successStyle
			prefix = "✓"
		default:
			style = infoStyle
			prefix = "›"
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateConnecting:
		return "esc: quit"
	case StateBrowsing:
		return "enter: options • up/down: navigate • q: quit"
	case StateOptions:
		return "enter: apply • up/down: navigate • esc: back"
	case StateError:
		return "q: quit"
	}
	return ""
}

// connect wires the whole apply pipeline and reports the result.
func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		client := fetch.NewClient()

		text, err := client.GetString(m.ctx, m.settings.CatalogURL)
		if err != nil {
			return ConnectedMsg{Err: fmt.Errorf("load catalog: %w", err)}
		}
		cat := catalog.New(catalog.Parse(text))

		remote, err := viewer.Dial(m.ctx, m.settings.ViewerURL)
		if err != nil {
			return ConnectedMsg{Err: fmt.Errorf("connect viewer: %w", err)}
		}
		if err := remote.Init(m.ctx); err != nil {
			remote.Close()
			return ConnectedMsg{Err: fmt.Errorf("init viewer: %w", err)}
		}

		roots, err := remote.Objects(m.ctx)
		if err != nil {
			remote.Close()
			return ConnectedMsg{Err: fmt.Errorf("load scene: %w", err)}
		}
		index := scene.NewIndex(roots)

		// The TUI owns the terminal, so pipeline logging stays silent
		// and the log pane shows apply results instead.
		log := zap.NewNop()
		cache := assets.NewCache(m.settings.AssetBasePath, client, remote, log)
		applier := apply.New(cat, &m.settings.Mapping, cache, remote, index, log)
		controller := control.New(applier, m.settings.Debounce(), log)

		results := m.results
		controller.OnResult(func(res control.Result) {
			select {
			case results <- res:
			default:
			}
		})

		return ConnectedMsg{
			Apps:       m.settings.Mapping.Applications(),
			Remote:     remote,
			Controller: controller,
		}
	}
}

// Run starts the TUI application.
func Run(configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
