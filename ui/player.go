package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/versoapp/verso/internal/library"
	"github.com/versoapp/verso/internal/playback"
)

// rateStep is how much one keypress changes the playback rate; the
// engine clamps the result to its supported range.
const rateStep = 0.25

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8800"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))
)

type keyMap struct {
	Toggle   key.Binding
	Stop     key.Binding
	Forward  key.Binding
	Backward key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Forward:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "skip ahead")),
		Backward: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "skip back")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type model struct {
	cfg     Config
	orch    *playback.Orchestrator
	podcast *library.Podcast
	keys    keyMap
	spinner spinner.Model

	state    playback.State
	width    int
	finished bool
	quitting bool
}

// NewProgram builds the player TUI around an orchestrator and a
// podcast. The orchestrator must not have been loaded yet.
func NewProgram(cfg Config, orch *playback.Orchestrator, p *library.Podcast) *tea.Program {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 200 * time.Millisecond
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := model{
		cfg:     cfg,
		orch:    orch,
		podcast: p,
		keys:    defaultKeyMap(),
		spinner: sp,
		state:   orch.Snapshot(),
		width:   80,
	}
	return tea.NewProgram(m)
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		playback.WatchStateCmd(m.orch, m.cfg.TickInterval),
	}
	if m.cfg.LazyLoad {
		m.orch.Select(m.podcast)
	} else {
		cmds = append(cmds, playback.LoadCmd(m.orch, m.podcast))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playback.StateMsg:
		m.state = msg.State
		return m, playback.WatchStateCmd(m.orch, m.cfg.TickInterval)

	case playback.LoadedMsg:
		m.finished = false
		m.state = m.orch.Snapshot()
		return m, nil

	case playback.LoadFailedMsg:
		m.state = m.orch.Snapshot()
		return m, nil

	case playback.EndedMsg:
		m.finished = true
		m.state = m.orch.Snapshot()
		return m, playback.WatchStateCmd(m.orch, m.cfg.TickInterval)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.orch.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.finished = false
		return m, playback.ToggleCmd(m.orch)

	case key.Matches(msg, m.keys.Stop):
		_ = m.orch.Stop()

	case key.Matches(msg, m.keys.Forward):
		_ = m.orch.SkipForward()

	case key.Matches(msg, m.keys.Backward):
		_ = m.orch.SkipBackward()

	case key.Matches(msg, m.keys.Faster):
		_ = m.orch.SetRate(m.state.Rate + rateStep)

	case key.Matches(msg, m.keys.Slower):
		_ = m.orch.SetRate(m.state.Rate - rateStep)

	case key.Matches(msg, m.keys.Reload):
		m.finished = false
		return m, playback.LoadCmd(m.orch, m.podcast)
	}

	m.state = m.orch.Snapshot()
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width > 100 {
		width = 100
	}
	if width < 20 {
		width = 20
	}

	var b strings.Builder

	title := m.podcast.Title
	if title == "" {
		title = m.podcast.ID
	}
	b.WriteString("  ")
	b.WriteString(titleStyle.Render(truncate.StringWithTail(title, uint(width-4), "…"))) //nolint:gosec
	b.WriteString("\n")
	if m.cfg.Path != "" {
		p := condensePath(m.cfg.Path, m.cfg.HomeDir)
		b.WriteString("  ")
		b.WriteString(faintStyle.Render(truncate.StringWithTail(p, uint(width-4), "…"))) //nolint:gosec
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(m.progressLine(width - 4))
	b.WriteString("\n\n")

	if notice := m.noticeLine(); notice != "" {
		b.WriteString("  ")
		b.WriteString(notice)
		b.WriteString("\n\n")
	}

	b.WriteString("  ")
	b.WriteString(m.helpLine())
	b.WriteString("\n")
	return b.String()
}

func (m model) statusLine() string {
	s := m.state
	switch {
	case s.IsLoading:
		return m.spinner.View() + faintStyle.Render(" preparing audio…")
	case s.Phase == playback.PhaseError:
		return errorStyle.Render("✗ unavailable")
	case m.finished:
		return faintStyle.Render("■ finished")
	case s.IsPlaying:
		return playingStyle.Render("▶ playing") + m.modeBadge()
	case s.Phase == playback.PhaseReady || s.Phase == playback.PhaseFallback:
		return pausedStyle.Render("⏸ paused") + m.modeBadge()
	default:
		return faintStyle.Render("○ ready when you are")
	}
}

func (m model) modeBadge() string {
	switch m.state.Mode {
	case playback.ModeGenerated:
		return faintStyle.Render(" · generated voice")
	case playback.ModeFallback:
		return fallbackStyle.Render(" · fallback tone")
	default:
		return ""
	}
}

func (m model) progressLine(width int) string {
	s := m.state

	counter := fmt.Sprintf("%s / %s  %.2gx", formatDuration(s.Position), formatDuration(s.Duration), s.Rate)
	barWidth := width - lipgloss.Width(counter) - 2
	if barWidth < 10 {
		return faintStyle.Render(counter)
	}

	filled := int(s.Progress / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := playingStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	return bar + "  " + faintStyle.Render(counter)
}

func (m model) noticeLine() string {
	s := m.state
	if s.LastError == nil {
		return ""
	}
	if m.cfg.ShowRawErrors {
		return errorStyle.Render(s.LastError.Error())
	}
	switch s.Phase {
	case playback.PhaseFallback:
		return fallbackStyle.Render("audio unavailable, playing a placeholder tone")
	case playback.PhaseError:
		return errorStyle.Render("playback is blocked, press r to retry")
	}
	return ""
}

func (m model) helpLine() string {
	keys := []key.Binding{
		m.keys.Toggle, m.keys.Backward, m.keys.Forward,
		m.keys.Slower, m.keys.Faster, m.keys.Reload, m.keys.Quit,
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return faintStyle.Render(strings.Join(parts, " · "))
}

// condensePath shortens a path for display by replacing the home
// directory prefix with "~".
func condensePath(path, home string) string {
	if home == "" || !strings.HasPrefix(path, home) {
		return path
	}
	rest := strings.TrimPrefix(path, home)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return path
	}
	return "~" + rest
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "0:00"
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
