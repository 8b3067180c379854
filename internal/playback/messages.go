package playback

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/versoapp/verso/internal/library"
)

// Messages for Bubble Tea communication between playback and UI.

// StateMsg carries a fresh state snapshot.
type StateMsg struct {
	State State
}

// LoadedMsg indicates a load cycle finished successfully.
type LoadedMsg struct {
	Podcast *library.Podcast
	Mode    Mode
}

// LoadFailedMsg indicates a load cycle failed terminally.
type LoadFailedMsg struct {
	Err error
}

// EndedMsg indicates playback reached the end of the media.
type EndedMsg struct{}

// LoadCmd creates a command that runs the load pipeline.
func LoadCmd(o *Orchestrator, p *library.Podcast) tea.Cmd {
	return func() tea.Msg {
		if err := o.Load(context.Background(), p); err != nil {
			return LoadFailedMsg{Err: err}
		}
		return LoadedMsg{Podcast: p, Mode: o.Snapshot().Mode}
	}
}

// ToggleCmd creates a command that toggles play and pause.
func ToggleCmd(o *Orchestrator) tea.Cmd {
	return func() tea.Msg {
		if err := o.TogglePlayPause(context.Background()); err != nil {
			return LoadFailedMsg{Err: err}
		}
		return StateMsg{State: o.Snapshot()}
	}
}

// WatchStateCmd emits a state snapshot every interval. The UI loop
// re-issues the command after each message to keep the stream going.
func WatchStateCmd(o *Orchestrator, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		s := o.Snapshot()
		if s.Duration > 0 && s.Position >= s.Duration && !s.IsPlaying && s.Phase != PhaseIdle {
			return EndedMsg{}
		}
		return StateMsg{State: s}
	})
}
