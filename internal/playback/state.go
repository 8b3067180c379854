package playback

import "time"

// Phase is the top level orchestrator state.
type Phase int

// Orchestrator phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFallback
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFallback:
		return "fallback"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Mode records which media source the session ended up playing. Within
// one load cycle the mode only moves forward: primary, then generated,
// then fallback.
type Mode int

// Playback modes, ordered by fallback progression.
const (
	ModePrimary Mode = iota
	ModeGenerated
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeGenerated:
		return "generated"
	case ModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of the orchestrator.
type State struct {
	Phase     Phase
	Mode      Mode
	IsPlaying bool
	IsLoading bool
	Position  time.Duration
	Duration  time.Duration
	Progress  float64 // percent, 0..100; 0 when duration is unknown
	Rate      float64
	LastError error
}

// machine validates orchestrator phase transitions.
type machine struct {
	current     Phase
	transitions map[Phase][]Phase
}

func newMachine() *machine {
	return &machine{
		current: PhaseIdle,
		transitions: map[Phase][]Phase{
			PhaseIdle:     {PhaseLoading},
			PhaseLoading:  {PhaseReady, PhaseFallback, PhaseError, PhaseIdle},
			PhaseReady:    {PhaseLoading, PhaseFallback, PhaseIdle},
			PhaseFallback: {PhaseLoading, PhaseIdle},
			PhaseError:    {PhaseLoading, PhaseIdle},
		},
	}
}

// to attempts a transition, reporting whether it was valid.
func (m *machine) to(next Phase) bool {
	for _, valid := range m.transitions[m.current] {
		if valid == next {
			m.current = next
			return true
		}
	}
	return false
}

func (m *machine) phase() Phase { return m.current }
