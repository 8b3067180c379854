package playback

import "errors"

// Errors surfaced by the orchestrator. Low level device and decoder
// details are logged, never carried in these values.
var (
	// ErrPlayback is the neutral error shown for any suppressed
	// low level playback failure.
	ErrPlayback = errors.New("playback: playback failed")

	// ErrLoadInProgress indicates Load was called while another load
	// was running. Loads are rejected, not queued.
	ErrLoadInProgress = errors.New("playback: load already in progress")

	// ErrPlaybackUnavailable is terminal for a load cycle: even the
	// fallback tone could not be played.
	ErrPlaybackUnavailable = errors.New("playback: no audio could be played")

	// ErrNothingLoaded indicates a control was used before any podcast
	// was associated with the session.
	ErrNothingLoaded = errors.New("playback: nothing loaded")
)
