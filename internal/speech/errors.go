package speech

import "errors"

// Errors raised during speech generation.
var (
	// ErrNoVoiceAvailable indicates the platform offers no synthesis
	// voice at all.
	ErrNoVoiceAvailable = errors.New("speech: no synthesis voice available")

	// ErrSynthesisFailed indicates the synthesis backend failed after a
	// voice was selected.
	ErrSynthesisFailed = errors.New("speech: synthesis failed")

	// ErrAlreadyGenerating indicates a generation request arrived while
	// another was in flight. Requests are rejected, not queued.
	ErrAlreadyGenerating = errors.New("speech: generation already in progress")
)

// GenerationError wraps a classification sentinel with the raw platform
// detail. The detail is for logs only; callers surface the sentinel.
type GenerationError struct {
	Err    error
	Detail string
}

func (e *GenerationError) Error() string {
	if e.Detail != "" {
		return e.Err.Error() + ": " + e.Detail
	}
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }
