package audio

import "errors"

// Errors surfaced by the playback engine and output contexts.
var (
	// ErrLoad indicates the media resource could not be decoded or read.
	ErrLoad = errors.New("audio: media failed to load")

	// ErrNotLoaded indicates a playback operation was attempted with no
	// media loaded.
	ErrNotLoaded = errors.New("audio: no media loaded")

	// ErrContextNotReady indicates the output device has not finished
	// initializing.
	ErrContextNotReady = errors.New("audio: output device not ready")

	// ErrDestroyed indicates the engine was torn down and can no longer
	// be used.
	ErrDestroyed = errors.New("audio: engine destroyed")

	// ErrPermissionBlocked indicates the platform refused audio output
	// until the user acts (device policy, exclusive access, autoplay
	// style restrictions). Callers should keep state and retry after a
	// user gesture rather than fall back.
	ErrPermissionBlocked = errors.New("audio: output blocked pending user action")
)

// IsPermissionBlocked reports whether err is the permission-blocked
// class of output failure.
func IsPermissionBlocked(err error) bool {
	return errors.Is(err, ErrPermissionBlocked)
}
