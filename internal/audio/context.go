package audio

import "io"

// Context abstracts the audio output device so the engine can run
// against real hardware or a test double.
type Context interface {
	// NewPlayer creates a player reading PCM16 from r. The reader should
	// also implement io.Seeker if rewind support is needed.
	NewPlayer(r io.Reader) (Player, error)

	// IsReady reports whether the output device finished initializing.
	IsReady() bool

	// SampleRate returns the device sample rate.
	SampleRate() int

	// Close releases the context.
	Close() error
}

// Player is a single active stream on the output device.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool

	// Err returns a terminal playback error, if any occurred.
	Err() error

	// SetVolume sets the playback volume in the range 0.0 to 1.0.
	SetVolume(volume float64)

	Close() error
}

// Ref is an opaque reference to playable media: either a file on disk
// or an in-memory blob. Exactly one of the fields is set.
type Ref struct {
	Path string
	Blob []byte
}

// FileRef returns a Ref pointing at a file on disk.
func FileRef(path string) Ref { return Ref{Path: path} }

// BlobRef returns a Ref holding in-memory media bytes.
func BlobRef(b []byte) Ref { return Ref{Blob: b} }

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool { return r.Path == "" && len(r.Blob) == 0 }
