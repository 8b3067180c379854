//go:build nocgo
// +build nocgo

package audio

import "fmt"

// NewOutputContext is unavailable in nocgo builds; use MockContext.
func NewOutputContext(sampleRate int) (Context, error) {
	return nil, fmt.Errorf("%w: audio output requires cgo", ErrContextNotReady)
}
