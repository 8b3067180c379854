//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// otoContext implements Context on top of the oto audio library.
type otoContext struct {
	context    *oto.Context
	sampleRate int
	mu         sync.Mutex
	ready      bool
}

// NewOutputContext opens the platform audio device at the given sample
// rate and waits for it to become ready.
func NewOutputContext(sampleRate int) (Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	}

	log.Debug("initializing audio output",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	context, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(5 * time.Second):
		// oto v3 contexts have no Close; abandoned contexts are
		// garbage collected.
		return nil, fmt.Errorf("%w: initialization timeout", ErrContextNotReady)
	}

	return &otoContext{context: context, sampleRate: sampleRate, ready: true}, nil
}

func (c *otoContext) NewPlayer(r io.Reader) (Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready || c.context == nil {
		return nil, ErrContextNotReady
	}
	return &otoPlayer{player: c.context.NewPlayer(r)}, nil
}

func (c *otoContext) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *otoContext) SampleRate() int { return c.sampleRate }

func (c *otoContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// oto v3 has no context Close; drop the reference and let the
	// runtime clean up.
	c.ready = false
	c.context = nil
	return nil
}

// otoPlayer wraps an oto.Player to implement Player.
type otoPlayer struct {
	player *oto.Player
}

func (p *otoPlayer) Play()           { p.player.Play() }
func (p *otoPlayer) Pause()          { p.player.Pause() }
func (p *otoPlayer) IsPlaying() bool { return p.player.IsPlaying() }
func (p *otoPlayer) Err() error      { return p.player.Err() }
func (p *otoPlayer) Close() error    { return p.player.Close() }

func (p *otoPlayer) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.player.SetVolume(volume)
}
