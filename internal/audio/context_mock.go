package audio

import (
	"io"
	"sync"
)

// MockContext is a Context implementation for tests and nocgo builds.
// Players created from it consume no audio device and can be driven
// from test code.
type MockContext struct {
	mu sync.Mutex

	// NewPlayerErr, when set, is returned from NewPlayer. Setting it to
	// ErrPermissionBlocked simulates a platform output block.
	NewPlayerErr error

	// NotReady makes IsReady report false.
	NotReady bool

	players []*MockPlayer
}

// NewMockContext creates a ready mock output context.
func NewMockContext() *MockContext {
	return &MockContext{}
}

func (c *MockContext) NewPlayer(r io.Reader) (Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.NewPlayerErr != nil {
		return nil, c.NewPlayerErr
	}
	p := &MockPlayer{reader: r, volume: 1.0}
	c.players = append(c.players, p)
	return p, nil
}

func (c *MockContext) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.NotReady
}

func (c *MockContext) SampleRate() int { return SampleRate }

func (c *MockContext) Close() error { return nil }

// Players returns every player the context has created, in order.
func (c *MockContext) Players() []*MockPlayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*MockPlayer, len(c.players))
	copy(out, c.players)
	return out
}

// MockPlayer records playback calls and lets tests inject errors and
// end-of-stream conditions.
type MockPlayer struct {
	mu      sync.Mutex
	reader  io.Reader
	playing bool
	closed  bool
	volume  float64
	err     error

	PlayCalls  int
	PauseCalls int
}

func (p *MockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.playing = true
		p.PlayCalls++
	}
}

func (p *MockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.PauseCalls++
}

func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *MockPlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *MockPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

// Volume returns the last volume set on the player.
func (p *MockPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *MockPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockPlayer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// FinishStream simulates the device draining its buffer: playback stops
// as it would at end of media.
func (p *MockPlayer) FinishStream() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// FailWith makes Err return err on the next poll.
func (p *MockPlayer) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}
