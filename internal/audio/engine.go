package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"
)

// Observer receives playback events from the engine.
//
// Event cardinality per loaded resource: OnProgress and OnPlayState fire
// zero or more times, OnError fires at most once and is terminal for the
// current resource, OnEnd fires at most once when playback reaches the
// natural end of the media.
type Observer interface {
	OnProgress(position, duration time.Duration)
	OnPlayState(playing bool)
	OnError(err error)
	OnEnd()
}

const defaultTickInterval = 100 * time.Millisecond

// Engine plays a single loaded media resource through an output
// Context. Loading a new resource releases the previous one. All
// methods are safe for concurrent use.
type Engine struct {
	ctx  Context
	tick time.Duration

	mu        sync.Mutex
	observers []Observer

	src      []byte // decoded PCM at the context sample rate
	working  []byte // src resampled for the current playback rate
	player   Player
	duration time.Duration

	rate   float64
	volume float64

	loaded    bool
	playing   bool
	destroyed bool
	endFired  bool
	errFired  bool

	base      time.Duration // media position when the clock last restarted
	startedAt time.Time     // wall time of the last play/seek while playing

	gen int // load generation, detaches stale watch loops
}

// NewEngine creates an engine on top of ctx. A tick of zero uses the
// default progress interval.
func NewEngine(ctx Context, tick time.Duration) *Engine {
	if tick <= 0 {
		tick = defaultTickInterval
	}
	return &Engine{
		ctx:    ctx,
		tick:   tick,
		rate:   1.0,
		volume: 1.0,
	}
}

// Subscribe registers an observer for playback events.
func (e *Engine) Subscribe(obs Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, obs)
}

// Load decodes the referenced media and prepares it for playback,
// releasing any previously loaded resource. It returns exactly once per
// call: nil when the media is ready, an error otherwise. Decode and
// read failures are reported as ErrLoad; a blocked output device keeps
// its ErrPermissionBlocked classification.
func (e *Engine) Load(ref Ref) error {
	e.mu.Lock()

	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	if !e.ctx.IsReady() {
		e.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoad, ErrContextNotReady)
	}

	data := ref.Blob
	if ref.Path != "" {
		var err error
		data, err = os.ReadFile(ref.Path)
		if err != nil {
			e.mu.Unlock()
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
	}
	if len(data) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: empty media reference", ErrLoad)
	}

	pcm, srcRate, channels, err := DecodeWAV(data)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if channels == 2 {
		pcm = downmixStereo(pcm)
	} else if channels != 1 {
		e.mu.Unlock()
		return fmt.Errorf("%w: unsupported channel count %d", ErrLoad, channels)
	}
	if srcRate != e.ctx.SampleRate() {
		pcm = Resample(pcm, float64(e.ctx.SampleRate())/float64(srcRate))
	}

	e.releaseLocked()
	e.src = pcm
	e.duration = PCMDuration(len(pcm), e.ctx.SampleRate(), 1)
	e.working = e.resampleForRateLocked()
	e.base = 0
	e.endFired = false
	e.errFired = false

	if err := e.restartPlayerLocked(0, false); err != nil {
		e.src = nil
		e.working = nil
		e.duration = 0
		e.mu.Unlock()
		if IsPermissionBlocked(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	e.loaded = true
	e.gen++
	go e.watch(e.gen)

	obs := e.observersLocked()
	dur := e.duration
	e.mu.Unlock()

	for _, o := range obs {
		o.OnProgress(0, dur)
	}
	return nil
}

// Play starts or resumes playback.
func (e *Engine) Play() error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.playing {
		e.mu.Unlock()
		return nil
	}
	// Playing again after the media drained restarts from the top;
	// resuming the spent device player would pin the position at the
	// end without producing audio.
	if e.duration > 0 && e.positionLocked() >= e.duration {
		if err := e.restartPlayerLocked(0, false); err != nil {
			e.mu.Unlock()
			return err
		}
		e.base = 0
		e.endFired = false
	}
	e.player.Play()
	e.playing = true
	e.startedAt = time.Now()
	obs := e.observersLocked()
	e.mu.Unlock()

	for _, o := range obs {
		o.OnPlayState(true)
	}
	return nil
}

// Pause halts playback keeping the current position.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if !e.playing {
		e.mu.Unlock()
		return nil
	}
	e.base = e.positionLocked()
	e.player.Pause()
	e.playing = false
	obs := e.observersLocked()
	e.mu.Unlock()

	for _, o := range obs {
		o.OnPlayState(false)
	}
	return nil
}

// Stop pauses playback and rewinds to the start.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	wasPlaying := e.playing
	if err := e.restartPlayerLocked(0, false); err != nil {
		e.mu.Unlock()
		return err
	}
	e.base = 0
	e.playing = false
	e.endFired = false
	obs := e.observersLocked()
	dur := e.duration
	e.mu.Unlock()

	for _, o := range obs {
		if wasPlaying {
			o.OnPlayState(false)
		}
		o.OnProgress(0, dur)
	}
	return nil
}

// Seek moves the playback position, clamped to the media bounds.
// Playback continues if it was running.
func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	wasPlaying := e.playing
	if err := e.restartPlayerLocked(pos, wasPlaying); err != nil {
		e.mu.Unlock()
		return err
	}
	e.base = pos
	e.startedAt = time.Now()
	if pos < e.duration {
		e.endFired = false
	}
	obs := e.observersLocked()
	dur := e.duration
	e.mu.Unlock()

	for _, o := range obs {
		o.OnProgress(pos, dur)
	}
	return nil
}

// SetRate changes the playback rate, clamped to 0.5..2.0. The loaded
// media is resampled from the original clip so the position is kept.
func (e *Engine) SetRate(rate float64) error {
	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 2.0 {
		rate = 2.0
	}

	e.mu.Lock()
	e.rate = rate
	if !e.loaded {
		e.mu.Unlock()
		return nil
	}
	pos := e.positionLocked()
	wasPlaying := e.playing
	e.working = e.resampleForRateLocked()
	if err := e.restartPlayerLocked(pos, wasPlaying); err != nil {
		e.mu.Unlock()
		return err
	}
	e.base = pos
	e.startedAt = time.Now()
	e.mu.Unlock()
	return nil
}

// SetVolume sets the output volume, clamped to 0..1.
func (e *Engine) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	e.mu.Lock()
	e.volume = volume
	if e.player != nil {
		e.player.SetVolume(volume)
	}
	e.mu.Unlock()
}

// Position returns the current media position.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// Duration returns the duration of the loaded media.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// IsPlaying reports whether playback is running.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// IsLoaded reports whether a media resource is currently loaded.
func (e *Engine) IsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Rate returns the current playback rate.
func (e *Engine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// Destroy releases the loaded media and the underlying player. It is
// idempotent; the engine is unusable afterwards.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.releaseLocked()
	e.mu.Unlock()
}

func (e *Engine) releaseLocked() {
	if e.player != nil {
		e.player.Close()
		e.player = nil
	}
	e.src = nil
	e.working = nil
	e.loaded = false
	e.playing = false
	e.duration = 0
	e.base = 0
	e.gen++
}

// resampleForRateLocked derives the working buffer for the current rate
// from the original clip. A rate above 1 shortens the buffer so the
// device drains it faster in media time.
func (e *Engine) resampleForRateLocked() []byte {
	if e.rate == 1.0 || len(e.src) == 0 {
		return e.src
	}
	return Resample(e.src, 1/e.rate)
}

// restartPlayerLocked replaces the device player with one positioned at
// pos within the working buffer.
func (e *Engine) restartPlayerLocked(pos time.Duration, play bool) error {
	if e.player != nil {
		e.player.Close()
		e.player = nil
	}

	offset := 0
	if e.duration > 0 {
		offset = int(float64(len(e.working)) * float64(pos) / float64(e.duration))
		offset &^= 1 // keep sample alignment
		if offset > len(e.working) {
			offset = len(e.working)
		}
	}

	player, err := e.ctx.NewPlayer(bytes.NewReader(e.working[offset:]))
	if err != nil {
		return err
	}
	player.SetVolume(e.volume)
	if play {
		player.Play()
	}
	e.player = player
	return nil
}

func (e *Engine) positionLocked() time.Duration {
	pos := e.base
	if e.playing {
		pos += time.Duration(float64(time.Since(e.startedAt)) * e.rate)
	}
	if pos > e.duration {
		pos = e.duration
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (e *Engine) observersLocked() []Observer {
	obs := make([]Observer, len(e.observers))
	copy(obs, e.observers)
	return obs
}

// watch polls playback state, emitting progress, terminal errors and
// the end event. One loop runs per load generation and exits when the
// resource is released or replaced.
func (e *Engine) watch(gen int) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for range ticker.C {
		e.mu.Lock()
		if e.destroyed || gen != e.gen || !e.loaded {
			e.mu.Unlock()
			return
		}

		pos := e.positionLocked()
		dur := e.duration
		obs := e.observersLocked()

		var termErr error
		if err := e.player.Err(); err != nil && !e.errFired {
			e.errFired = true
			e.playing = false
			termErr = err
		}

		ended := false
		if e.playing && !e.endFired && (pos >= dur || !e.player.IsPlaying()) {
			e.endFired = true
			e.playing = false
			e.base = dur
			e.player.Pause()
			pos = dur
			ended = true
		}
		e.mu.Unlock()

		for _, o := range obs {
			o.OnProgress(pos, dur)
			if termErr != nil {
				o.OnPlayState(false)
				o.OnError(termErr)
			}
			if ended {
				o.OnPlayState(false)
				o.OnEnd()
			}
		}
	}
}

// downmixStereo averages interleaved stereo PCM16 into mono.
func downmixStereo(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(pcm[i*4 : i*4+2]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*4+2 : i*4+4]))
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16((int32(l)+int32(r))/2)))
	}
	return out
}
