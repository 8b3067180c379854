// Package playback coordinates the spoken-audio pipeline: it resolves
// a podcast to playable media (pre-produced file, generated speech, or
// the fallback tone), drives the playback engine and exposes a
// read-only state snapshot to the UI layer.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/versoapp/verso/internal/audio"
	"github.com/versoapp/verso/internal/library"
	"github.com/versoapp/verso/internal/speech"
	"github.com/versoapp/verso/internal/tone"
)

// Orchestrator owns one playback session at a time. It implements
// audio.Observer to track engine events.
//
// Fallback rules: any failure to obtain playable audio, primary or
// generated, ends in the fallback tone. A blocked output device is the
// exception; that is surfaced for retry after a user gesture.
type Orchestrator struct {
	cfg    Config
	engine *audio.Engine
	gen    *speech.Generator

	mu       sync.RWMutex
	machine  *machine
	mode     Mode
	podcast  *library.Podcast
	loading  bool
	session  int
	lastErr  error
	playing  bool
	position time.Duration
	duration time.Duration
	torn     bool
}

// NewOrchestrator wires an orchestrator to an engine and generator and
// subscribes to engine events.
func NewOrchestrator(cfg Config, engine *audio.Engine, gen *speech.Generator) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		engine:  engine,
		gen:     gen,
		machine: newMachine(),
	}
	engine.Subscribe(o)
	engine.SetVolume(cfg.Volume)
	return o
}

// Load resolves the podcast to playable media and prepares the engine.
// It is not reentrant: a second call while one runs fails with
// ErrLoadInProgress. A newer Load supersedes the session of an older
// one, so stale results are discarded.
func (o *Orchestrator) Load(ctx context.Context, p *library.Podcast) error {
	o.mu.Lock()
	if o.torn {
		o.mu.Unlock()
		return ErrNothingLoaded
	}
	if o.loading {
		o.mu.Unlock()
		return ErrLoadInProgress
	}
	o.loading = true
	o.session++
	sess := o.session
	o.podcast = p
	o.mode = ModePrimary
	o.lastErr = nil
	o.position = 0
	o.duration = 0
	o.machine.to(PhaseLoading)
	o.mu.Unlock()

	err := o.runLoad(ctx, sess, p)

	o.mu.Lock()
	if o.session == sess {
		o.loading = false
	}
	o.mu.Unlock()
	return err
}

func (o *Orchestrator) runLoad(ctx context.Context, sess int, p *library.Podcast) error {
	if !p.NeedsGeneration() {
		err := o.engine.Load(audio.FileRef(p.AudioRef))
		if err == nil {
			o.finish(sess, PhaseReady, nil)
			return nil
		}
		if audio.IsPermissionBlocked(err) {
			o.finish(sess, PhaseError, audio.ErrPermissionBlocked)
			return audio.ErrPermissionBlocked
		}
		log.Warn("primary audio failed to load", "podcast", p.ID, "ref", p.AudioRef, "err", err)
	}

	o.advanceMode(sess, ModeGenerated)
	res, err := o.gen.Generate(ctx, p.ScriptText(), o.cfg.VoiceOptions())
	switch {
	case err == nil:
		log.Debug("speech generated",
			"podcast", p.ID,
			"duration", res.Duration,
			"bytes", res.SizeBytes,
			"cached", res.FromCache)
		loadErr := o.engine.Load(res.Ref)
		if loadErr == nil {
			o.finish(sess, PhaseReady, nil)
			return nil
		}
		if audio.IsPermissionBlocked(loadErr) {
			o.finish(sess, PhaseError, audio.ErrPermissionBlocked)
			return audio.ErrPermissionBlocked
		}
		log.Warn("generated audio failed to load", "podcast", p.ID, "err", loadErr)
	default:
		log.Warn("speech generation failed", "podcast", p.ID, "err", err)
	}

	return o.fallback(sess)
}

// fallback loads the synthesized tone as the last resort.
func (o *Orchestrator) fallback(sess int) error {
	o.advanceMode(sess, ModeFallback)

	clip := tone.Generate(o.cfg.FallbackDuration, o.cfg.FallbackFrequency)
	if err := o.engine.Load(audio.BlobRef(clip)); err != nil {
		log.Error("fallback tone failed to load", "err", err)
		o.finish(sess, PhaseError, ErrPlaybackUnavailable)
		return ErrPlaybackUnavailable
	}

	o.finish(sess, PhaseFallback, ErrPlayback)
	return nil
}

func (o *Orchestrator) finish(sess int, phase Phase, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != sess || o.torn {
		return
	}
	o.machine.to(phase)
	o.lastErr = err
	if phase == PhaseReady || phase == PhaseFallback {
		o.position = 0
		o.duration = o.engine.Duration()
	}
}

// advanceMode moves the session mode forward; the mode never moves
// backwards within a load cycle.
func (o *Orchestrator) advanceMode(sess int, m Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != sess || o.torn {
		return
	}
	if m > o.mode {
		o.mode = m
	}
}

// Select associates a podcast with the session without loading it;
// TogglePlayPause loads it lazily on first use.
func (o *Orchestrator) Select(p *library.Podcast) {
	o.mu.Lock()
	if !o.torn {
		o.podcast = p
	}
	o.mu.Unlock()
}

// TogglePlayPause flips playback. With nothing loaded yet it loads the
// current podcast first, then starts playing.
func (o *Orchestrator) TogglePlayPause(ctx context.Context) error {
	o.mu.RLock()
	phase := o.machine.phase()
	p := o.podcast
	torn := o.torn
	o.mu.RUnlock()

	if torn {
		return ErrNothingLoaded
	}
	switch phase {
	case PhaseLoading:
		return ErrLoadInProgress
	case PhaseIdle, PhaseError:
		if p == nil {
			return ErrNothingLoaded
		}
		if err := o.Load(ctx, p); err != nil {
			return err
		}
		return o.engine.Play()
	}

	if o.engine.IsPlaying() {
		return o.engine.Pause()
	}
	return o.engine.Play()
}

// Play starts playback of the loaded media.
func (o *Orchestrator) Play() error { return o.engine.Play() }

// Pause halts playback keeping the position.
func (o *Orchestrator) Pause() error { return o.engine.Pause() }

// Stop halts playback and rewinds.
func (o *Orchestrator) Stop() error { return o.engine.Stop() }

// Seek moves to an absolute position, clamped to the media bounds.
func (o *Orchestrator) Seek(pos time.Duration) error { return o.engine.Seek(pos) }

// SkipForward jumps ahead by the configured skip interval.
func (o *Orchestrator) SkipForward() error {
	return o.engine.Seek(o.engine.Position() + o.cfg.SkipInterval)
}

// SkipBackward jumps back by the configured skip interval.
func (o *Orchestrator) SkipBackward() error {
	return o.engine.Seek(o.engine.Position() - o.cfg.SkipInterval)
}

// SetRate changes the playback rate.
func (o *Orchestrator) SetRate(rate float64) error { return o.engine.SetRate(rate) }

// SetVolume changes the output volume.
func (o *Orchestrator) SetVolume(volume float64) { o.engine.SetVolume(volume) }

// Reload runs the load pipeline again for the current podcast.
func (o *Orchestrator) Reload(ctx context.Context) error {
	o.mu.RLock()
	p := o.podcast
	o.mu.RUnlock()
	if p == nil {
		return ErrNothingLoaded
	}
	return o.Load(ctx, p)
}

// Teardown releases the session and the engine. It is idempotent;
// engine callbacks arriving afterwards are ignored.
func (o *Orchestrator) Teardown() {
	o.mu.Lock()
	if o.torn {
		o.mu.Unlock()
		return
	}
	o.torn = true
	o.session++
	o.podcast = nil
	o.playing = false
	o.machine.to(PhaseIdle)
	o.mu.Unlock()

	o.engine.Destroy()
}

// Snapshot returns a read-only copy of the session state.
func (o *Orchestrator) Snapshot() State {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := State{
		Phase:     o.machine.phase(),
		Mode:      o.mode,
		IsPlaying: o.playing,
		IsLoading: o.loading,
		Position:  o.position,
		Duration:  o.duration,
		Rate:      o.engine.Rate(),
		LastError: o.lastErr,
	}
	if s.Duration > 0 {
		s.Progress = float64(s.Position) / float64(s.Duration) * 100
		if s.Progress < 0 {
			s.Progress = 0
		}
		if s.Progress > 100 {
			s.Progress = 100
		}
	}
	return s
}

// Engine event handlers (audio.Observer).

// OnProgress records the playback position.
func (o *Orchestrator) OnProgress(pos, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torn {
		return
	}
	o.position = pos
	o.duration = dur
}

// OnPlayState records whether the engine is playing.
func (o *Orchestrator) OnPlayState(playing bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torn {
		return
	}
	o.playing = playing
}

// OnError handles a terminal engine error: permission blocks are
// surfaced for retry, everything else is suppressed to the neutral
// playback error and answered with the fallback tone.
func (o *Orchestrator) OnError(err error) {
	if audio.IsPermissionBlocked(err) {
		o.mu.Lock()
		if !o.torn {
			o.lastErr = audio.ErrPermissionBlocked
		}
		o.mu.Unlock()
		return
	}

	log.Warn("playback error suppressed", "err", err)

	o.mu.Lock()
	if o.torn {
		o.mu.Unlock()
		return
	}
	sess := o.session
	inReady := o.machine.phase() == PhaseReady
	o.lastErr = ErrPlayback
	o.mu.Unlock()

	if inReady {
		o.fallback(sess)
	}
}

// OnEnd marks natural completion.
func (o *Orchestrator) OnEnd() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.torn {
		return
	}
	o.playing = false
	o.position = o.duration
}
