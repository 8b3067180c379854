// Package speech generates spoken audio from script text via the
// platform synthesis voice, consulting the persistent audio cache
// before doing any work.
package speech

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/versoapp/verso/internal/audio"
	"github.com/versoapp/verso/internal/cache"
)

// charsPerSecond approximates spoken character throughput at rate 1.0.
// Durations are estimated from text length, not measured from the
// produced clip, so cached and fresh results agree.
const charsPerSecond = 15.0

// Format identifies the container of generated audio.
type Format string

// Known audio formats. Generation always produces WAV; the others can
// appear on externally provided media.
const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
	FormatOGG Format = "ogg"
)

// Result describes one generated (or cache-served) audio clip.
type Result struct {
	Ref       audio.Ref
	Duration  time.Duration
	Format    Format
	SizeBytes int64
	FromCache bool
}

// Generator produces spoken audio for scripts. At most one generation
// runs at a time; concurrent requests fail fast with
// ErrAlreadyGenerating.
type Generator struct {
	cache    *cache.Cache // nil when storage is unavailable
	catalog  Catalog
	synth    Synthesizer
	language string

	busy atomic.Bool
}

// NewGenerator wires a generator. cache may be nil, in which case every
// request synthesizes fresh audio.
func NewGenerator(c *cache.Cache, catalog Catalog, synth Synthesizer, language string) *Generator {
	return &Generator{
		cache:    c,
		catalog:  catalog,
		synth:    synth,
		language: language,
	}
}

// Generate produces audio for the script text. The cache is consulted
// first; on a miss a voice is selected and a capture session runs. The
// produced clip is cached best-effort.
func (g *Generator) Generate(ctx context.Context, script string, opts Options) (Result, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyGenerating
	}
	defer g.busy.Store(false)

	opts = opts.normalized()
	key := cache.Fingerprint(string(opts.Profile), opts.Rate, opts.Pitch, script)

	if g.cache != nil {
		if entry, ok := g.cache.Get(key); ok {
			log.Debug("cache hit", "key", key, "size", len(entry.Audio))
			return Result{
				Ref:       audio.BlobRef(entry.Audio),
				Duration:  time.Duration(entry.Meta.DurationSeconds * float64(time.Second)),
				Format:    FormatWAV,
				SizeBytes: int64(len(entry.Audio)),
				FromCache: true,
			}, nil
		}
		log.Debug("cache miss", "key", key)
	}

	if err := g.catalog.Ready(ctx); err != nil {
		return Result{}, &GenerationError{Err: ErrNoVoiceAvailable, Detail: err.Error()}
	}
	voice, err := SelectVoice(g.catalog.Voices(), g.language, opts.Profile)
	if err != nil {
		return Result{}, err
	}
	log.Debug("voice selected", "voice", voice.Name, "language", voice.Language, "profile", opts.Profile)

	pcm, err := g.synth.Synthesize(ctx, script, voice, opts)
	if err != nil {
		return Result{}, &GenerationError{Err: ErrSynthesisFailed, Detail: err.Error()}
	}

	clip := audio.EncodeWAV(pcm, audio.SampleRate, audio.Channels)
	duration := EstimateDuration(script, opts.Rate)

	if g.cache != nil {
		meta := cache.Metadata{DurationSeconds: duration.Seconds()}
		if err := g.cache.Put(key, clip, meta); err != nil {
			// Cache failures never fail the request.
			log.Warn("failed to cache generated audio", "key", key, "err", err)
		}
	}

	return Result{
		Ref:       audio.BlobRef(clip),
		Duration:  duration,
		Format:    FormatWAV,
		SizeBytes: int64(len(clip)),
	}, nil
}

// EstimateDuration approximates how long the spoken script will run at
// the given rate.
func EstimateDuration(script string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1.0
	}
	seconds := float64(len(script)) / (rate * charsPerSecond)
	return time.Duration(seconds * float64(time.Second))
}
