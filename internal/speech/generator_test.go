package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/versoapp/verso/internal/cache"
)

// fakeSynth is a Synthesizer that returns canned PCM or an error, with
// an optional delay and a gate for concurrency tests.
type fakeSynth struct {
	pcm     []byte
	err     error
	delay   time.Duration
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice Voice, opts Options) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.pcm, nil
}

func (f *fakeSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testCatalog() Catalog {
	return NewStaticCatalog(
		Voice{ID: "v1", Name: "amy", Language: "en_US", Gender: "female"},
		Voice{ID: "v2", Name: "ryan", Language: "en_US", Gender: "male"},
	)
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(t.TempDir(), cache.DefaultMaxAge)
	if err != nil {
		t.Fatalf("cache.Open failed: %v", err)
	}
	return c
}

func TestGenerateProducesClip(t *testing.T) {
	synth := &fakeSynth{pcm: make([]byte, 44100*2)}
	g := NewGenerator(testCache(t), testCatalog(), synth, "en-US")

	res, err := g.Generate(context.Background(), "Hello there, this is a script.", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.FromCache {
		t.Error("first generation reported as cache hit")
	}
	if res.Format != FormatWAV {
		t.Errorf("format = %s, want wav", res.Format)
	}
	if len(res.Ref.Blob) == 0 {
		t.Error("result holds no audio")
	}
	if res.SizeBytes != int64(len(res.Ref.Blob)) {
		t.Errorf("size = %d, blob = %d", res.SizeBytes, len(res.Ref.Blob))
	}
	if res.Duration <= 0 {
		t.Errorf("duration = %v, want positive", res.Duration)
	}
}

func TestGenerateSecondCallServedFromCache(t *testing.T) {
	synth := &fakeSynth{pcm: make([]byte, 8820)}
	g := NewGenerator(testCache(t), testCatalog(), synth, "en-US")
	script := "The same script twice."

	first, err := g.Generate(context.Background(), script, DefaultOptions())
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := g.Generate(context.Background(), script, DefaultOptions())
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if !second.FromCache {
		t.Error("second call not served from cache")
	}
	if synth.callCount() != 1 {
		t.Errorf("synthesizer ran %d times, want 1", synth.callCount())
	}
	if first.Duration != second.Duration {
		t.Errorf("durations differ: %v vs %v", first.Duration, second.Duration)
	}
}

func TestGenerateDifferentOptionsMissCache(t *testing.T) {
	synth := &fakeSynth{pcm: make([]byte, 8820)}
	g := NewGenerator(testCache(t), testCatalog(), synth, "en-US")
	script := "Options matter."

	if _, err := g.Generate(context.Background(), script, DefaultOptions()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	fast := DefaultOptions()
	fast.Rate = 1.5
	res, err := g.Generate(context.Background(), script, fast)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.FromCache {
		t.Error("different rate served from cache")
	}
	if synth.callCount() != 2 {
		t.Errorf("synthesizer ran %d times, want 2", synth.callCount())
	}
}

func TestGenerateConcurrentRejected(t *testing.T) {
	synth := &fakeSynth{
		pcm:     make([]byte, 4410),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	g := NewGenerator(nil, testCatalog(), synth, "en-US")

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), "slow script", DefaultOptions())
		done <- err
	}()

	<-synth.started
	_, err := g.Generate(context.Background(), "second script", DefaultOptions())
	if !errors.Is(err, ErrAlreadyGenerating) {
		t.Errorf("concurrent call error = %v, want ErrAlreadyGenerating", err)
	}

	close(synth.release)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	// The guard clears once the first request finishes.
	if _, err := g.Generate(context.Background(), "third script", DefaultOptions()); err != nil {
		t.Errorf("follow-up generation failed: %v", err)
	}
}

func TestGenerateSynthesisFailure(t *testing.T) {
	synth := &fakeSynth{err: errors.New("engine exploded: code 137")}
	g := NewGenerator(testCache(t), testCatalog(), synth, "en-US")

	_, err := g.Generate(context.Background(), "doomed", DefaultOptions())
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("error = %v, want ErrSynthesisFailed", err)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatal("error is not a GenerationError")
	}
	if genErr.Detail == "" {
		t.Error("platform detail missing from GenerationError")
	}
}

func TestGenerateNoVoices(t *testing.T) {
	synth := &fakeSynth{pcm: []byte{0, 0}}
	g := NewGenerator(nil, NewStaticCatalog(), synth, "en-US")

	_, err := g.Generate(context.Background(), "anything", DefaultOptions())
	if !errors.Is(err, ErrNoVoiceAvailable) {
		t.Errorf("error = %v, want ErrNoVoiceAvailable", err)
	}
	if synth.callCount() != 0 {
		t.Error("synthesizer ran despite missing voices")
	}
}

func TestGenerateWithoutCache(t *testing.T) {
	synth := &fakeSynth{pcm: make([]byte, 4410)}
	g := NewGenerator(nil, testCatalog(), synth, "en-US")

	for i := 0; i < 2; i++ {
		res, err := g.Generate(context.Background(), "no cache here", DefaultOptions())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if res.FromCache {
			t.Error("cacheless generator reported a hit")
		}
	}
	if synth.callCount() != 2 {
		t.Errorf("synthesizer ran %d times, want 2", synth.callCount())
	}
}

func TestEstimateDuration(t *testing.T) {
	script := make([]byte, 150)
	for i := range script {
		script[i] = 'a'
	}

	// 150 chars at 15 chars/sec is 10 seconds at rate 1.
	if got := EstimateDuration(string(script), 1.0); got != 10*time.Second {
		t.Errorf("duration at rate 1.0 = %v, want 10s", got)
	}
	// Doubling the rate halves the estimate.
	if got := EstimateDuration(string(script), 2.0); got != 5*time.Second {
		t.Errorf("duration at rate 2.0 = %v, want 5s", got)
	}
	if got := EstimateDuration("", 1.0); got != 0 {
		t.Errorf("empty script duration = %v, want 0", got)
	}
}
