package tone

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/versoapp/verso/internal/audio"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(500*time.Millisecond, 440)
	b := Generate(500*time.Millisecond, 440)

	if !bytes.Equal(a, b) {
		t.Error("identical parameters produced different clips")
	}

	c := Generate(500*time.Millisecond, 880)
	if bytes.Equal(a, c) {
		t.Error("different frequencies produced identical clips")
	}
}

func TestGenerateDuration(t *testing.T) {
	clip := Generate(2*time.Second, 440)

	pcm, rate, channels, err := audio.DecodeWAV(clip)
	if err != nil {
		t.Fatalf("generated clip failed to decode: %v", err)
	}
	if rate != audio.SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, audio.SampleRate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}

	got := audio.PCMDuration(len(pcm), rate, channels)
	if got != 2*time.Second {
		t.Errorf("duration = %v, want 2s", got)
	}
}

func TestGenerateMinimumOneSample(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, time.Nanosecond} {
		clip := Generate(d, 440)
		pcm, _, _, err := audio.DecodeWAV(clip)
		if err != nil {
			t.Fatalf("duration %v: decode failed: %v", d, err)
		}
		if len(pcm) < 2 {
			t.Errorf("duration %v: got %d PCM bytes, want at least one sample", d, len(pcm))
		}
	}
}

func TestGenerateFadesToSilence(t *testing.T) {
	clip := Generate(time.Second, 440)
	pcm, _, _, err := audio.DecodeWAV(clip)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	first := int16(binary.LittleEndian.Uint16(pcm[0:2]))
	last := int16(binary.LittleEndian.Uint16(pcm[len(pcm)-2:]))
	if first != 0 {
		t.Errorf("first sample = %d, want 0", first)
	}
	if last != 0 {
		t.Errorf("last sample = %d, want 0", last)
	}

	// Mid-clip samples should carry real signal.
	mid := len(pcm) / 4
	var peak int16
	for i := mid; i < mid+200 && i*2+2 <= len(pcm); i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		if s > peak {
			peak = s
		}
	}
	if peak < 1000 {
		t.Errorf("mid-clip peak = %d, tone appears silent", peak)
	}
}
