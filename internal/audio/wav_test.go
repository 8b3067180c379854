package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pcm := make([]byte, 4410*2)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}

	clip := EncodeWAV(pcm, SampleRate, 1)
	got, rate, channels, err := DecodeWAV(clip)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != SampleRate {
		t.Errorf("rate = %d, want %d", rate, SampleRate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if !bytes.Equal(got, pcm) {
		t.Error("PCM payload changed in round trip")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("not audio at all"),
		bytes.Repeat([]byte{0}, 100),
		[]byte("RIFF\x00\x00\x00\x00WAVE"), // headers but no chunks
	}
	for i, data := range cases {
		if _, _, _, err := DecodeWAV(data); err == nil {
			t.Errorf("case %d: expected decode error", i)
		}
	}
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	clip := EncodeWAV(make([]byte, 1000), SampleRate, 1)
	if _, _, _, err := DecodeWAV(clip[:len(clip)-100]); err == nil {
		t.Error("expected error for truncated data chunk")
	}
}

func TestResampleLength(t *testing.T) {
	pcm := make([]byte, 1000*2)

	half := Resample(pcm, 0.5)
	if len(half) != 500*2 {
		t.Errorf("half resample length = %d, want 1000", len(half))
	}
	double := Resample(pcm, 2.0)
	if len(double) != 2000*2 {
		t.Errorf("double resample length = %d, want 4000", len(double))
	}
	same := Resample(pcm, 1.0)
	if len(same) != len(pcm) {
		t.Errorf("identity resample length = %d, want %d", len(same), len(pcm))
	}
}

func TestPCMDuration(t *testing.T) {
	if got := PCMDuration(SampleRate*2, SampleRate, 1); got != time.Second {
		t.Errorf("one second of samples = %v", got)
	}
	if got := PCMDuration(0, SampleRate, 1); got != 0 {
		t.Errorf("empty buffer duration = %v", got)
	}
	if got := PCMDuration(100, 0, 1); got != 0 {
		t.Errorf("zero sample rate duration = %v", got)
	}
}
