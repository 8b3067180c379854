// Package tone synthesizes fallback audio tones. Generation is pure:
// the same duration and frequency always produce the same bytes.
package tone

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/versoapp/verso/internal/audio"
)

const (
	// fadeDuration is the linear fade applied at both ends of the tone
	// to avoid clicks.
	fadeDuration = 20 * time.Millisecond

	// amplitude scales the sine below full range to leave headroom.
	amplitude = 0.5
)

// Generate renders a sine tone of the given duration and frequency as a
// complete WAV clip (PCM16 mono at the project sample rate). Durations
// of zero or less still produce a clip with a single sample.
func Generate(d time.Duration, freqHz float64) []byte {
	n := int(d.Seconds() * audio.SampleRate)
	if n < 1 {
		n = 1
	}

	fade := int(fadeDuration.Seconds() * audio.SampleRate)
	if fade*2 > n {
		fade = n / 2
	}

	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/audio.SampleRate)

		if fade > 0 {
			if i < fade {
				v *= float64(i) / float64(fade)
			}
			if i >= n-fade {
				v *= float64(n-1-i) / float64(fade)
			}
		}

		s := v * math.MaxInt16
		if s > math.MaxInt16 {
			s = math.MaxInt16
		}
		if s < math.MinInt16 {
			s = math.MinInt16
		}
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16(int16(s)))
	}

	return audio.EncodeWAV(pcm, audio.SampleRate, audio.Channels)
}
