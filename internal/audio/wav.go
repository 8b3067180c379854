package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Audio format shared by every component that produces or consumes PCM.
const (
	// SampleRate is the sample rate used for all generated audio.
	SampleRate = 44100
	// Channels is the number of audio channels (mono).
	Channels = 1
	// BitDepth is the bit depth of audio samples.
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample frame.
	BytesPerSample = Channels * BitDepth / 8
)

const wavHeaderSize = 44

// EncodeWAV wraps raw little-endian PCM16 samples in a RIFF/WAVE container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	buf := make([]byte, wavHeaderSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[wavHeaderSize:], pcm)

	return buf
}

// DecodeWAV parses a RIFF/WAVE container and returns the raw PCM16
// payload along with its sample rate and channel count. Only
// uncompressed 16-bit PCM is supported.
func DecodeWAV(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	if len(data) < wavHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var haveFmt bool
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			return nil, 0, 0, fmt.Errorf("truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, 0, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, 0, 0, fmt.Errorf("unsupported audio format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return nil, 0, 0, fmt.Errorf("unsupported bit depth %d", bits)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			return data[body : body+size], sampleRate, channels, nil
		}

		// Chunks are word aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	return nil, 0, 0, fmt.Errorf("no data chunk found")
}

// Resample converts PCM16 mono samples to a new length given by ratio
// (output samples per input sample) using linear interpolation.
func Resample(pcm []byte, ratio float64) []byte {
	in := len(pcm) / 2
	if in == 0 || ratio <= 0 {
		return nil
	}
	out := int(math.Round(float64(in) * ratio))
	if out < 1 {
		out = 1
	}

	result := make([]byte, out*2)
	for i := 0; i < out; i++ {
		srcPos := float64(i) / ratio
		j := int(srcPos)
		if j >= in-1 {
			j = in - 1
		}
		a := int16(binary.LittleEndian.Uint16(pcm[j*2 : j*2+2]))
		v := float64(a)
		if j+1 < in {
			b := int16(binary.LittleEndian.Uint16(pcm[j*2+2 : j*2+4]))
			frac := srcPos - float64(j)
			v = float64(a)*(1-frac) + float64(b)*frac
		}
		binary.LittleEndian.PutUint16(result[i*2:i*2+2], uint16(int16(v)))
	}
	return result
}

// PCMDuration returns the playback duration of a raw PCM16 buffer.
func PCMDuration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := n / (channels * 2)
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
