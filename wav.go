package secomposer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavHeaderSize = 44

// Quantize converts float samples to 16-bit PCM. Values are clamped to
// [-1, 1]; negatives scale by 32768 and the rest by 32767, truncating.
func Quantize(samples []float32, sampleRate, channels int) *audio.IntBuffer {
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		v := max(-1, min(1, float64(s)))
		if v < 0 {
			buf.Data[i] = int(v * 0x8000)
		} else {
			buf.Data[i] = int(v * 0x7fff)
		}
	}
	return buf
}

// EncodeWAV returns a canonical 44-byte-header RIFF/WAVE PCM16 file.
func EncodeWAV(samples []float32, sampleRate, channels int) []byte {
	pcm := Quantize(samples, sampleRate, channels)
	dataSize := len(pcm.Data) * 2
	out := make([]byte, wavHeaderSize+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, v := range pcm.Data {
		binary.LittleEndian.PutUint16(out[wavHeaderSize+i*2:], uint16(int16(v)))
	}
	return out
}

// WriteWAV streams samples as PCM16 through a WAV encoder, for callers that
// write straight to a file.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, channels, 1)
	if err := enc.Write(Quantize(samples, sampleRate, channels)); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}
