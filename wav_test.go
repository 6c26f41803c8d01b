package secomposer

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-audio/wav"
)

func TestEncodeWAVSingleSample(t *testing.T) {
	b := EncodeWAV([]float32{1.0}, 44100, 1)
	if len(b) != 46 {
		t.Fatalf("len = %d, want 46", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != 2 {
		t.Fatalf("data size = %d, want 2", got)
	}
	if got := int16(binary.LittleEndian.Uint16(b[44:])); got != 32767 {
		t.Fatalf("sample = %d, want 32767", got)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:16]) != "WAVEfmt " || string(b[36:40]) != "data" {
		t.Fatalf("bad chunk ids: %q", b[:40])
	}
	if got := binary.LittleEndian.Uint32(b[4:8]); got != 38 {
		t.Fatalf("riff size = %d, want 38", got)
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	b := EncodeWAV(make([]float32, 6), 48000, 2)
	for _, tc := range []struct {
		name string
		got  uint32
		want uint32
	}{
		{"format", uint32(binary.LittleEndian.Uint16(b[20:])), 1},
		{"channels", uint32(binary.LittleEndian.Uint16(b[22:])), 2},
		{"sample rate", binary.LittleEndian.Uint32(b[24:]), 48000},
		{"byte rate", binary.LittleEndian.Uint32(b[28:]), 48000 * 4},
		{"block align", uint32(binary.LittleEndian.Uint16(b[32:])), 4},
		{"bits", uint32(binary.LittleEndian.Uint16(b[34:])), 16},
		{"data size", binary.LittleEndian.Uint32(b[40:]), 12},
	} {
		if tc.got != tc.want {
			t.Fatalf("%s = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
}

func TestQuantizeIsAsymmetric(t *testing.T) {
	got := Quantize([]float32{-1, -0.5, 0, 0.5, 1, 2, -3}, 44100, 1).Data
	want := []int{-32768, -16384, 0, 16383, 32767, 32767, -32768}
	if !slices.Equal(got, want) {
		t.Fatalf("Quantize = %v, want %v", got, want)
	}
}

func TestEncodeWAVDecodes(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.9, -0.9, 1}
	dec := wav.NewDecoder(bytes.NewReader(EncodeWAV(samples, 22050, 2)))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if want := Quantize(samples, 22050, 2).Data; !slices.Equal(buf.Data, want) {
		t.Fatalf("decoded %v, want %v", buf.Data, want)
	}
}

func TestWriteWAVMatchesEncode(t *testing.T) {
	samples := []float32{0.1, -0.7, 0.3, 0.99}
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := WriteWAV(f, samples, 44100, 1); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	dec := wav.NewDecoder(bytes.NewReader(raw))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := Quantize(samples, 44100, 1).Data; !slices.Equal(buf.Data, want) {
		t.Fatalf("decoded %v, want %v", buf.Data, want)
	}
}
