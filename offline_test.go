package secomposer

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/sameashark/se-composer/internal/params"
)

func testNote(id string, col, width int, pitch string) params.Note {
	return params.Note{ID: id, Time: params.PositionAt(col), Pitch: pitch, Width: width, Velocity: 1}
}

func TestRenderOfflineEmpty(t *testing.T) {
	buf, err := RenderOffline(nil, params.Defaults(), 44100)
	if buf != nil || err != nil {
		t.Fatalf("RenderOffline(nil) = %d samples, %v", len(buf), err)
	}
}

func TestRenderOfflineRejectsBadInput(t *testing.T) {
	notes := []params.Note{testNote("a", 0, 1, "C4")}
	if _, err := RenderOffline(notes, params.Defaults(), 0); !errors.Is(err, ErrExportFailed) {
		t.Fatalf("sample rate 0: err = %v", err)
	}
	p := params.Defaults()
	p.BPM = 20
	far := []params.Note{testNote("a", 1000, 1, "C4")}
	if _, err := RenderOffline(far, p, 8000); !errors.Is(err, ErrExportFailed) {
		t.Fatalf("overlong render: err = %v", err)
	}
}

func TestRenderOfflineLength(t *testing.T) {
	p := params.Defaults()
	buf, err := RenderOffline([]params.Note{testNote("a", 0, 4, "A4")}, p, 44100)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// 0.5s note + 0.2s release + 0.2*5 delay tail + 0.5s pad.
	if len(buf) != 97020 {
		t.Fatalf("len = %d, want 97020", len(buf))
	}
	var peak float32
	for _, s := range buf {
		peak = max(peak, s, -s)
	}
	if peak == 0 {
		t.Fatal("render is silent")
	}
	if peak > 0.9 {
		t.Fatalf("peak %f above limiter ceiling", peak)
	}
}

func TestRenderOfflineIsDeterministic(t *testing.T) {
	p := params.Defaults()
	p.Oscillator = params.OscNoise
	p.RepeatSpeed = 14
	p.LFODepth = 40
	p.LFOTarget = params.LFOFilter
	p.FilterEnvAmount = -1800
	notes := []params.Note{
		testNote("a", 0, 3, "C4"),
		testNote("b", 5, 2, "C4"),
	}
	hash := func() [32]byte {
		buf, err := RenderOffline(notes, p, 48000)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return sha256.Sum256(EncodeWAV(buf, 48000, 1))
	}
	if a, b := hash(), hash(); a != b {
		t.Fatalf("renders differ: %x vs %x", a, b)
	}
}
