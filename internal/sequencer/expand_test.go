package sequencer

import (
	"math"
	"testing"

	"github.com/sameashark/se-composer/internal/params"
)

func note(id string, col, width int, pitch string) params.Note {
	return params.Note{ID: id, Time: params.PositionAt(col), Pitch: pitch, Width: width, Velocity: 1}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestExpandSingleEvent(t *testing.T) {
	p := params.Defaults()
	p.Detune = 25
	evs := Expand(note("a", 4, 4, "A4"), p)
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	ev := evs[0]
	if !near(ev.Start, 0.5) || !near(ev.Duration, 0.5) {
		t.Fatalf("span = [%f, +%f], want [0.5, +0.5]", ev.Start, ev.Duration)
	}
	if !near(ev.Frequency, 440) || ev.Detune != 25 || ev.Sweep != 0 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestExpandSweep(t *testing.T) {
	p := params.Defaults()
	p.PitchSweep = -12
	p.PitchSweepTime = 0.3
	ev := Expand(note("a", 0, 1, "C4"), p)[0]
	if ev.Sweep != -1200 || ev.SweepTime != 0.3 {
		t.Fatalf("sweep = %f over %f, want -1200 over 0.3", ev.Sweep, ev.SweepTime)
	}
}

func TestExpandRetriggerCountIsExact(t *testing.T) {
	p := params.Defaults()
	p.RepeatSpeed = 10
	evs := Expand(note("a", 0, 4, "A4"), p)
	if len(evs) != 5 {
		t.Fatalf("got %d events over 0.5s at 10Hz, want 5", len(evs))
	}
	for k, ev := range evs {
		if ev.Index != k || !near(ev.Start, float64(k)*0.1) {
			t.Fatalf("event %d = %+v", k, ev)
		}
		if !near(ev.Duration, 0.09) {
			t.Fatalf("event %d duration = %f, want 0.09", k, ev.Duration)
		}
	}
}

func TestExpandArpeggio(t *testing.T) {
	p := params.Defaults()
	p.RepeatSpeed = 8
	p.ArpStep = 12
	p.Detune = 5
	evs := Expand(note("a", 0, 4, "A3"), p)
	if len(evs) != 4 {
		t.Fatalf("got %d events, want 4", len(evs))
	}
	for k, ev := range evs {
		want := 220 * math.Pow(2, float64(k))
		if !near(ev.Frequency, want) {
			t.Fatalf("event %d freq = %f, want %f", k, ev.Frequency, want)
		}
		if ev.Detune != 5 {
			t.Fatalf("event %d detune = %f, want reset to 5", k, ev.Detune)
		}
	}
}

func TestExpandLastEventTruncated(t *testing.T) {
	p := params.Defaults()
	p.RepeatSpeed = 3
	evs := Expand(note("a", 0, 4, "A4"), p)
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if last := evs[1]; !near(last.Duration, 0.5-1.0/3) {
		t.Fatalf("last duration = %f, want %f", last.Duration, 0.5-1.0/3)
	}
}

func TestExpandNoiseIgnoresPitch(t *testing.T) {
	p := params.Defaults()
	p.Oscillator = params.OscNoise
	p.RepeatSpeed = 10
	p.ArpStep = 7
	p.PitchSweep = 12
	p.Detune = 100
	for _, ev := range Expand(note("a", 0, 4, "not-a-pitch"), p) {
		if !ev.Noise || ev.Frequency != 0 || ev.Detune != 0 || ev.Sweep != 0 {
			t.Fatalf("noise event carries pitch data: %+v", ev)
		}
	}
}

func TestExpandDegenerate(t *testing.T) {
	p := params.Defaults()
	if evs := Expand(note("a", 0, 0, "A4"), p); evs != nil {
		t.Fatalf("zero width gave %d events", len(evs))
	}
	if evs := Expand(note("a", 0, 1, "H9"), p); evs != nil {
		t.Fatalf("bad pitch gave %d events", len(evs))
	}
}

func TestExpandIsPure(t *testing.T) {
	p := params.Defaults()
	p.RepeatSpeed = 17
	p.ArpStep = -3
	n := note("a", 3, 7, "E4")
	a, b := Expand(n, p), Expand(n, p)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d differs", i)
		}
	}
}
