package sequencer

import (
	"testing"

	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/synth"
)

const testRate = 22050

type fixedClock float64

func (c fixedClock) Now() float64 { return float64(c) }

func testNotes() []params.Note {
	return []params.Note{
		note("a", 0, 2, "C4"),
		note("b", 2, 3, "G4"),
		note("c", 1, 1, "E5"),
	}
}

func TestLayoutOriginAndEnds(t *testing.T) {
	p := params.Defaults()
	plan := Layout(testNotes(), p, fixedClock(1), 0.05, 44100)
	if !near(plan.Origin, 1.05) {
		t.Fatalf("origin = %f, want 1.05", plan.Origin)
	}
	if len(plan.Voices) != 3 {
		t.Fatalf("voices = %d, want 3", len(plan.Voices))
	}
	beat := p.BeatDuration()
	if want := 5*beat + p.Release; !near(plan.Voices[1].End, want) {
		t.Fatalf("end = %f, want %f", plan.Voices[1].End, want)
	}
	if want := plan.Origin + 5*beat + p.Release; !near(plan.LastEnd, want) {
		t.Fatalf("LastEnd = %f, want %f", plan.LastEnd, want)
	}
	if want := 5*beat + p.Release + p.DelayFeedback*5; !near(plan.Tail, want) {
		t.Fatalf("Tail = %f, want %f", plan.Tail, want)
	}
	for _, v := range plan.Voices {
		if got := v.Chain.GainDB(); !near(got, p.MasterVolume-synth.Compensation(3)) {
			t.Fatalf("voice gain = %f", got)
		}
	}
}

func TestMixerMatchesOfflineRender(t *testing.T) {
	p := params.Defaults()
	p.RepeatSpeed = 12
	p.ArpStep = 2
	p.LFODepth = 20
	p.FilterEnvAmount = 2400

	offline := Layout(testNotes(), p, nil, 0, testRate)
	frames := offline.Frames(0.5)
	want := offline.Render(frames)

	m := NewMixer(testRate)
	// Advance the clock before scheduling so the origin is not zero.
	m.Process(make([]float32, 2*300))
	live := Layout(testNotes(), p, m, 0.05, testRate)
	m.Add(live.Voices...)

	lead := int(live.Voices[0].Origin - 300)
	var got []float32
	blocks := []int{7, 256, 1024, 333}
	for i := 0; len(got) < lead+frames; i++ {
		block := blocks[i%len(blocks)]
		buf := make([]float32, 2*block)
		m.Process(buf)
		for j := 0; j < block; j++ {
			if buf[2*j] != buf[2*j+1] {
				t.Fatalf("channels differ at frame %d", len(got))
			}
			got = append(got, buf[2*j])
		}
	}
	for i := 0; i < lead; i++ {
		if got[i] != 0 {
			t.Fatalf("frame %d before origin = %v, want silence", i, got[i])
		}
	}
	for i := 0; i < frames; i++ {
		if got[lead+i] != want[i] {
			t.Fatalf("frame %d: live %v, offline %v", i, got[lead+i], want[i])
		}
	}
}

func TestMixerRemoveAndClear(t *testing.T) {
	m := NewMixer(testRate)
	plan := Layout(testNotes(), params.Defaults(), m, 0, testRate)
	m.Add(plan.Voices...)
	if !m.Remove(plan.Voices[1]) {
		t.Fatal("Remove returned false for a present voice")
	}
	if m.Remove(plan.Voices[1]) {
		t.Fatal("Remove returned true twice")
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("Len after Clear = %d", m.Len())
	}
	buf := make([]float32, 64)
	m.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v after Clear", i, s)
		}
	}
	if m.Frame() != 32 || !near(m.Now(), 32.0/testRate) {
		t.Fatalf("clock = %d frames, want 32", m.Frame())
	}
}

func TestMixerFadeOutSilences(t *testing.T) {
	p := params.Defaults()
	p.Sustain = 1
	p.DelayFeedback = 0
	m := NewMixer(testRate)
	plan := Layout([]params.Note{note("a", 0, 64, "A4")}, p, m, 0, testRate)
	m.Add(plan.Voices...)
	m.Process(make([]float32, 2*testRate/10))
	m.FadeOut(plan.Voices[0], 0.1)
	// Fade, then the single echo of the eighth-note delay.
	m.Process(make([]float32, 2*testRate))
	buf := make([]float32, 2*1024)
	m.Process(buf)
	for i, s := range buf {
		if s > 1e-6 || s < -1e-6 {
			t.Fatalf("sample %d = %v after fade", i, s)
		}
	}
}

func BenchmarkMixerProcess(b *testing.B) {
	p := params.Defaults()
	p.RepeatSpeed = 20
	m := NewMixer(44100)
	notes := make([]params.Note, 8)
	for i := range notes {
		notes[i] = note(string(rune('a'+i)), i, 8, "C4")
	}
	m.Add(Layout(notes, p, m, 0, 44100).Voices...)
	buf := make([]float32, 2*512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Process(buf)
	}
}
