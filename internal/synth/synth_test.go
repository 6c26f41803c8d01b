package synth

import (
	"math"
	"testing"

	"github.com/sameashark/se-composer/internal/effects"
	"github.com/sameashark/se-composer/internal/params"
)

const testRate = 44100

func TestCompensation(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want float64
	}{
		{0, 0},
		{1, 0},
		{10, 15},
		{100, 30},
	} {
		if got := Compensation(tc.n); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Compensation(%d) = %f, want %f", tc.n, got, tc.want)
		}
	}
}

func TestBuildGainAndModulation(t *testing.T) {
	p := params.Defaults()
	c := Build(p, 10, testRate)
	if got := c.GainDB(); math.Abs(got-(-21)) > 1e-12 {
		t.Fatalf("GainDB = %f, want -21", got)
	}
	if c.Modulation() != ModNone {
		t.Fatalf("Modulation = %v, want none at zero depth", c.Modulation())
	}

	p.LFODepth = 10
	if m := Build(p, 1, testRate).Modulation(); m != ModPitch {
		t.Fatalf("Modulation = %v, want pitch", m)
	}
	p.LFOTarget = params.LFOFilter
	if m := Build(p, 1, testRate).Modulation(); m != ModFilter {
		t.Fatalf("Modulation = %v, want filter", m)
	}
	p.LFOTarget = params.LFOPitch
	p.Oscillator = params.OscNoise
	if m := Build(p, 1, testRate).Modulation(); m != ModNone {
		t.Fatalf("noise chain with pitch LFO = %v, want none", m)
	}
}

func render(c *Chain, frames int) []float64 {
	buf := make([]float64, frames)
	c.Render(buf)
	return buf
}

func peak(buf []float64) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(v))
	}
	return p
}

func TestChainIsSilentUntilTriggered(t *testing.T) {
	c := Build(params.Defaults(), 1, testRate)
	if p := peak(render(c, 4410)); p != 0 {
		t.Fatalf("untriggered chain peak = %f, want 0", p)
	}
}

func TestChainRendersTriggeredNote(t *testing.T) {
	for _, kind := range params.OscillatorKinds {
		p := params.Defaults()
		p.Oscillator = kind
		p.FilterEnvAmount = 1200
		c := Build(p, 1, testRate)
		c.Trigger(TriggerEvent{Duration: 0.2, Frequency: 440, Noise: kind == params.OscNoise, Velocity: 1})
		buf := render(c, testRate/2)
		pk := peak(buf)
		if pk == 0 {
			t.Fatalf("%s: chain produced silence", kind)
		}
		if pk > effects.DBToGain(limiterDB)+1e-9 {
			t.Fatalf("%s: peak %f above limiter ceiling", kind, pk)
		}
		if c.Position() != 0.5 {
			t.Fatalf("%s: Position = %f, want 0.5", kind, c.Position())
		}
	}
}

func TestChainRetriggerReappliesRamps(t *testing.T) {
	p := params.Defaults()
	p.Oscillator = params.OscSquare
	p.Attack, p.Decay = 0.01, 0.02
	p.FilterEnvAmount = 1200
	p.Detune = 50
	c := Build(p, 1, testRate)
	starts := []float64{0, 0.05}
	for i, start := range starts {
		c.Trigger(TriggerEvent{
			Start: start, Duration: 0.04, Frequency: 440, Detune: p.Detune,
			Sweep: 1200, SweepTime: 0.2, Velocity: 1, Index: i,
		})
	}

	for _, start := range starts {
		peakAt, endAt := start+p.Attack, start+p.Attack+p.Decay
		if got := c.filterOffset.At(start); got != 0 {
			t.Fatalf("filter offset at %.2f = %f, want 0", start, got)
		}
		if got := c.filterOffset.At(peakAt); got != p.FilterEnvAmount {
			t.Fatalf("filter offset at %.2f = %f, want %f", peakAt, got, p.FilterEnvAmount)
		}
		mid := (peakAt + endAt) / 2
		if got := c.filterOffset.At(mid); math.Abs(got-p.FilterEnvAmount/2) > 1e-6 {
			t.Fatalf("filter offset at %.3f = %f, want %f", mid, got, p.FilterEnvAmount/2)
		}
		if got := c.filterOffset.At(endAt); got != 0 {
			t.Fatalf("filter offset at %.2f = %f, want 0", endAt, got)
		}
	}

	// The first sweep is a quarter done when the second event resets it.
	for _, tc := range []struct{ at, want float64 }{
		{0.025, 50 + 1200*0.125},
		{0.05, 50},
		{0.15, 50 + 1200*0.5},
		{0.25, 1250},
	} {
		if got := c.detune.At(tc.at); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("detune at %.3f = %f, want %f", tc.at, got, tc.want)
		}
	}
}

func TestChainIsDeterministic(t *testing.T) {
	p := params.Defaults()
	p.Oscillator = params.OscNoise
	p.LFODepth = 30
	p.LFOTarget = params.LFOFilter
	run := func() []float64 {
		c := Build(p, 2, testRate)
		c.Trigger(TriggerEvent{Start: 0.01, Duration: 0.1, Noise: true, Velocity: 0.7})
		return render(c, 8000)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs: %v != %v", i, a[i], b[i])
		}
	}
}

func TestChainBlockSplitMatchesSingleRender(t *testing.T) {
	p := params.Defaults()
	p.Oscillator = params.OscSawtooth
	p.RepeatSpeed = 10
	p.LFODepth = 5
	ev := TriggerEvent{Duration: 0.05, Frequency: 330, Sweep: 1200, SweepTime: 0.1, Velocity: 1}

	whole := Build(p, 1, testRate)
	whole.Trigger(ev)
	want := render(whole, 6000)

	split := Build(p, 1, testRate)
	split.Trigger(ev)
	got := make([]float64, 0, 6000)
	for _, n := range []int{1, 511, 1024, 64, 4400} {
		got = append(got, render(split, n)...)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d: split %v, whole %v", i, got[i], want[i])
		}
	}
}

func TestFadeOutSilencesChain(t *testing.T) {
	p := params.Defaults()
	p.Sustain = 1
	p.DelayFeedback = 0
	c := Build(p, 1, testRate)
	c.Trigger(TriggerEvent{Duration: 2, Frequency: 220, Velocity: 1})
	c.FadeOut(0.2, 0.1)
	buf := render(c, testRate)
	if peak(buf[:testRate/10]) == 0 {
		t.Fatal("chain silent before fade")
	}
	// Allow the delay line's last echo to drain.
	if pk := peak(buf[testRate*7/10:]); pk > 1e-6 {
		t.Fatalf("peak after fade = %g, want silence", pk)
	}
}

func TestVelocityScalesOutput(t *testing.T) {
	p := params.Defaults()
	p.DelayFeedback = 0
	p.MasterVolume = -30
	loud := Build(p, 1, testRate)
	loud.Trigger(TriggerEvent{Duration: 0.2, Frequency: 440, Velocity: 1})
	quiet := Build(p, 1, testRate)
	quiet.Trigger(TriggerEvent{Duration: 0.2, Frequency: 440, Velocity: 0.25})
	a, b := peak(render(loud, 4410)), peak(render(quiet, 4410))
	if b >= a {
		t.Fatalf("velocity 0.25 peak %f not below velocity 1 peak %f", b, a)
	}
}
