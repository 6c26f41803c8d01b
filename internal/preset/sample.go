package preset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sameashark/se-composer/internal/params"
)

var ErrUnknownSample = errors.New("unknown sample kind")

// Samples lists the generator kinds in display order.
var Samples = []string{"laser", "coin", "jump", "powerup", "damage", "bomb", "random"}

// Sample is a generated starting point: a parameter set and the note to
// audition it with when the grid is empty.
type Sample struct {
	Params  params.Parameters
	Preview params.Note
}

func preview(pitch string, width int) params.Note {
	return params.Note{ID: "preview", Pitch: pitch, Width: width, Velocity: 0.8}
}

// Generate builds a randomized sample of the given kind from defaults.
func Generate(kind string, rng *rand.Rand) (Sample, error) {
	r := func(lo, hi float64) float64 { return rng.Float64()*(hi-lo) + lo }
	coin := func() bool { return rng.Float64() > 0.5 }
	pick := func(a, b params.OscillatorKind) params.OscillatorKind {
		if coin() {
			return a
		}
		return b
	}
	sign := func() float64 {
		if coin() {
			return 1
		}
		return -1
	}

	p := params.Defaults()
	var s Sample
	switch kind {
	case "laser":
		p.Oscillator = pick(params.OscSawtooth, params.OscSquare)
		p.PitchSweep = r(24, 48) * sign()
		p.PitchSweepTime = r(0.1, 0.4)
		p.FilterCutoff = r(1000, 8000)
		p.FilterEnvAmount = r(1000, 6000)
		p.Decay = r(0.1, 0.4)
		p.Sustain = r(0, 0.2)
		p.Release = r(0.1, 0.5)
		p.DelayFeedback = r(0.1, 0.4)
		p.LFORate = r(5, 15)
		if coin() {
			p.LFODepth = r(5, 20)
		}
		p.LFOTarget = params.LFOFilter
		s.Preview = preview("C5", 2)
	case "bomb":
		p.Oscillator = params.OscNoise
		p.Decay = r(0.5, 2)
		p.Sustain = 0
		p.Release = r(1, 3)
		p.FilterCutoff = r(300, 1000)
		p.FilterEnvAmount = r(500, 2000)
		p.Attack = 0.01
		p.LFORate = r(0.1, 2)
		p.LFODepth = r(10, 50)
		p.LFOTarget = params.LFOFilter
		s.Preview = preview("C2", 4)
	case "coin":
		p.Oscillator = pick(params.OscSine, params.OscTriangle)
		p.Attack = 0.005
		p.Decay = r(0.1, 0.3)
		p.Sustain = 0
		p.Release = r(0.1, 0.4)
		if coin() {
			p.ArpStep = 12
		}
		if rng.Float64() > 0.7 {
			p.RepeatSpeed = r(15, 25)
		}
		p.FilterCutoff = 8000
		p.Detune = r(0, 10)
		s.Preview = preview("C6", 1)
	case "powerup":
		p.Oscillator = params.OscSquare
		p.Attack = r(0.01, 0.1)
		p.Decay = r(0.2, 0.5)
		p.Sustain = 0.4
		p.Release = 0.5
		p.PitchSweep = r(12, 24)
		p.PitchSweepTime = 0.3
		p.RepeatSpeed = r(10, 30)
		p.ArpStep = r(1, 5)
		p.FilterCutoff = r(2000, 5000)
		p.DelayFeedback = 0.3
		p.LFORate = r(2, 8)
		p.LFODepth = r(5, 15)
		p.LFOTarget = params.LFOPitch
		s.Preview = preview("C4", 3)
	case "damage":
		p.Oscillator = pick(params.OscSawtooth, params.OscSquare)
		p.PitchSweep = r(-24, -12)
		p.PitchSweepTime = r(0.05, 0.2)
		p.Attack = 0.01
		p.Decay = 0.2
		p.Sustain = 0.1
		p.Release = 0.2
		p.RepeatSpeed = r(20, 50)
		p.ArpStep = r(-6, -1)
		p.FilterCutoff = r(1000, 3000)
		p.LFORate = r(10, 20)
		p.LFODepth = r(20, 50)
		p.LFOTarget = params.LFOPitch
		s.Preview = preview("C3", 1)
	case "jump":
		p.Oscillator = pick(params.OscSine, params.OscSquare)
		p.PitchSweep = r(12, 36)
		p.PitchSweepTime = r(0.1, 0.3)
		p.Attack = 0.01
		p.Decay = 0.2
		p.Sustain = 0.1
		p.Release = 0.2
		s.Preview = preview("C4", 1)
	case "random":
		p.Oscillator = params.OscillatorKinds[rng.IntN(len(params.OscillatorKinds))]
		p.Attack = r(0.001, 0.5)
		p.Decay = r(0.05, 1)
		p.Sustain = r(0, 0.8)
		p.Release = r(0.05, 2)
		p.PitchSweep = r(-48, 48)
		p.PitchSweepTime = r(0.01, 1)
		p.FilterCutoff = r(100, 8000)
		p.FilterEnvAmount = r(0, 5000)
		if rng.Float64() > 0.6 {
			p.RepeatSpeed = r(0, 40)
		}
		p.ArpStep = math.Floor(r(-12, 12))
		if coin() {
			p.DelayFeedback = r(0, 0.6)
		} else {
			p.DelayFeedback = 0
		}
		p.LFORate = r(0.1, 20)
		if coin() {
			p.LFODepth = r(0, 80)
		}
		if coin() {
			p.LFOTarget = params.LFOPitch
		} else {
			p.LFOTarget = params.LFOFilter
		}
		if coin() {
			p.Detune = r(0, 50)
		}
		s.Preview = preview("C4", 2)
	default:
		return Sample{}, fmt.Errorf("%w: %q", ErrUnknownSample, kind)
	}
	p.MasterVolume = -6
	s.Params = p.Clamped()
	return s, nil
}
