package synth

import (
	"math"
	"math/rand/v2"

	"github.com/sameashark/se-composer/internal/params"
)

const twoPi = math.Pi * 2

// noiseSeed fixes the noise sequence so repeated renders match.
const noiseSeed = 0x5e_c0_4b05e

// source is a single free-running oscillator or a brown noise generator.
type source struct {
	kind       params.OscillatorKind
	sampleRate float64
	phase      float64
	rng        *rand.Rand
	brown      float64
}

func newSource(kind params.OscillatorKind, sampleRate float64) *source {
	s := &source{kind: kind, sampleRate: sampleRate}
	if kind == params.OscNoise {
		s.rng = rand.New(rand.NewPCG(noiseSeed, noiseSeed>>1))
	}
	return s
}

// next returns one sample. freq is ignored for noise.
func (s *source) next(freq float64) float64 {
	if s.kind == params.OscNoise {
		white := s.rng.Float64()*2 - 1
		s.brown = (s.brown + 0.02*white) / 1.02
		return s.brown * 3.5
	}
	dt := freq / s.sampleRate
	p := s.phase
	s.phase += dt
	for s.phase >= 1 {
		s.phase--
	}
	for s.phase < 0 {
		s.phase++
	}
	switch s.kind {
	case params.OscSine:
		return math.Sin(twoPi * p)
	case params.OscSquare:
		out := -1.0
		if p < 0.5 {
			out = 1
		}
		out += polyBLEP(p, dt)
		out -= polyBLEP(math.Mod(p+0.5, 1), dt)
		return out
	case params.OscSawtooth:
		return 2*p - 1 - polyBLEP(p, dt)
	case params.OscTriangle:
		return 1 - 2*math.Abs(2*p-1)
	}
	return 0
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
