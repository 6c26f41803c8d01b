package lfo

import "math"

// Shape selects the LFO waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
)

// Every shape is zero or rising at phase zero, like an audio oscillator
// started at the same instant.
var shapes = [...]func(phase float64) float64{
	Sine: func(p float64) float64 { return math.Sin(2 * math.Pi * p) },
	Triangle: func(p float64) float64 {
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	},
	Square: func(p float64) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	},
	Saw: func(p float64) float64 {
		if p < 0.5 {
			return 2 * p
		}
		return 2*p - 2
	},
}

// LFO is a free-running low-frequency oscillator producing bipolar
// modulation in [-depth, depth].
type LFO struct {
	depth float64 // units of the target: cents or Hz
	rate  float64
	shape Shape
	phase float64 // [0, 1)
}

// New returns an LFO at phase zero. Unknown shapes fall back to sine.
func New(depth, rate float64, shape Shape) *LFO {
	if shape < Sine || shape > Saw {
		shape = Sine
	}
	return &LFO{depth: depth, rate: rate, shape: shape}
}

// Sample returns the value at the current phase, then advances one sample.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	v := shapes[l.shape](l.phase) * l.depth
	l.phase += l.rate / sampleRate
	l.phase -= math.Floor(l.phase)
	return v
}

// Active reports whether the LFO moves at all.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rate != 0
}

func (l *LFO) Depth() float64 { return l.depth }

func (l *LFO) Shape() Shape { return l.shape }

// Reset returns to phase zero.
func (l *LFO) Reset() {
	l.phase = 0
}
