package effects

import "math"

// Lowpass is a topology-preserving state-variable lowpass filter. The cutoff
// may change every sample; coefficients are recomputed only on change.
type Lowpass struct {
	sampleRate float64
	k          float64 // 1/Q
	cutoff     float64
	a1, a2, a3 float64
	ic1, ic2   float64
}

func NewLowpass(sampleRate int, cutoffHz, q float64) *Lowpass {
	if q < 1e-6 {
		q = 1e-6
	}
	f := &Lowpass{sampleRate: float64(sampleRate), k: 1 / q, cutoff: -1}
	f.SetCutoff(cutoffHz)
	return f
}

// SetCutoff moves the cutoff, clamped to [10 Hz, 0.49*sampleRate].
func (f *Lowpass) SetCutoff(hz float64) {
	hz = clamp(hz, 10, f.sampleRate*0.49)
	if hz == f.cutoff {
		return
	}
	f.cutoff = hz
	g := math.Tan(math.Pi * hz / f.sampleRate)
	f.a1 = 1 / (1 + g*(g+f.k))
	f.a2 = g * f.a1
	f.a3 = g * f.a2
}

func (f *Lowpass) Process(x float64) float64 {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3
	f.ic1 = 2*v1 - f.ic1
	f.ic2 = 2*v2 - f.ic2
	return v2
}

func (f *Lowpass) Reset() {
	f.ic1, f.ic2 = 0, 0
}
