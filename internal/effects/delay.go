package effects

// Delay is a mono feedback delay line.
type Delay struct {
	buf      []float64
	pos      int
	feedback float64
	wet      float64
}

// NewDelay creates a delay effect.
// delaySec: delay time in seconds
// feedback: feedback amount 0..0.95
// wet: wet/dry mix 0..1
func NewDelay(sampleRate int, delaySec, feedback, wet float64) *Delay {
	samples := int(delaySec*float64(sampleRate) + 0.5)
	if samples < 1 {
		samples = 1
	}
	return &Delay{
		buf:      make([]float64, samples),
		feedback: clamp(feedback, 0, 0.95),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(x float64) float64 {
	del := d.buf[d.pos]
	d.buf[d.pos] = x + del*d.feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return x*(1-d.wet) + del*d.wet
}

func (d *Delay) Reset() {
	clear(d.buf)
	d.pos = 0
}
