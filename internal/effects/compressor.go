package effects

import "math"

// Compressor implements basic dynamic range compression with an optional
// hard output ceiling.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	makeup    float64
	ceiling   float64 // 0 = none
	env       float64
}

// NewCompressor creates a compressor effect.
// thresholdDB: threshold in dB (e.g., -20)
// ratio: compression ratio (e.g., 4 for 4:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float64) *Compressor {
	sr := float64(sampleRate)
	return &Compressor{
		threshold: DBToGain(thresholdDB),
		ratio:     ratio,
		attack:    1.0 - math.Exp(-1.0/(attackMs*sr/1000.0)),
		release:   1.0 - math.Exp(-1.0/(releaseMs*sr/1000.0)),
		makeup:    DBToGain(makeupDB),
	}
}

// NewLimiter returns a fast 20:1 compressor whose output never exceeds
// thresholdDB.
func NewLimiter(sampleRate int, thresholdDB float64) *Compressor {
	c := NewCompressor(sampleRate, thresholdDB, 20, 3, 10, 0)
	c.ceiling = c.threshold
	return c
}

func (c *Compressor) Process(x float64) float64 {
	a := math.Abs(x)
	if a > c.env {
		c.env += c.attack * (a - c.env)
	} else {
		c.env += c.release * (a - c.env)
	}
	y := x * c.computeGain(c.env) * c.makeup
	if c.ceiling > 0 {
		y = clamp(y, -c.ceiling, c.ceiling)
	}
	return y
}

func (c *Compressor) computeGain(env float64) float64 {
	if env <= c.threshold || c.threshold <= 0 {
		return 1.0
	}
	over := env / c.threshold
	return math.Pow(over, 1.0/c.ratio-1)
}

func (c *Compressor) Reset() {
	c.env = 0
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
