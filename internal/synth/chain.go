package synth

import (
	"math"

	"github.com/sameashark/se-composer/internal/automation"
	"github.com/sameashark/se-composer/internal/effects"
	"github.com/sameashark/se-composer/internal/lfo"
	"github.com/sameashark/se-composer/internal/params"
)

const (
	filterQ         = 2.0
	delayWet        = 0.5
	limiterDB       = -1.0
	pitchLFOCents   = 10.0
	filterLFOHz     = 20.0
	compensationDBs = 15.0
)

// Modulation names the single destination of the chain's LFO.
type Modulation int

const (
	ModNone Modulation = iota
	ModPitch
	ModFilter
)

func (m Modulation) String() string {
	switch m {
	case ModPitch:
		return "pitch"
	case ModFilter:
		return "filter"
	}
	return "none"
}

// TriggerEvent is one concrete attack/release pair, in seconds relative to
// the chain origin.
type TriggerEvent struct {
	Start     float64
	Duration  float64
	Frequency float64 // Hz, 0 for noise
	Noise     bool
	Detune    float64 // cents
	Sweep     float64 // cents, 0 = none
	SweepTime float64
	Velocity  float64
	Index     int
}

// Compensation is the gain reduction in dB applied to every voice when
// voiceCount notes sound together.
func Compensation(voiceCount int) float64 {
	return math.Log10(float64(max(1, voiceCount))) * compensationDBs
}

// Chain is one voice: source, envelope, lowpass, delay and limiter. Its time
// base starts at zero on its first rendered frame.
type Chain struct {
	p          params.Parameters
	sampleRate float64

	src *source
	env *Envelope

	freq         *automation.Param
	detune       *automation.Param
	filterOffset *automation.Param
	gain         *automation.Param

	mod Modulation
	lfo *lfo.LFO

	filter *effects.Lowpass
	fx     *effects.Chain

	gainDB float64
	frame  int64
}

// Build assembles a chain for p. voiceCount is the number of notes that will
// sound together and sets the polyphony compensation.
func Build(p params.Parameters, voiceCount, sampleRate int) *Chain {
	sr := float64(sampleRate)
	gainDB := p.MasterVolume - Compensation(voiceCount)
	c := &Chain{
		p:            p,
		sampleRate:   sr,
		src:          newSource(p.Oscillator, sr),
		env:          NewEnvelope(p.Attack, p.Decay, p.Sustain, p.Release),
		freq:         automation.NewParam(440),
		detune:       automation.NewParam(p.Detune),
		filterOffset: automation.NewParam(0),
		gain:         automation.NewParam(effects.DBToGain(gainDB)),
		filter:       effects.NewLowpass(sampleRate, p.FilterCutoff, filterQ),
		fx: effects.NewChain(
			effects.NewDelay(sampleRate, p.EighthNote(), p.DelayFeedback, delayWet),
			effects.NewLimiter(sampleRate, limiterDB),
		),
		gainDB: gainDB,
	}
	if p.LFODepth > 0 {
		switch {
		case p.LFOTarget == params.LFOFilter:
			c.mod = ModFilter
			c.lfo = lfo.New(p.LFODepth*filterLFOHz, p.LFORate, waveFor(p.LFOShape))
		case p.Pitched():
			c.mod = ModPitch
			c.lfo = lfo.New(p.LFODepth*pitchLFOCents, p.LFORate, waveFor(p.LFOShape))
		}
	}
	return c
}

func waveFor(s params.LFOShape) lfo.Shape {
	switch s {
	case params.ShapeTriangle:
		return lfo.Triangle
	case params.ShapeSquare:
		return lfo.Square
	case params.ShapeSawtooth:
		return lfo.Saw
	}
	return lfo.Sine
}

// Trigger schedules ev. Pitch automation from an earlier event still in
// flight is cut at ev.Start.
func (c *Chain) Trigger(ev TriggerEvent) {
	at := ev.Start
	if !ev.Noise && c.p.Pitched() {
		c.freq.SetValueAt(ev.Frequency, at)
		c.detune.CancelAndHoldAt(at)
		c.detune.SetValueAt(ev.Detune, at)
		if ev.Sweep != 0 {
			c.detune.LinearRampTo(ev.Detune+ev.Sweep, at+ev.SweepTime)
		}
	}
	if amt := c.p.FilterEnvAmount; amt != 0 {
		c.filterOffset.CancelAndHoldAt(at)
		c.filterOffset.SetValueAt(0, at)
		c.filterOffset.LinearRampTo(amt, at+c.p.Attack)
		c.filterOffset.LinearRampTo(0, at+c.p.Attack+c.p.Decay)
	}
	c.env.TriggerAttack(at, ev.Velocity)
	c.env.TriggerRelease(at + ev.Duration)
}

// FadeOut ramps the output gain to silence over duration starting at at.
func (c *Chain) FadeOut(at, duration float64) {
	c.gain.CancelAndHoldAt(at)
	if c.gain.Len() == 0 {
		c.gain.SetValueAt(effects.DBToGain(c.gainDB), at)
	}
	c.gain.LinearRampTo(0, at+duration)
}

// Render adds len(acc) frames of output into acc and advances the chain.
func (c *Chain) Render(acc []float64) {
	filterEnv := c.p.FilterEnvAmount != 0
	for i := range acc {
		t := float64(c.frame) / c.sampleRate
		var mod float64
		if c.lfo != nil {
			mod = c.lfo.Sample(c.sampleRate)
		}

		var x float64
		if c.p.Pitched() {
			cents := c.detune.At(t)
			if c.mod == ModPitch {
				cents += mod
			}
			x = c.src.next(c.freq.At(t) * math.Pow(2, cents/1200))
		} else {
			x = c.src.next(0)
		}
		x *= c.env.At(t) * c.gain.At(t)

		cutoff := c.p.FilterCutoff
		if filterEnv {
			cutoff *= math.Pow(2, c.filterOffset.At(t)/1200)
		}
		if c.mod == ModFilter {
			cutoff += mod
		}
		c.filter.SetCutoff(cutoff)
		x = c.filter.Process(x)

		acc[i] += c.fx.Process(x)
		c.frame++
	}
}

// Position is the chain-relative time of the next frame, in seconds.
func (c *Chain) Position() float64 {
	return float64(c.frame) / c.sampleRate
}

// Frame is the index of the next frame to render.
func (c *Chain) Frame() int64 {
	return c.frame
}

func (c *Chain) Modulation() Modulation {
	return c.mod
}

// GainDB is the output gain after polyphony compensation.
func (c *Chain) GainDB() float64 {
	return c.gainDB
}
