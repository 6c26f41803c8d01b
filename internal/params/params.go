package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrInvalidValue     = errors.New("invalid parameter value")
)

// ParamError reports a rejected parameter assignment.
type ParamError struct {
	Key   string
	Value any
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q = %v: %v", e.Key, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

type OscillatorKind string

const (
	OscSine     OscillatorKind = "sine"
	OscSquare   OscillatorKind = "square"
	OscSawtooth OscillatorKind = "sawtooth"
	OscTriangle OscillatorKind = "triangle"
	OscNoise    OscillatorKind = "noise"
)

func (k OscillatorKind) Valid() bool {
	switch k {
	case OscSine, OscSquare, OscSawtooth, OscTriangle, OscNoise:
		return true
	}
	return false
}

// OscillatorKinds lists the source kinds in UI order.
var OscillatorKinds = []OscillatorKind{OscSine, OscSquare, OscSawtooth, OscTriangle, OscNoise}

type LFOTarget string

const (
	LFOPitch  LFOTarget = "pitch"
	LFOFilter LFOTarget = "filter"
)

func (t LFOTarget) Valid() bool {
	return t == LFOPitch || t == LFOFilter
}

type LFOShape string

const (
	ShapeSine     LFOShape = "sine"
	ShapeTriangle LFOShape = "triangle"
	ShapeSquare   LFOShape = "square"
	ShapeSawtooth LFOShape = "sawtooth"
)

func (s LFOShape) Valid() bool {
	switch s {
	case ShapeSine, ShapeTriangle, ShapeSquare, ShapeSawtooth:
		return true
	}
	return false
}

// Parameters is the flat timbre/effect record. It is a plain comparable value:
// copying it is a deep copy and == is structural equality.
type Parameters struct {
	BPM             float64        `json:"bpm"`
	Oscillator      OscillatorKind `json:"oscillatorType"`
	Attack          float64        `json:"attack"`
	Decay           float64        `json:"decay"`
	Sustain         float64        `json:"sustain"`
	Release         float64        `json:"release"`
	FilterCutoff    float64        `json:"filterCutoff"`
	FilterEnvAmount float64        `json:"filterEnvAmount"` // cents
	DelayFeedback   float64        `json:"delayFeedback"`
	MasterVolume    float64        `json:"masterVolume"` // dB
	RepeatSpeed     float64        `json:"repeatSpeed"`  // Hz, 0 = off
	ArpStep         float64        `json:"arpAmount"`    // semitones, kept integral
	PitchSweep      float64        `json:"pitchAmount"`  // semitones
	PitchSweepTime  float64        `json:"pitchTime"`
	LFORate         float64        `json:"lfoRate"`
	LFODepth        float64        `json:"lfoDepth"`
	LFOTarget       LFOTarget      `json:"lfoTarget"`
	LFOShape        LFOShape       `json:"lfoShape"`
	Detune          float64        `json:"detune"` // cents
}

// Defaults is the baseline record used for new sessions and for filling
// missing fields on import.
func Defaults() Parameters {
	return Parameters{
		BPM:             120,
		Oscillator:      OscTriangle,
		Attack:          0.01,
		Decay:           0.2,
		Sustain:         0.2,
		Release:         0.2,
		FilterCutoff:    2000,
		FilterEnvAmount: 0,
		DelayFeedback:   0.2,
		MasterVolume:    -6,
		RepeatSpeed:     0,
		ArpStep:         0,
		PitchSweep:      0,
		PitchSweepTime:  0.1,
		LFORate:         5,
		LFODepth:        0,
		LFOTarget:       LFOPitch,
		LFOShape:        ShapeSine,
		Detune:          0,
	}
}

type bound struct {
	lo, hi float64
	field  func(*Parameters) *float64
}

// MaxDelayFeedback keeps feedback strictly below 0.9.
const MaxDelayFeedback = 0.89

var numeric = map[string]bound{
	"bpm":             {20, 400, func(p *Parameters) *float64 { return &p.BPM }},
	"attack":          {0, 2, func(p *Parameters) *float64 { return &p.Attack }},
	"decay":           {0, 2, func(p *Parameters) *float64 { return &p.Decay }},
	"sustain":         {0, 1, func(p *Parameters) *float64 { return &p.Sustain }},
	"release":         {0, 3, func(p *Parameters) *float64 { return &p.Release }},
	"filterCutoff":    {20, 20000, func(p *Parameters) *float64 { return &p.FilterCutoff }},
	"filterEnvAmount": {-10000, 10000, func(p *Parameters) *float64 { return &p.FilterEnvAmount }},
	"delayFeedback":   {0, MaxDelayFeedback, func(p *Parameters) *float64 { return &p.DelayFeedback }},
	"masterVolume":    {-60, 0, func(p *Parameters) *float64 { return &p.MasterVolume }},
	"repeatSpeed":     {0, 100, func(p *Parameters) *float64 { return &p.RepeatSpeed }},
	"arpAmount":       {-24, 24, func(p *Parameters) *float64 { return &p.ArpStep }},
	"pitchAmount":     {-48, 48, func(p *Parameters) *float64 { return &p.PitchSweep }},
	"pitchTime":       {0.001, 5, func(p *Parameters) *float64 { return &p.PitchSweepTime }},
	"lfoRate":         {0.01, 50, func(p *Parameters) *float64 { return &p.LFORate }},
	"lfoDepth":        {0, 100, func(p *Parameters) *float64 { return &p.LFODepth }},
	"detune":          {0, 1200, func(p *Parameters) *float64 { return &p.Detune }},
}

// Keys returns every settable parameter key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(numeric)+3)
	for k := range numeric {
		keys = append(keys, k)
	}
	keys = append(keys, "oscillatorType", "lfoTarget", "lfoShape")
	sort.Strings(keys)
	return keys
}

// Clamped returns a copy with every numeric field pulled into bounds and every
// invalid enum replaced by its default.
func (p Parameters) Clamped() Parameters {
	def := Defaults()
	for _, b := range numeric {
		f := b.field(&p)
		if math.IsNaN(*f) {
			*f = *b.field(&def)
		}
		*f = clamp(*f, b.lo, b.hi)
	}
	p.ArpStep = math.Round(p.ArpStep)
	if !p.Oscillator.Valid() {
		p.Oscillator = def.Oscillator
	}
	if !p.LFOTarget.Valid() {
		p.LFOTarget = def.LFOTarget
	}
	if !p.LFOShape.Valid() {
		p.LFOShape = def.LFOShape
	}
	return p
}

// Set assigns one parameter by its JSON key. Numeric values are clamped into
// bounds; enum values must name a known member.
func (p *Parameters) Set(key string, value any) error {
	if b, ok := numeric[key]; ok {
		v, err := toFloat(value)
		if err != nil {
			return &ParamError{Key: key, Value: value, Err: err}
		}
		*b.field(p) = clamp(v, b.lo, b.hi)
		if key == "arpAmount" {
			p.ArpStep = math.Round(p.ArpStep)
		}
		return nil
	}
	s, isString := value.(string)
	switch key {
	case "oscillatorType":
		if k := OscillatorKind(s); isString && k.Valid() {
			p.Oscillator = k
			return nil
		}
	case "lfoTarget":
		if t := LFOTarget(s); isString && t.Valid() {
			p.LFOTarget = t
			return nil
		}
	case "lfoShape":
		if sh := LFOShape(s); isString && sh.Valid() {
			p.LFOShape = sh
			return nil
		}
	default:
		return &ParamError{Key: key, Value: value, Err: ErrUnknownParameter}
	}
	return &ParamError{Key: key, Value: value, Err: ErrInvalidValue}
}

// Merge applies a partial assignment atomically: either every key is accepted
// or p is left unchanged.
func (p *Parameters) Merge(partial map[string]any) error {
	next := *p
	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := next.Set(k, partial[k]); err != nil {
			return err
		}
	}
	*p = next
	return nil
}

// BeatDuration is one 16th note in seconds.
func (p Parameters) BeatDuration() float64 {
	return 60 / p.BPM / 4
}

// EighthNote is the feedback delay time in seconds.
func (p Parameters) EighthNote() float64 {
	return 60 / p.BPM / 2
}

// Pitched reports whether pitch-related parameters have any effect.
func (p Parameters) Pitched() bool {
	return p.Oscillator != OscNoise
}

func toFloat(value any) (float64, error) {
	var v float64
	switch x := value.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, ErrInvalidValue
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, ErrInvalidValue
		}
		v = f
	default:
		return 0, ErrInvalidValue
	}
	if math.IsNaN(v) {
		return 0, ErrInvalidValue
	}
	return v, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
