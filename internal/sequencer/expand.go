package sequencer

import (
	"math"

	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/synth"
)

// TriggerEvent is one concrete attack/release pair derived from a note.
type TriggerEvent = synth.TriggerEvent

// Span returns a note's start and length in seconds.
func Span(n params.Note, p params.Parameters) (start, total float64) {
	beat := p.BeatDuration()
	return float64(n.Time.Column()) * beat, float64(n.Width) * beat
}

// Expand turns a note into trigger events. With repeatSpeed at zero the note
// is a single event over its whole width; otherwise it is retriggered every
// 1/repeatSpeed seconds, each hit transposed by a further arpAmount
// semitones. A note with an unparseable pitch yields nothing.
func Expand(n params.Note, p params.Parameters) []TriggerEvent {
	start, total := Span(n, p)
	if total <= 0 {
		return nil
	}
	noise := !p.Pitched()
	var base float64
	if !noise {
		f, err := n.Frequency()
		if err != nil {
			return nil
		}
		base = f
	}

	proto := TriggerEvent{
		Noise:    noise,
		Velocity: n.Velocity,
	}
	if !noise {
		proto.Detune = p.Detune
		if p.PitchSweep != 0 {
			proto.Sweep = p.PitchSweep * 100
			proto.SweepTime = p.PitchSweepTime
		}
	}

	if p.RepeatSpeed <= 0 {
		ev := proto
		ev.Start = start
		ev.Duration = total
		ev.Frequency = base
		return []TriggerEvent{ev}
	}

	interval := 1 / p.RepeatSpeed
	count := int(math.Ceil(total / interval))
	events := make([]TriggerEvent, 0, count)
	for k := 0; ; k++ {
		t := float64(k) * interval
		if t >= total {
			break
		}
		ev := proto
		ev.Index = k
		ev.Start = start + t
		ev.Duration = min(interval*0.9, total-t)
		if !noise {
			ev.Frequency = base * math.Pow(2, p.ArpStep*float64(k)/12)
		}
		events = append(events, ev)
	}
	return events
}
