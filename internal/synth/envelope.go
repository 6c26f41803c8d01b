package synth

import "sort"

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

type envEvent struct {
	time     float64
	attack   bool
	velocity float64
}

// Envelope is a linear ADSR driven by scheduled attack and release events.
// A new attack ramps up from the current level rather than from zero.
type Envelope struct {
	attack, decay, sustain, release float64

	events []envEvent
	next   int

	stage    envStage
	start    float64
	from     float64
	velocity float64
}

func NewEnvelope(attack, decay, sustain, release float64) *Envelope {
	return &Envelope{attack: attack, decay: decay, sustain: sustain, release: release}
}

// TriggerAttack schedules an attack at t.
func (e *Envelope) TriggerAttack(t, velocity float64) {
	e.schedule(envEvent{time: t, attack: true, velocity: velocity})
}

// TriggerRelease schedules a release at t.
func (e *Envelope) TriggerRelease(t float64) {
	e.schedule(envEvent{time: t})
}

func (e *Envelope) schedule(ev envEvent) {
	i := sort.Search(len(e.events), func(i int) bool { return e.events[i].time > ev.time })
	e.events = append(e.events, envEvent{})
	copy(e.events[i+1:], e.events[i:])
	e.events[i] = ev
	if i < e.next {
		// Already in the past.
		e.next++
	}
}

// At returns the envelope output at t, velocity applied. Times must not
// decrease between calls.
func (e *Envelope) At(t float64) float64 {
	for e.next < len(e.events) && e.events[e.next].time <= t {
		ev := e.events[e.next]
		level := e.level(ev.time)
		e.start = ev.time
		e.from = level
		if ev.attack {
			e.stage = envAttack
			e.velocity = ev.velocity
		} else if e.stage != envIdle {
			e.stage = envRelease
		}
		e.next++
	}
	return e.level(t) * e.velocity
}

// level is the unscaled envelope level at t, advancing through stages whose
// span has elapsed.
func (e *Envelope) level(t float64) float64 {
	for {
		el := t - e.start
		switch e.stage {
		case envAttack:
			if e.attack <= 0 || el >= e.attack {
				e.stage, e.start, e.from = envDecay, e.start+e.attack, 1
				continue
			}
			return e.from + (1-e.from)*el/e.attack
		case envDecay:
			if e.decay <= 0 || el >= e.decay {
				e.stage, e.start, e.from = envSustain, e.start+e.decay, e.sustain
				continue
			}
			return 1 - (1-e.sustain)*el/e.decay
		case envSustain:
			return e.sustain
		case envRelease:
			if e.release <= 0 || el >= e.release {
				e.stage, e.from = envIdle, 0
				continue
			}
			return e.from * (1 - el/e.release)
		default:
			return 0
		}
	}
}

// Idle reports whether the envelope has finished all scheduled events.
func (e *Envelope) Idle() bool {
	return e.stage == envIdle && e.next >= len(e.events)
}
