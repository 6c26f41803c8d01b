package automation

import "sort"

type eventKind int

const (
	setValue eventKind = iota
	linearRamp
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is a scheduled control value. Events follow Web Audio semantics: a
// set holds its value from its time on, a ramp interpolates linearly from the
// preceding event to its own time and value.
//
// Reads must be made with non-decreasing times; the cursor only moves forward
// until the next schedule call.
type Param struct {
	initial float64
	events  []event
	cursor  int
}

func NewParam(initial float64) *Param {
	return &Param{initial: initial}
}

// SetValueAt holds value from time t on.
func (p *Param) SetValueAt(value, t float64) {
	p.insert(event{kind: setValue, time: t, value: value})
}

// LinearRampTo reaches value at time t, starting from the preceding event.
func (p *Param) LinearRampTo(value, t float64) {
	p.insert(event{kind: linearRamp, time: t, value: value})
}

func (p *Param) insert(ev event) {
	// Equal times keep insertion order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > ev.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
	p.cursor = 0
}

// Len reports the number of scheduled events.
func (p *Param) Len() int {
	return len(p.events)
}

// CancelAndHoldAt drops every event after t and pins the value the
// timeline had at t, truncating a ramp in progress.
func (p *Param) CancelAndHoldAt(t float64) {
	if len(p.events) == 0 {
		return
	}
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	v := p.valueAt(i, t)
	kind := setValue
	if i < len(p.events) && p.events[i].kind == linearRamp {
		kind = linearRamp
	}
	p.events = p.events[:i]
	p.insert(event{kind: kind, time: t, value: v})
}

// At returns the value at time t.
func (p *Param) At(t float64) float64 {
	for p.cursor < len(p.events) && p.events[p.cursor].time <= t {
		p.cursor++
	}
	return p.valueAt(p.cursor, t)
}

// valueAt evaluates the timeline at t, where next is the index of the first
// event after t.
func (p *Param) valueAt(next int, t float64) float64 {
	prevTime, prevVal := 0.0, p.initial
	if next > 0 {
		prev := p.events[next-1]
		prevTime, prevVal = prev.time, prev.value
	}
	if next < len(p.events) {
		ev := p.events[next]
		if ev.kind == linearRamp {
			span := ev.time - prevTime
			if span <= 0 {
				return ev.value
			}
			return prevVal + (ev.value-prevVal)*(t-prevTime)/span
		}
	}
	return prevVal
}
