package sequencer

import (
	"math"

	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/synth"
)

// Clock reports the current position of a playback timeline in seconds.
type Clock interface {
	Now() float64
}

// Voice is one note's chain placed on a timeline.
type Voice struct {
	NoteID string
	Chain  *synth.Chain
	// Origin is the timeline frame of the chain's time zero.
	Origin int64
	// End is start+total+release, chain-relative.
	End float64
}

// Plan is the result of laying out a note collection. All chain times are
// relative to Origin.
type Plan struct {
	SampleRate int
	Origin     float64
	Voices     []*Voice
	// LastEnd is the latest voice end on the timeline, in seconds.
	LastEnd float64
	// Tail is the longest note including its delay tail, chain-relative.
	Tail float64
}

// Layout builds one chain per note and schedules every trigger event on it.
// The origin is clock.Now()+lookahead; a nil clock starts at zero.
func Layout(notes []params.Note, p params.Parameters, clock Clock, lookahead float64, sampleRate int) *Plan {
	origin := lookahead
	if clock != nil {
		origin += clock.Now()
	}
	originFrame := int64(math.Round(origin * float64(sampleRate)))
	plan := &Plan{
		SampleRate: sampleRate,
		Origin:     float64(originFrame) / float64(sampleRate),
		Voices:     make([]*Voice, 0, len(notes)),
	}
	for _, n := range notes {
		chain := synth.Build(p, len(notes), sampleRate)
		for _, ev := range Expand(n, p) {
			chain.Trigger(ev)
		}
		start, total := Span(n, p)
		v := &Voice{
			NoteID: n.ID,
			Chain:  chain,
			Origin: originFrame,
			End:    start + total + p.Release,
		}
		plan.Voices = append(plan.Voices, v)
		plan.LastEnd = max(plan.LastEnd, plan.Origin+v.End)
	}
	plan.Tail = MaxDuration(notes, p)
	return plan
}

// MaxDuration is the longest start+total+release+delayFeedback*5 over notes.
func MaxDuration(notes []params.Note, p params.Parameters) float64 {
	var d float64
	for _, n := range notes {
		start, total := Span(n, p)
		d = max(d, start+total+p.Release+p.DelayFeedback*5)
	}
	return d
}

// Frames returns the timeline length in frames needed to hold every voice
// plus pad seconds. Rounding noise below a microframe is ignored.
func (pl *Plan) Frames(pad float64) int {
	return int(math.Ceil((pl.Tail+pad)*float64(pl.SampleRate) - 1e-6))
}

// Render mixes every voice into a fresh mono buffer of the given length,
// voices summed in order.
func (pl *Plan) Render(frames int) []float32 {
	acc := make([]float64, frames)
	for _, v := range pl.Voices {
		v.Chain.Render(acc)
	}
	out := make([]float32, frames)
	for i, s := range acc {
		out[i] = float32(s)
	}
	return out
}
