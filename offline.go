package secomposer

import (
	"fmt"

	"github.com/sameashark/se-composer/internal/params"
	intseq "github.com/sameashark/se-composer/internal/sequencer"
)

const (
	// tailPad is rendered past the longest note so the delay tail can ring.
	tailPad = 0.5
	// maxRenderSeconds bounds an offline render.
	maxRenderSeconds = 600
)

// RenderOffline renders notes into a mono buffer without a clock. Identical
// inputs yield identical samples, matching what Player sends to the backend
// from each voice's origin on. An empty collection returns nil.
func RenderOffline(notes []params.Note, p params.Parameters, sampleRate int) ([]float32, error) {
	if len(notes) == 0 {
		return nil, nil
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrExportFailed, sampleRate)
	}
	if length := intseq.MaxDuration(notes, p) + tailPad; length > maxRenderSeconds {
		return nil, fmt.Errorf("%w: render of %.1fs exceeds %ds", ErrExportFailed, length, maxRenderSeconds)
	}
	plan := intseq.Layout(notes, p, nil, 0, sampleRate)
	return plan.Render(plan.Frames(tailPad)), nil
}
