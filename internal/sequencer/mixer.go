package sequencer

import (
	"slices"
	"sync"
)

// Mixer sums live voices into the backend stream. It owns the frame clock
// that playback layouts are anchored to.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	frame      int64
	voices     []*Voice
	acc        []float64
}

func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

func (m *Mixer) SampleRate() int {
	return m.sampleRate
}

// Now is the timeline position of the next frame to be rendered, in seconds.
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.frame) / float64(m.sampleRate)
}

// Frame is the index of the next frame to be rendered.
func (m *Mixer) Frame() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Add appends voices; they are mixed in the order added.
func (m *Mixer) Add(voices ...*Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = append(m.voices, voices...)
}

// Remove drops v and reports whether it was present.
func (m *Mixer) Remove(v *Voice) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.voices, v)
	if i < 0 {
		return false
	}
	m.voices = slices.Delete(m.voices, i, i+1)
	return true
}

// Clear drops every voice.
func (m *Mixer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.voices)
	m.voices = m.voices[:0]
}

func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// FadeOut ramps v's output gain to silence over duration seconds starting at
// the current frame.
func (m *Mixer) FadeOut(v *Voice, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at := float64(max(m.frame-v.Origin, 0)) / float64(m.sampleRate)
	v.Chain.FadeOut(at, duration)
}

// Process fills dst with interleaved stereo frames.
func (m *Mixer) Process(dst []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := len(dst) / 2
	if cap(m.acc) < frames {
		m.acc = make([]float64, frames)
	}
	acc := m.acc[:frames]
	clear(acc)
	for _, v := range m.voices {
		// A voice whose origin has already passed starts at the block head.
		offset := max(v.Origin+v.Chain.Frame()-m.frame, 0)
		if offset >= int64(frames) {
			continue
		}
		v.Chain.Render(acc[offset:])
	}
	for i, s := range acc {
		dst[i*2] = float32(s)
		dst[i*2+1] = float32(s)
	}
	m.frame += int64(frames)
}
