package secomposer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	intaudio "github.com/sameashark/se-composer/internal/audio"
	"github.com/sameashark/se-composer/internal/params"
	intseq "github.com/sameashark/se-composer/internal/sequencer"
)

const (
	// DefaultLookahead is how far ahead of the stream clock a layout is
	// anchored.
	DefaultLookahead = 50 * time.Millisecond

	fadeTime   = 100 * time.Millisecond
	removeTime = 200 * time.Millisecond
)

// EventKind identifies playback lifecycle events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventPlaybackEnded
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventPlaybackEnded:
		return "ended"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// PlaybackEvent is delivered on the channel returned by Watch.
type PlaybackEvent struct {
	Kind   EventKind
	Voices int
}

// SampleSource fills interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// Output is a running audio backend.
type Output interface {
	Play()
	Close() error
}

// OutputFactory opens a backend that pulls from source.
type OutputFactory func(sampleRate int, source SampleSource) (Output, error)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// TimerFunc runs f after d on its own goroutine.
type TimerFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func ebitenOutput(sampleRate int, source SampleSource) (Output, error) {
	return intaudio.NewStream(sampleRate, source, DefaultLookahead)
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	output    OutputFactory
	after     TimerFunc
	logger    *slog.Logger
	lookahead time.Duration
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		output:    ebitenOutput,
		after:     afterFunc,
		lookahead: DefaultLookahead,
	}
}

// WithOutput replaces the audio backend.
func WithOutput(f OutputFactory) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.output = f
	}
}

// WithTimers replaces the scheduler used for voice teardown.
func WithTimers(f TimerFunc) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.after = f
	}
}

func WithLogger(l *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = l
	}
}

func WithLookahead(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.lookahead = d
	}
}

// Player auditions a note collection on a live backend. Each Play replaces
// the previous one; voices are torn down by timers once their release and
// delay tail have passed.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	mixer      *intseq.Mixer
	out        Output
	newOutput  OutputFactory
	after      TimerFunc
	log        *slog.Logger
	lookahead  float64

	// session invalidates timers from earlier plays.
	session int
	timers  []Timer
	active  int

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}
	return &Player{
		sampleRate: sampleRate,
		mixer:      intseq.NewMixer(sampleRate),
		newOutput:  cfg.output,
		after:      cfg.after,
		log:        log.With("component", "player"),
		lookahead:  cfg.lookahead.Seconds(),
	}, nil
}

// Play stops anything still sounding and schedules notes. An empty note
// collection does nothing.
func (p *Player) Play(notes []params.Note, prm params.Parameters) error {
	if len(notes) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopLocked() {
		p.sendEvent(PlaybackEvent{Kind: EventStopped})
	}
	if err := p.ensureOutput(); err != nil {
		return fmt.Errorf("start audio output: %w", err)
	}

	plan := intseq.Layout(notes, prm, p.mixer, p.lookahead, p.sampleRate)
	p.mixer.Add(plan.Voices...)

	gen := p.session
	now := p.mixer.Now()
	tail := prm.DelayFeedback*10 + 1
	for _, v := range plan.Voices {
		delay := seconds(plan.Origin + v.End + tail - now)
		p.timers = append(p.timers, p.after(delay, func() { p.fade(gen, v) }))
	}
	p.active = len(plan.Voices)
	p.log.Debug("play", "voices", p.active, "origin", plan.Origin, "lastEnd", plan.LastEnd)
	p.sendEvent(PlaybackEvent{Kind: EventStarted, Voices: p.active})
	return nil
}

func (p *Player) ensureOutput() error {
	if p.out != nil {
		return nil
	}
	out, err := p.newOutput(p.sampleRate, p.mixer)
	if err != nil {
		return err
	}
	out.Play()
	p.out = out
	return nil
}

func (p *Player) fade(gen int, v *intseq.Voice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.session {
		return
	}
	p.mixer.FadeOut(v, fadeTime.Seconds())
	p.timers = append(p.timers, p.after(removeTime, func() { p.remove(gen, v) }))
}

func (p *Player) remove(gen int, v *intseq.Voice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.session || !p.mixer.Remove(v) {
		return
	}
	p.active--
	if p.active > 0 {
		return
	}
	p.timers = nil
	p.log.Debug("playback ended")
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
}

// Stop cancels every pending teardown and silences all voices at once.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopLocked() {
		p.log.Debug("stop")
		p.sendEvent(PlaybackEvent{Kind: EventStopped})
	}
}

func (p *Player) stopLocked() bool {
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	p.session++
	p.mixer.Clear()
	wasPlaying := p.active > 0
	p.active = 0
	return wasPlaying
}

// IsPlaying reports whether any voice from the last Play is still alive.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active > 0
}

// Voices returns the number of voices in the mixer.
func (p *Player) Voices() int {
	return p.mixer.Len()
}

// PlaybackPosition returns the stream clock in seconds.
func (p *Player) PlaybackPosition() float64 {
	return p.mixer.Now()
}

// Close stops playback and shuts the backend down.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	if p.out == nil {
		return nil
	}
	err := p.out.Close()
	p.out = nil
	return err
}

// Watch returns a channel that receives playback events. Only the most
// recent Watch channel receives events, and events are dropped when it is
// full.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 16)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(max(s, 0) * float64(time.Second))
}
