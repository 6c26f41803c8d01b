package secomposer

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/sameashark/se-composer/internal/history"
	"github.com/sameashark/se-composer/internal/params"
	"github.com/sameashark/se-composer/internal/preset"
)

// DefaultSampleRate is used for playback and export unless overridden.
const DefaultSampleRate = 44100

// PresetStore persists the saved preset list.
type PresetStore interface {
	Load() ([]preset.Preset, error)
	Save([]preset.Preset) error
}

type ComposerOption func(*composerConfig)

type composerConfig struct {
	sampleRate int
	store      PresetStore
	player     *Player
	rng        *rand.Rand
	logger     *slog.Logger
	historyCap int
}

func WithSampleRate(rate int) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.sampleRate = rate
	}
}

// WithPresetStore persists presets; without it they live in memory only.
func WithPresetStore(s PresetStore) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.store = s
	}
}

// WithPlayer supplies the live player. By default one is created on the
// ebiten audio backend, opened on first Play.
func WithPlayer(p *Player) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.player = p
	}
}

// WithRand sets the generator used by ApplySample.
func WithRand(r *rand.Rand) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.rng = r
	}
}

func WithComposerLogger(l *slog.Logger) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.logger = l
	}
}

func WithHistoryCapacity(n int) ComposerOption {
	return func(cfg *composerConfig) {
		cfg.historyCap = n
	}
}

// Composer is the command surface over the editing state. It is not safe
// for concurrent use; callers serialize commands.
type Composer struct {
	sampleRate int
	model      *params.Model
	history    *history.Manager
	player     *Player
	store      PresetStore
	presets    []preset.Preset
	rng        *rand.Rand
	log        *slog.Logger
}

func NewComposer(opts ...ComposerOption) (*Composer, error) {
	cfg := composerConfig{
		sampleRate: DefaultSampleRate,
		historyCap: history.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.sampleRate)
	}
	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.player == nil {
		p, err := NewPlayer(cfg.sampleRate, WithLogger(log))
		if err != nil {
			return nil, err
		}
		cfg.player = p
	}
	c := &Composer{
		sampleRate: cfg.sampleRate,
		model:      params.NewModel(),
		history:    history.New(history.WithCapacity(cfg.historyCap)),
		player:     cfg.player,
		store:      cfg.store,
		rng:        cfg.rng,
		log:        log.With("component", "composer"),
	}
	if c.store != nil {
		list, err := c.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load presets: %w", err)
		}
		c.presets = list
	}
	return c, nil
}

func (c *Composer) SampleRate() int { return c.sampleRate }

func (c *Composer) Params() params.Parameters { return c.model.Params() }

func (c *Composer) Notes() []params.Note { return c.model.Notes() }

func (c *Composer) SetParameter(key string, value any) error {
	if err := c.model.Set(key, value); err != nil {
		return err
	}
	c.log.Debug("set parameter", "key", key, "value", value)
	return nil
}

// SetAllParameters applies a partial assignment; nothing changes on error.
func (c *Composer) SetAllParameters(partial map[string]any) error {
	return c.model.SetAll(partial)
}

func (c *Composer) AddNote(n params.Note) error {
	return c.model.AddNote(n)
}

func (c *Composer) UpdateNote(id string, patch params.NotePatch) error {
	return c.model.UpdateNote(id, patch)
}

func (c *Composer) RemoveNote(id string) error {
	return c.model.RemoveNote(id)
}

func (c *Composer) ClearNotes() {
	c.model.ClearNotes()
}

func (c *Composer) snapshot() history.Snapshot {
	return history.Snapshot{Params: c.model.Params(), Notes: c.model.Notes()}
}

// restore installs a snapshot taken by snapshot. Snapshots only ever hold
// states the model already accepted, so they go back in unchecked.
func (c *Composer) restore(s history.Snapshot) {
	c.model.Restore(s.Params, s.Notes)
}

func modelFrom(p params.Parameters, notes []params.Note) (*params.Model, error) {
	m := params.NewModel()
	m.ReplaceParams(p)
	if err := m.ReplaceNotes(notes); err != nil {
		return nil, err
	}
	return m, nil
}

// PushHistory records the current state as an undo step.
func (c *Composer) PushHistory() {
	c.history.Push(c.snapshot())
}

// Undo restores the previous state. It reports false when there is none.
func (c *Composer) Undo() bool {
	prev, ok := c.history.Undo(c.snapshot())
	if !ok {
		return false
	}
	c.restore(prev)
	return true
}

// Redo reapplies a state undone by Undo.
func (c *Composer) Redo() bool {
	next, ok := c.history.Redo(c.snapshot())
	if !ok {
		return false
	}
	c.restore(next)
	return true
}

func (c *Composer) CanUndo() bool { return c.history.CanUndo() }
func (c *Composer) CanRedo() bool { return c.history.CanRedo() }

// Play auditions the current notes, replacing any playback in progress.
func (c *Composer) Play() error {
	return c.player.Play(c.model.Notes(), c.model.Params())
}

func (c *Composer) Stop() {
	c.player.Stop()
}

func (c *Composer) IsPlaying() bool {
	return c.player.IsPlaying()
}

// Player exposes the live player, for Watch.
func (c *Composer) Player() *Player {
	return c.player
}

// Render produces the offline mono buffer for the current state.
func (c *Composer) Render() ([]float32, error) {
	return RenderOffline(c.model.Notes(), c.model.Params(), c.sampleRate)
}

// ExportWAV renders the current state to a mono PCM16 WAV file. With no
// notes it returns nil and no error.
func (c *Composer) ExportWAV() ([]byte, error) {
	samples, err := c.Render()
	if err != nil || samples == nil {
		return nil, err
	}
	c.log.Info("export wav", "frames", len(samples), "sampleRate", c.sampleRate)
	return EncodeWAV(samples, c.sampleRate, 1), nil
}

// Presets returns the saved presets, most recent first.
func (c *Composer) Presets() []preset.Preset {
	return slices.Clone(c.presets)
}

func (c *Composer) setPresets(list []preset.Preset) error {
	if c.store != nil {
		if err := c.store.Save(list); err != nil {
			return fmt.Errorf("save presets: %w", err)
		}
	}
	c.presets = list
	return nil
}

// SavePreset stores the current state under name, replacing a preset of the
// same name. It reports whether one was replaced.
func (c *Composer) SavePreset(name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, ErrEmptyName
	}
	p := preset.Preset{
		Version: preset.Version,
		Name:    name,
		Params:  c.model.Params(),
		Notes:   c.model.Notes(),
	}
	list, replaced := preset.Upsert(c.presets, p)
	if err := c.setPresets(list); err != nil {
		return false, err
	}
	c.log.Info("save preset", "name", name, "replaced", replaced)
	return replaced, nil
}

// LoadPreset replaces the current state with a saved preset.
func (c *Composer) LoadPreset(name string) error {
	p, ok := preset.Find(c.presets, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	next, err := modelFrom(p.Params, p.Notes)
	if err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	c.PushHistory()
	c.model = next
	c.log.Info("load preset", "name", name)
	return nil
}

func (c *Composer) DeletePreset(name string) error {
	list, ok := preset.Remove(c.presets, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return c.setPresets(list)
}

// ApplySample replaces the parameters with a generated sample of kind. When
// the grid is empty the sample's preview note is added.
func (c *Composer) ApplySample(kind string) error {
	s, err := preset.Generate(kind, c.rng)
	if err != nil {
		return err
	}
	next := params.NewModel()
	next.Restore(c.model.Params(), c.model.Notes())
	next.ReplaceParams(s.Params)
	if next.NoteCount() == 0 {
		if err := next.AddNote(s.Preview); err != nil {
			return err
		}
	}
	c.PushHistory()
	c.model = next
	return nil
}

// Import loads an exported document. An object replaces the preset list
// and, when it carries current state, the live state too; a bare array
// replaces the preset list only. Malformed input changes nothing.
func (c *Composer) Import(data []byte) error {
	doc, err := preset.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	var next *params.Model
	if doc.Current != nil {
		next, err = modelFrom(doc.Current.Params, doc.Current.Notes)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}
	if err := c.setPresets(doc.History); err != nil {
		return err
	}
	c.PushHistory()
	if next != nil {
		c.model = next
	}
	c.log.Info("import", "presets", len(doc.History), "current", next != nil)
	return nil
}

// Export writes the current state and the preset list as JSON.
func (c *Composer) Export() ([]byte, error) {
	return preset.Encode(preset.Document{
		Current: &preset.Current{Params: c.model.Params(), Notes: c.model.Notes()},
		History: c.presets,
	})
}

// Close stops playback and releases the audio backend.
func (c *Composer) Close() error {
	return c.player.Close()
}
