package params

import (
	"fmt"
	"slices"
)

// Model owns the live parameter record and note collection. It has a single
// writer; callers get copies, never aliases into the collection.
type Model struct {
	params Parameters
	notes  []Note
}

func NewModel() *Model {
	return &Model{params: Defaults()}
}

func (m *Model) Params() Parameters {
	return m.params
}

func (m *Model) Notes() []Note {
	return slices.Clone(m.notes)
}

func (m *Model) NoteCount() int {
	return len(m.notes)
}

func (m *Model) Set(key string, value any) error {
	return m.params.Set(key, value)
}

func (m *Model) SetAll(partial map[string]any) error {
	return m.params.Merge(partial)
}

// ReplaceParams installs a whole record, clamped.
func (m *Model) ReplaceParams(p Parameters) {
	m.params = p.Clamped()
}

// AddNote appends a note. A note at the same position and pitch as an
// existing one is ignored.
func (m *Model) AddNote(n Note) error {
	n, err := n.Normalized()
	if err != nil {
		return err
	}
	for _, existing := range m.notes {
		if existing.ID == n.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateNote, n.ID)
		}
		if existing.Time == n.Time && existing.Pitch == n.Pitch {
			return nil
		}
	}
	m.notes = append(m.notes, n)
	return nil
}

func (m *Model) UpdateNote(id string, patch NotePatch) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	n, err := patch.apply(m.notes[i]).Normalized()
	if err != nil {
		return err
	}
	m.notes[i] = n
	return nil
}

func (m *Model) RemoveNote(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	m.notes = slices.Delete(m.notes, i, i+1)
	return nil
}

func (m *Model) ClearNotes() {
	m.notes = nil
}

// ReplaceNotes installs a whole collection. Nothing changes if any note is
// rejected.
func (m *Model) ReplaceNotes(notes []Note) error {
	next := &Model{params: m.params}
	for _, n := range notes {
		if err := next.AddNote(n); err != nil {
			return err
		}
	}
	m.notes = next.notes
	return nil
}

// Restore installs a snapshot taken from a model as it is, without
// revalidating the notes.
func (m *Model) Restore(p Parameters, notes []Note) {
	m.params = p
	m.notes = slices.Clone(notes)
}

func (m *Model) index(id string) int {
	return slices.IndexFunc(m.notes, func(n Note) bool { return n.ID == id })
}
