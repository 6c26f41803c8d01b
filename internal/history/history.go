package history

import (
	"slices"

	"github.com/sameashark/se-composer/internal/params"
)

// DefaultCapacity bounds each of the undo and redo stacks.
const DefaultCapacity = 50

// Snapshot is a full copy of the editable state.
type Snapshot struct {
	Params params.Parameters `json:"params"`
	Notes  []params.Note     `json:"notes"`
}

// Clone returns a copy that shares nothing with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Params: s.Params, Notes: slices.Clone(s.Notes)}
}

// Equal reports structural equality.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Params == o.Params && slices.Equal(s.Notes, o.Notes)
}

type Option func(*Manager)

// WithCapacity sets the per-stack bound. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// Manager keeps bounded past and future stacks of snapshots. The oldest
// entry is evicted when a stack is full.
type Manager struct {
	capacity int
	past     []Snapshot
	future   []Snapshot
}

func New(opts ...Option) *Manager {
	m := &Manager{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Push records s as the state to return to on the next Undo and clears the
// redo stack. Pushing a snapshot equal to the latest entry does nothing.
func (m *Manager) Push(s Snapshot) {
	if n := len(m.past); n > 0 && m.past[n-1].Equal(s) {
		return
	}
	m.past = push(m.past, s.Clone(), m.capacity)
	m.future = nil
}

// Undo pops the latest past snapshot, saving current for Redo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	if len(m.past) == 0 {
		return Snapshot{}, false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = push(m.future, current.Clone(), m.capacity)
	return prev.Clone(), true
}

// Redo pops the latest future snapshot, saving current for Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	if len(m.future) == 0 {
		return Snapshot{}, false
	}
	next := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.past = push(m.past, current.Clone(), m.capacity)
	return next.Clone(), true
}

func (m *Manager) CanUndo() bool { return len(m.past) > 0 }
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Len returns the sizes of the past and future stacks.
func (m *Manager) Len() (past, future int) {
	return len(m.past), len(m.future)
}

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.past, m.future = nil, nil
}

func push(stack []Snapshot, s Snapshot, capacity int) []Snapshot {
	if len(stack) >= capacity {
		stack = slices.Delete(stack, 0, len(stack)-capacity+1)
	}
	return append(stack, s)
}
