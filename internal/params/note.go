package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidPitch  = errors.New("invalid pitch")
	ErrDuplicateNote = errors.New("duplicate note id")
	ErrNoteNotFound  = errors.New("note not found")
)

// GridSize is the number of 16th-note columns in one bar.
const GridSize = 16

// GridPosition addresses a 16th-note cell as bar:beat:subdivision.
type GridPosition struct {
	Bar  int
	Beat int
	Sub  int
}

// Column is the absolute 16th-note column index.
func (g GridPosition) Column() int {
	return g.Bar*GridSize + g.Beat*4 + g.Sub
}

// PositionAt converts a column index back into a grid position.
func PositionAt(column int) GridPosition {
	if column < 0 {
		column = 0
	}
	return GridPosition{Bar: column / GridSize, Beat: column % GridSize / 4, Sub: column % 4}
}

func (g GridPosition) String() string {
	return fmt.Sprintf("%d:%d:%d", g.Bar, g.Beat, g.Sub)
}

func (g GridPosition) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GridPosition) UnmarshalText(text []byte) error {
	parts := strings.Split(strings.TrimSpace(string(text)), ":")
	if len(parts) != 3 {
		return fmt.Errorf("grid position %q: want bar:beat:sub", text)
	}
	var vals [3]int
	for i, p := range parts {
		// Transport strings may carry fractional sixteenths ("0:1:2.5").
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("grid position %q: %w", text, err)
		}
		vals[i] = int(math.Floor(f))
	}
	*g = GridPosition{Bar: vals[0], Beat: vals[1], Sub: vals[2]}
	return nil
}

// Note is one cell-aligned note on the grid.
type Note struct {
	ID       string       `json:"id"`
	Time     GridPosition `json:"time"`
	Pitch    string       `json:"pitch"`
	Width    int          `json:"width"`
	Velocity float64      `json:"velocity"`
}

// UnmarshalJSON fills width and velocity with 1 when the document omits them.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	v := plain{Width: 1, Velocity: 1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Note(v)
	return nil
}

// NotePatch carries the fields of an UpdateNote call; nil means unchanged.
type NotePatch struct {
	Time     *GridPosition `json:"time,omitempty"`
	Pitch    *string       `json:"pitch,omitempty"`
	Width    *int          `json:"width,omitempty"`
	Velocity *float64      `json:"velocity,omitempty"`
}

func (p NotePatch) apply(n Note) Note {
	if p.Time != nil {
		n.Time = *p.Time
	}
	if p.Pitch != nil {
		n.Pitch = *p.Pitch
	}
	if p.Width != nil {
		n.Width = *p.Width
	}
	if p.Velocity != nil {
		n.Velocity = *p.Velocity
	}
	return n
}

// Normalized validates the pitch and clamps the numeric fields.
func (n Note) Normalized() (Note, error) {
	if n.ID == "" {
		return n, fmt.Errorf("note without id: %w", ErrInvalidValue)
	}
	if _, err := ParsePitch(n.Pitch); err != nil {
		return n, err
	}
	if n.Width < 1 {
		n.Width = 1
	}
	if math.IsNaN(n.Velocity) {
		n.Velocity = 1
	}
	n.Velocity = clamp(n.Velocity, 0, 1)
	n.Time.Bar = max(n.Time.Bar, 0)
	n.Time.Beat = max(n.Time.Beat, 0)
	n.Time.Sub = max(n.Time.Sub, 0)
	// Overflowing beats and subdivisions carry, so one cell has one spelling.
	n.Time = PositionAt(n.Time.Column())
	return n, nil
}

// Frequency resolves the note's pitch in Hz.
func (n Note) Frequency() (float64, error) {
	return ParsePitch(n.Pitch)
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParsePitch accepts a note name with octave ("C4", "F#3", "Bb5") or an
// absolute frequency in Hz ("440").
func ParsePitch(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPitch)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
		}
		return f, nil
	}
	semi, ok := semitones[upper(s[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	rest := s[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			semi++
		} else {
			semi--
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	midi := (octave+1)*12 + semi
	return MIDIToFreq(midi), nil
}

func MIDIToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
