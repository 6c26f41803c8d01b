package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/sameashark/se-composer/internal/params"
)

// Version is written into every saved preset.
const Version = 1

var errNotDocument = errors.New("expected an object or an array of presets")

// Preset is a named, saved parameter set with its notes.
type Preset struct {
	Version int               `json:"version"`
	Name    string            `json:"name"`
	Params  params.Parameters `json:"params"`
	Notes   []params.Note     `json:"notes"`
}

// UnmarshalJSON fills parameters the document omits from the defaults and
// clamps the rest.
func (p *Preset) UnmarshalJSON(data []byte) error {
	type plain Preset
	v := plain{Params: params.Defaults()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	v.Params = v.Params.Clamped()
	*p = Preset(v)
	return nil
}

// Current is the live editing state carried by an export.
type Current struct {
	Params params.Parameters `json:"params"`
	Notes  []params.Note     `json:"notes"`
}

func (c *Current) UnmarshalJSON(data []byte) error {
	type plain Current
	v := plain{Params: params.Defaults()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	v.Params = v.Params.Clamped()
	*c = Current(v)
	return nil
}

// Document is the import/export file. Bare reports that the source was a
// plain preset array, which carries no current state.
type Document struct {
	Current *Current `json:"current,omitempty"`
	History []Preset `json:"history"`
	Bare    bool     `json:"-"`
}

// Decode parses either {"current": ..., "history": [...]} or a bare array of
// presets.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, errNotDocument
	}
	switch data[0] {
	case '[':
		var list []Preset
		if err := json.Unmarshal(data, &list); err != nil {
			return Document{}, err
		}
		return Document{History: list, Bare: true}, nil
	case '{':
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, err
		}
		if doc.History == nil {
			return Document{}, fmt.Errorf("missing history: %w", errNotDocument)
		}
		return doc, nil
	}
	return Document{}, errNotDocument
}

// Encode writes doc as indented JSON.
func Encode(doc Document) ([]byte, error) {
	if doc.History == nil {
		doc.History = []Preset{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Upsert puts p at the front of list, replacing any preset with the same
// name. It reports whether an existing preset was replaced.
func Upsert(list []Preset, p Preset) ([]Preset, bool) {
	rest, replaced := Remove(list, p.Name)
	return append([]Preset{p}, rest...), replaced
}

// Remove returns list without the preset called name.
func Remove(list []Preset, name string) ([]Preset, bool) {
	i := slices.IndexFunc(list, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return list, false
	}
	out := make([]Preset, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

func Find(list []Preset, name string) (Preset, bool) {
	i := slices.IndexFunc(list, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return Preset{}, false
	}
	return list[i], true
}
