package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultPath is where presets are kept when no path is given.
const DefaultPath = "~/.config/se-composer/presets.json"

// FileStore keeps the preset list in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore expands a leading ~ and environment variables in path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultPath
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}
	return &FileStore{path: filepath.Clean(os.ExpandEnv(p))}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the preset list. A missing file is an empty list.
func (s *FileStore) Load() ([]Preset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return doc.History, nil
}

// Save writes the preset list, creating the directory if needed.
func (s *FileStore) Save(list []Preset) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if list == nil {
		list = []Preset{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
