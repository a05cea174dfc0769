// Package checkpoint persists the block-walk cursor to a small durable file.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes the last fully processed block level as a JSON
// marker file. Writes go through a temporary file and rename so a crash
// mid-write never leaves a corrupt marker.
type Store struct {
	path string
}

// NewStore creates a checkpoint store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

type marker struct {
	Level int64 `json:"level"`
}

// Last returns the last recorded level. The bool is false when no checkpoint
// file exists yet.
func (s *Store) Last() (int64, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint %s: %w", s.path, err)
	}
	return m.Level, true, nil
}

// Record durably stores the level as the last fully processed one.
func (s *Store) Record(level int64) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	data, err := json.Marshal(marker{Level: level})
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}
