package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aretw0/stater/pkg/domain"
)

// Store implements ports.StateStore using the local filesystem.
// Each conversation outside the default state is one JSON file in BasePath.
type Store struct {
	BasePath string
}

// record is the on-disk document.
type record struct {
	Key       domain.StateKey `json:"key"`
	State     domain.StateID  `json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".stater/state".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".stater", "state")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key domain.StateKey) string {
	name := "chat_" + strconv.FormatInt(key.ChatID, 10)
	if key.ThreadID != 0 {
		name += "_thread_" + strconv.FormatInt(key.ThreadID, 10)
	}
	return filepath.Join(s.BasePath, name+".json")
}

// Get reads the conversation file. A missing file is the default state.
func (s *Store) Get(_ context.Context, key domain.StateKey) (domain.StateID, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultState, nil
		}
		return domain.DefaultState, fmt.Errorf("failed to read state file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.DefaultState, fmt.Errorf("failed to unmarshal state file %s: %w", s.path(key), err)
	}
	return rec.State, nil
}

// Set writes the conversation file atomically: temp file, fsync, rename.
// domain.DefaultState removes the file.
func (s *Store) Set(_ context.Context, key domain.StateKey, state domain.StateID) error {
	destPath := s.path(key)

	if state == domain.DefaultState {
		if err := os.Remove(destPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete state file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	data, err := json.MarshalIndent(record{Key: key, State: state, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
