package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modeon/internal/core/model"
)

const (
	// stateVersion is bumped when the file layout changes.
	stateVersion = 1

	stateFileName = "state.json"
)

type stateFile struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	model.Snapshot
}

// StateStore persists the tracker snapshot as a JSON document.
type StateStore struct {
	dir string
}

// NewStateStore creates a StateStore in dir. The directory is created on the
// first Save.
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// Path returns the full path to the state file.
func (store *StateStore) Path() string {
	return filepath.Join(store.dir, stateFileName)
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (store *StateStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, nil
		}
		return model.Snapshot{}, fmt.Errorf("read state: %w", err)
	}

	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse state: %w", err)
	}
	if file.Version > stateVersion {
		return model.Snapshot{}, fmt.Errorf("parse state: unsupported version %d", file.Version)
	}
	return file.Snapshot, nil
}

// Save writes the snapshot using an atomic temp-file-then-rename pattern.
func (store *StateStore) Save(ctx context.Context, snapshot model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(store.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(stateFile{
		Version:   stateVersion,
		UpdatedAt: time.Now().UTC(),
		Snapshot:  snapshot,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(store.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, store.Path()); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	committed = true

	return nil
}
