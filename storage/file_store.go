package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

// FileSnapshotStore keeps the snapshot as one JSON document on disk.
type FileSnapshotStore struct {
	path string
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

func (s *FileSnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repositories.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	snapshot, err := DecodeSnapshot(f)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, repositories.ErrSnapshotNotFound
	}
	return snapshot, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers never see a half-written document.
func (s *FileSnapshotStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if err := repositories.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := EncodeSnapshot(tmp, snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
