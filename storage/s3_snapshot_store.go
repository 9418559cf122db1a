package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/fifa-tournament/models"
	"github.com/Dosada05/fifa-tournament/repositories"
)

const snapshotContentType = "application/json"

// S3SnapshotStore keeps the snapshot as a single JSON object in a bucket.
type S3SnapshotStore struct {
	objects ObjectStore
	key     string
}

func NewS3SnapshotStore(objects ObjectStore, key string) *S3SnapshotStore {
	if key == "" {
		key = "tournament_data.json"
	}
	return &S3SnapshotStore{objects: objects, key: key}
}

func (s *S3SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	body, err := s.objects.Download(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, repositories.ErrSnapshotNotFound
		}
		return nil, err
	}
	defer body.Close()

	snapshot, err := DecodeSnapshot(body)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, repositories.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (s *S3SnapshotStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if err := repositories.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := s.objects.Upload(ctx, s.key, snapshotContentType, &buf); err != nil {
		return err
	}
	return nil
}
