package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/fifa-tournament/config"
	"github.com/Dosada05/fifa-tournament/db"
	"github.com/Dosada05/fifa-tournament/repositories"
)

// Open builds the snapshot store selected by cfg.StorageBackend. The returned
// close func releases whatever the backend holds open.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SnapshotRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageBackend {
	case config.BackendFile:
		logger.Info("using file snapshot store", slog.String("path", cfg.DataFile))
		return NewFileSnapshotStore(cfg.DataFile), noop, nil

	case config.BackendXLSX:
		logger.Info("using xlsx snapshot store", slog.String("path", cfg.XLSXPath))
		return NewXLSXSnapshotStore(cfg.XLSXPath), noop, nil

	case config.BackendS3:
		objects, err := OpenObjectStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using S3 snapshot store", slog.String("bucket", cfg.S3Bucket), slog.String("key", cfg.S3Key))
		return NewS3SnapshotStore(objects, cfg.S3Key), noop, nil

	case config.BackendPostgres:
		conn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("using postgres snapshot store")
		standings := repositories.NewPostgresTournamentStandingRepository(conn)
		return repositories.NewPostgresSnapshotRepository(conn, standings), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenObjectStore connects to the bucket described by the S3_* settings. It
// works with any storage backend, so exports can be published even when the
// snapshot lives elsewhere.
func OpenObjectStore(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is not configured")
	}
	objects, err := NewS3Store(ctx, S3StoreConfig{
		BucketName:      cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 store: %w", err)
	}
	return objects, nil
}
