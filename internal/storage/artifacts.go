package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/model"
)

// SaveArtifact persists a serialized classifier artifact. The newest
// row by trained_at becomes the current model after a restart.
func (s *SQLiteStorage) SaveArtifact(ctx context.Context, record *model.ArtifactRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveArtifact(ctx, s.db, record)
}

// GetLatestArtifact returns the most recently trained artifact record,
// or nil if no model has ever been trained.
func (s *SQLiteStorage) GetLatestArtifact(ctx context.Context) (*model.ArtifactRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getLatestArtifact(ctx, s.db)
}

// Transaction implementations for artifact operations.

func (t *sqliteTransaction) SaveArtifact(ctx context.Context, record *model.ArtifactRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveArtifact(ctx, t.tx, record)
}

func (t *sqliteTransaction) GetLatestArtifact(ctx context.Context) (*model.ArtifactRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getLatestArtifact(ctx, t.tx)
}

func saveArtifact(ctx context.Context, db dbtx, record *model.ArtifactRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if err := validateString(record.ID, "record.ID"); err != nil {
		return err
	}
	if len(record.Blob) == 0 {
		return fmt.Errorf("%w: record.Blob", ErrNilParameter)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO artifacts (id, trained_at, sample_count, blob, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.TrainedAt, record.SampleCount, record.Blob, record.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	slog.Info("persisted classifier artifact",
		"id", record.ID,
		"sample_count", record.SampleCount,
		"size_bytes", len(record.Blob))
	return nil
}

func getLatestArtifact(ctx context.Context, db dbtx) (*model.ArtifactRecord, error) {
	var record model.ArtifactRecord
	err := db.QueryRowContext(ctx, `
		SELECT id, trained_at, sample_count, blob, created_at
		FROM artifacts
		ORDER BY trained_at DESC, created_at DESC
		LIMIT 1`).Scan(
		&record.ID, &record.TrainedAt, &record.SampleCount,
		&record.Blob, &record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No model trained yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest artifact: %w", err)
	}
	return &record, nil
}
