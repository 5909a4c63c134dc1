package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/model"
)

// AppendTrainingSample adds one confirmed text/label pair to the
// corpus. Samples are never updated or deleted.
func (s *SQLiteStorage) AppendTrainingSample(ctx context.Context, sample *model.TrainingSample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return appendTrainingSample(ctx, s.db, sample)
}

// GetTrainingSamples returns the full corpus in append order.
func (s *SQLiteStorage) GetTrainingSamples(ctx context.Context) ([]model.TrainingSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTrainingSamples(ctx, s.db)
}

// CountTrainingSamples returns the corpus size.
func (s *SQLiteStorage) CountTrainingSamples(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTrainingSamples(ctx, s.db)
}

// Transaction implementations for corpus operations.

func (t *sqliteTransaction) AppendTrainingSample(ctx context.Context, sample *model.TrainingSample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return appendTrainingSample(ctx, t.tx, sample)
}

func (t *sqliteTransaction) GetTrainingSamples(ctx context.Context) ([]model.TrainingSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTrainingSamples(ctx, t.tx)
}

func (t *sqliteTransaction) CountTrainingSamples(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTrainingSamples(ctx, t.tx)
}

func appendTrainingSample(ctx context.Context, db dbtx, sample *model.TrainingSample) error {
	if err := validateSample(sample); err != nil {
		return err
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO training_samples (expense_id, description, vendor, language, label, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sample.ExpenseID, sample.Description, sample.Vendor,
		sample.Language, sample.Label, sample.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append training sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sample ID: %w", err)
	}
	sample.ID = id

	slog.Debug("appended training sample", "expense_id", sample.ExpenseID, "label", sample.Label)
	return nil
}

func getTrainingSamples(ctx context.Context, db dbtx) ([]model.TrainingSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, expense_id, description, vendor, language, label, created_at
		FROM training_samples
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training samples: %w", err)
	}
	defer rows.Close()

	var samples []model.TrainingSample
	for rows.Next() {
		var sample model.TrainingSample
		if err := rows.Scan(
			&sample.ID, &sample.ExpenseID, &sample.Description,
			&sample.Vendor, &sample.Language, &sample.Label, &sample.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training sample: %w", err)
		}
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training samples: %w", err)
	}
	return samples, nil
}

func countTrainingSamples(ctx context.Context, db dbtx) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_samples`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count training samples: %w", err)
	}
	return count, nil
}
