package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/model"
)

// AppendModelMetric records the outcome of one training run. Metric
// rows are immutable history.
func (s *SQLiteStorage) AppendModelMetric(ctx context.Context, metric *model.ModelMetric) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return appendModelMetric(ctx, s.db, metric)
}

// GetModelMetrics returns metric rows, newest first. A non-positive
// limit returns the whole history.
func (s *SQLiteStorage) GetModelMetrics(ctx context.Context, limit int) ([]model.ModelMetric, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getModelMetrics(ctx, s.db, limit)
}

// Transaction implementations for metric operations.

func (t *sqliteTransaction) AppendModelMetric(ctx context.Context, metric *model.ModelMetric) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return appendModelMetric(ctx, t.tx, metric)
}

func (t *sqliteTransaction) GetModelMetrics(ctx context.Context, limit int) ([]model.ModelMetric, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getModelMetrics(ctx, t.tx, limit)
}

func appendModelMetric(ctx context.Context, db dbtx, metric *model.ModelMetric) error {
	if err := validateMetric(metric); err != nil {
		return err
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO model_metrics (accuracy, samples_count, categories_count, training_type, succeeded, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metric.Accuracy, metric.SampleCount, metric.CategoryCount,
		string(metric.TrainingType), metric.Succeeded, metric.Notes, metric.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append model metric: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get metric ID: %w", err)
	}
	metric.ID = id

	slog.Info("recorded model metric",
		"accuracy", metric.Accuracy,
		"samples", metric.SampleCount,
		"categories", metric.CategoryCount,
		"type", metric.TrainingType,
		"succeeded", metric.Succeeded)
	return nil
}

func getModelMetrics(ctx context.Context, db dbtx, limit int) ([]model.ModelMetric, error) {
	query := `
		SELECT id, accuracy, samples_count, categories_count, training_type, succeeded, notes, created_at
		FROM model_metrics
		ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model metrics: %w", err)
	}
	defer rows.Close()

	var metrics []model.ModelMetric
	for rows.Next() {
		var (
			metric       model.ModelMetric
			trainingType string
		)
		if err := rows.Scan(
			&metric.ID, &metric.Accuracy, &metric.SampleCount,
			&metric.CategoryCount, &trainingType, &metric.Succeeded,
			&metric.Notes, &metric.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan model metric: %w", err)
		}
		metric.TrainingType = model.TrainingType(trainingType)
		metrics = append(metrics, metric)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model metrics: %w", err)
	}
	return metrics, nil
}
