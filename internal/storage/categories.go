package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/common"
	"grosz/internal/model"
)

// GetCategories returns all known categories in first-seen order.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db)
}

// GetCategoryByName returns a category by its name, or nil if unknown.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, s.db, name)
}

// EnsureCategory registers a category name if it is new and returns
// the stored row either way. Concurrent calls for the same new name
// resolve to a single winner through the UNIQUE constraint.
func (s *SQLiteStorage) EnsureCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return ensureCategory(ctx, s.db, name)
}

// Transaction implementations for category operations.

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) EnsureCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return ensureCategory(ctx, t.tx, name)
}

func getCategories(ctx context.Context, db dbtx) ([]model.Category, error) {
	// Insertion order doubles as the tie-break order for predictions,
	// so ORDER BY id matters here.
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func getCategoryByName(ctx context.Context, db dbtx, name string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCategory, err)
	}

	var cat model.Category
	err := db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		WHERE name = ?`, name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

func ensureCategory(ctx context.Context, db dbtx, name string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCategory, err)
	}

	// INSERT OR IGNORE makes the registration idempotent; the unique
	// index on name guarantees a single winner under concurrency.
	result, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO categories (name, created_at)
		VALUES (?, ?)`, name, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure category: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		slog.Info("registered new category", "name", name)
	}

	cat, err := getCategoryByName(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %q missing after ensure", name)
	}
	return cat, nil
}
