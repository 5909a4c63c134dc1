package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"grosz/internal/common"
	"grosz/internal/model"
	"grosz/internal/service"
)

// SaveExpense inserts a new expense and assigns its ID.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveExpense(ctx, s.db, expense)
}

// GetExpenseByID returns the expense with the given id, or
// common.ErrExpenseNotFound if no such row exists.
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenseByID(ctx, s.db, id)
}

// UpdateExpense rewrites an existing expense row.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateExpense(ctx, s.db, expense)
}

// GetExpenses returns expenses matching the filter, newest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenses(ctx, s.db, filter)
}

// Transaction implementations for expense operations.

func (t *sqliteTransaction) SaveExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveExpense(ctx, t.tx, expense)
}

func (t *sqliteTransaction) GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenseByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateExpense(ctx, t.tx, expense)
}

func (t *sqliteTransaction) GetExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenses(ctx, t.tx, filter)
}

func saveExpense(ctx context.Context, db dbtx, expense *model.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}

	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO expenses (date, description, vendor, amount, category, language, confidence, needs_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.Date, expense.Description, expense.Vendor, expense.Amount,
		expense.Category, expense.Language, nullableFloat(expense.Confidence),
		expense.NeedsReview, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}
	expense.ID = id

	slog.Debug("saved expense", "id", id, "category", expense.Category)
	return nil
}

func getExpenseByID(ctx context.Context, db dbtx, id int64) (*model.Expense, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var (
		expense    model.Expense
		confidence sql.NullFloat64
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, date, description, vendor, amount, category, language, confidence, needs_review, created_at
		FROM expenses
		WHERE id = ?`, id).Scan(
		&expense.ID, &expense.Date, &expense.Description, &expense.Vendor,
		&expense.Amount, &expense.Category, &expense.Language,
		&confidence, &expense.NeedsReview, &expense.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, common.ErrExpenseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}

	if confidence.Valid {
		c := confidence.Float64
		expense.Confidence = &c
	}
	return &expense, nil
}

func updateExpense(ctx context.Context, db dbtx, expense *model.Expense) error {
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := validateID(expense.ID, "expense.ID"); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE expenses
		SET date = ?, description = ?, vendor = ?, amount = ?, category = ?,
		    language = ?, confidence = ?, needs_review = ?
		WHERE id = ?`,
		expense.Date, expense.Description, expense.Vendor, expense.Amount,
		expense.Category, expense.Language, nullableFloat(expense.Confidence),
		expense.NeedsReview, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", expense.ID, common.ErrExpenseNotFound)
	}
	return nil
}

func getExpenses(ctx context.Context, db dbtx, filter service.ExpenseFilter) ([]model.Expense, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.NeedsReview {
		conditions = append(conditions, "needs_review = 1")
	}

	query := `
		SELECT id, date, description, vendor, amount, category, language, confidence, needs_review, created_at
		FROM expenses`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var (
			expense    model.Expense
			confidence sql.NullFloat64
		)
		if err := rows.Scan(
			&expense.ID, &expense.Date, &expense.Description, &expense.Vendor,
			&expense.Amount, &expense.Category, &expense.Language,
			&confidence, &expense.NeedsReview, &expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if confidence.Valid {
			c := confidence.Float64
			expense.Confidence = &c
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
