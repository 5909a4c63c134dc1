package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/common"
	"grosz/internal/model"
	"grosz/internal/normalize"
	"grosz/internal/service"
)

// Confirm records the user's verdict on an expense's category. The
// given category may equal the current one (confirmation) or differ
// (correction); either way the expense ends at confidence 1.0 with no
// review flag, the category is registered if new, and one training
// sample is appended from the expense's current text.
//
// This is the only path that grows the training corpus, and it runs in
// a single database transaction so concurrent confirms on the same
// expense stay last-writer-consistent.
func (e *Engine) Confirm(ctx context.Context, expenseID int64, category string) (*model.Expense, error) {
	name := normalize.CategoryName(category)
	if name == "" {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidCategory, category)
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	expense, err := tx.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if err := e.applyConfirmation(ctx, tx, expense, name); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	slog.Info("confirmed expense category",
		"expense_id", expenseID,
		"category", name)
	return expense, nil
}

// UpdateExpenseRequest carries the fields of a full-record edit. Nil
// fields are left unchanged.
type UpdateExpenseRequest struct {
	Date        *time.Time
	Description *string
	Vendor      *string
	Category    *string
	Amount      *float64
}

// Update applies a manual edit to an expense. A category change inside
// the edit is treated as a correction and runs the confirm semantics:
// confidence resets to 1.0 and a training sample is appended from the
// edited text fields.
func (e *Engine) Update(ctx context.Context, expenseID int64, req UpdateExpenseRequest) (*model.Expense, error) {
	var name string
	if req.Category != nil {
		name = normalize.CategoryName(*req.Category)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidCategory, *req.Category)
		}
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	expense, err := tx.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		expense.Date = *req.Date
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Vendor != nil {
		expense.Vendor = *req.Vendor
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}

	if name != "" && name != expense.Category {
		if err := e.applyConfirmation(ctx, tx, expense, name); err != nil {
			return nil, err
		}
	} else if err := tx.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	slog.Info("updated expense", "expense_id", expenseID)
	return expense, nil
}

// applyConfirmation performs the shared confirm/correction mutation:
// register the category, pin the expense at confidence 1.0, and append
// a training sample reflecting the expense's text right now.
func (e *Engine) applyConfirmation(ctx context.Context, tx service.Transaction, expense *model.Expense, category string) error {
	if _, err := tx.EnsureCategory(ctx, category); err != nil {
		return err
	}

	confidence := 1.0
	expense.Category = category
	expense.Confidence = &confidence
	expense.NeedsReview = false

	if err := tx.UpdateExpense(ctx, expense); err != nil {
		return err
	}

	sample := &model.TrainingSample{
		ExpenseID:   expense.ID,
		Description: expense.Description,
		Vendor:      expense.Vendor,
		Language:    expense.Language,
		Label:       category,
	}
	return tx.AppendTrainingSample(ctx, sample)
}
