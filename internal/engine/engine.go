// Package engine implements the serving side of the adaptive expense
// categorization engine: prediction with review gating, and the
// feedback path that turns confirmations into training signal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grosz/internal/classifier"
	"grosz/internal/common"
	"grosz/internal/model"
	"grosz/internal/normalize"
	"grosz/internal/service"
)

// DefaultReviewThreshold is the confidence below which a prediction is
// flagged for human review.
const DefaultReviewThreshold = 0.70

// Engine serves predictions and collects user feedback.
type Engine struct {
	storage    service.Storage
	normalizer service.Normalizer
	models     *classifier.Holder
	threshold  float64
}

// Config holds configuration options for the engine.
type Config struct {
	ReviewThreshold float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{ReviewThreshold: DefaultReviewThreshold}
}

// New creates an engine with the default configuration.
func New(storage service.Storage, normalizer service.Normalizer, models *classifier.Holder) *Engine {
	return NewWithConfig(storage, normalizer, models, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, normalizer service.Normalizer, models *classifier.Holder, config Config) *Engine {
	threshold := config.ReviewThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultReviewThreshold
	}
	return &Engine{
		storage:    storage,
		normalizer: normalizer,
		models:     models,
		threshold:  threshold,
	}
}

// Predict categorizes one expense text against the current artifact
// snapshot. It returns common.ErrModelUnavailable when no model has
// been trained yet; callers fall back to the default category with no
// confidence score.
func (e *Engine) Predict(ctx context.Context, description, vendor, lang string) (*model.Prediction, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	artifact := e.models.Current()
	if artifact == nil {
		return nil, common.ErrModelUnavailable
	}

	text := description
	if vendor != "" {
		text += " " + vendor
	}
	tokens := e.normalizer.Normalize(text, lang)

	category, confidence := artifact.Predict(tokens)
	prediction := &model.Prediction{
		Category:    category,
		Confidence:  confidence,
		NeedsReview: confidence < e.threshold,
		Band:        model.BandFor(confidence),
	}

	slog.Debug("predicted category",
		"category", category,
		"confidence", confidence,
		"needs_review", prediction.NeedsReview,
		"artifact", artifact.ID)
	return prediction, nil
}

// AddExpenseRequest describes a new expense entering the system.
type AddExpenseRequest struct {
	Date        time.Time
	Description string
	Vendor      string
	Category    string
	Language    string
	Amount      float64
}

// AddExpense records a new expense. With an explicit category it is a
// manual entry: confidence 1.0, no review, category registered if new.
// Without one the engine predicts; if no model exists yet the expense
// falls back to the default category with no confidence score, which
// by the review invariant is not flagged for review.
//
// Manual entries do not append training samples; only the confirm and
// update paths feed the corpus.
func (e *Engine) AddExpense(ctx context.Context, req AddExpenseRequest) (*model.Expense, error) {
	expense := &model.Expense{
		Date:        req.Date,
		Description: req.Description,
		Vendor:      req.Vendor,
		Amount:      req.Amount,
		Language:    normalize.Canonical(req.Language),
	}

	if req.Category != "" {
		name := normalize.CategoryName(req.Category)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidCategory, req.Category)
		}
		if _, err := e.storage.EnsureCategory(ctx, name); err != nil {
			return nil, err
		}
		confidence := 1.0
		expense.Category = name
		expense.Confidence = &confidence
		expense.NeedsReview = false
	} else {
		prediction, err := e.Predict(ctx, req.Description, req.Vendor, expense.Language)
		switch {
		case err == nil:
			confidence := prediction.Confidence
			expense.Category = prediction.Category
			expense.Confidence = &confidence
			expense.NeedsReview = prediction.NeedsReview
		case isModelUnavailable(err):
			expense.Category = model.DefaultCategory
			expense.Confidence = nil
			expense.NeedsReview = false
			slog.Info("no trained model, using default category",
				"category", model.DefaultCategory)
		default:
			return nil, err
		}
	}

	if err := e.storage.SaveExpense(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Categories lists the known categories in first-seen order.
func (e *Engine) Categories(ctx context.Context) ([]model.Category, error) {
	return e.storage.GetCategories(ctx)
}

// RegisterCategory registers a category by name, normalizing it first.
func (e *Engine) RegisterCategory(ctx context.Context, name string) (*model.Category, error) {
	cleaned := normalize.CategoryName(name)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidCategory, name)
	}
	return e.storage.EnsureCategory(ctx, cleaned)
}

// ReviewQueue returns expenses flagged for human review, newest first.
func (e *Engine) ReviewQueue(ctx context.Context, limit int) ([]model.Expense, error) {
	return e.storage.GetExpenses(ctx, service.ExpenseFilter{
		NeedsReview: true,
		Limit:       limit,
	})
}

// Expenses lists stored expenses matching the filter.
func (e *Engine) Expenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	return e.storage.GetExpenses(ctx, filter)
}

func isModelUnavailable(err error) bool {
	return errors.Is(err, common.ErrModelUnavailable)
}
