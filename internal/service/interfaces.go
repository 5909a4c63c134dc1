// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"grosz/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	Category    string
	NeedsReview bool
	Limit       int
	Offset      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Expense operations
	SaveExpense(ctx context.Context, expense *model.Expense) error
	GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	GetExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)

	// Category operations. EnsureCategory is idempotent: registering a
	// known name returns the existing row.
	EnsureCategory(ctx context.Context, name string) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)

	// Training corpus operations. The sample log is append-only.
	AppendTrainingSample(ctx context.Context, sample *model.TrainingSample) error
	GetTrainingSamples(ctx context.Context) ([]model.TrainingSample, error)
	CountTrainingSamples(ctx context.Context) (int, error)

	// Metric history operations. Rows are never mutated once written.
	AppendModelMetric(ctx context.Context, metric *model.ModelMetric) error
	GetModelMetrics(ctx context.Context, limit int) ([]model.ModelMetric, error)

	// Artifact operations
	SaveArtifact(ctx context.Context, record *model.ArtifactRecord) error
	GetLatestArtifact(ctx context.Context) (*model.ArtifactRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Normalizer converts raw expense text into lowercase lemma tokens.
// Implementations are locale-aware; lang is a BCP 47-ish hint ("pl",
// "en"). Unknown hints fall back to the default language.
type Normalizer interface {
	Normalize(text, lang string) []string
}

// MetricsReport bundles the metric history with the most recent
// successful accuracy for trend displays.
type MetricsReport struct {
	History         []model.ModelMetric
	LatestAccuracy  float64
	HasTrainedModel bool
}
