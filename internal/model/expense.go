// Package model defines the core domain models used throughout the application.
package model

import "time"

// DefaultCategory is the fallback category assigned when no trained
// model is available. It is seeded by the initial migration and can
// never be removed.
const DefaultCategory = "Other"

// Expense represents a single recorded expense, typically transcribed
// from speech.
type Expense struct {
	Date        time.Time
	CreatedAt   time.Time
	Description string
	Vendor      string
	Category    string
	Language    string
	Confidence  *float64
	Amount      float64
	ID          int64
	NeedsReview bool
}

// Scored reports whether the expense carries a classifier confidence.
// Manually entered and confirmed expenses are scored at 1.0; expenses
// created before any model was trained are unscored.
func (e *Expense) Scored() bool {
	return e.Confidence != nil
}

// FeatureText combines the free-text fields used as classifier input.
func (e *Expense) FeatureText() string {
	if e.Vendor == "" {
		return e.Description
	}
	return e.Description + " " + e.Vendor
}
