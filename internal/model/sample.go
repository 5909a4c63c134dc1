package model

import "time"

// TrainingSample is a text/label pair captured at the moment a user
// confirms or corrects an expense's category. The sample log is
// append-only history: later edits to the expense do not rewrite it.
type TrainingSample struct {
	CreatedAt   time.Time
	Description string
	Vendor      string
	Language    string
	Label       string
	ExpenseID   int64
	ID          int64
}

// FeatureText combines the sample's free-text fields the same way the
// expense does at prediction time.
func (s *TrainingSample) FeatureText() string {
	if s.Vendor == "" {
		return s.Description
	}
	return s.Description + " " + s.Vendor
}
