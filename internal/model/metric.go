package model

import "time"

// TrainingType records how a training run relates to the corpus.
type TrainingType string

const (
	// TrainingTypeFull marks the first successful fit over the corpus.
	TrainingTypeFull TrainingType = "full"
	// TrainingTypeIncremental marks a retrain over a corpus that grew
	// since the previous run. The fit itself is always a full refit.
	TrainingTypeIncremental TrainingType = "incremental"
)

// ModelMetric is one immutable record of a training run's outcome,
// successful or failed. Rows are append-only and ordered by CreatedAt.
type ModelMetric struct {
	CreatedAt     time.Time
	TrainingType  TrainingType
	Notes         string
	Accuracy      float64
	SampleCount   int
	CategoryCount int
	ID            int64
	Succeeded     bool
}
