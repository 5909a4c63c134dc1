package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grosz/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidID     = errors.New("id must be positive")
	ErrInvalidSample = errors.New("invalid training sample")
	ErrInvalidMetric = errors.New("invalid model metric")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateExpense validates a single expense.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := validateString(expense.Description, "expense.Description"); err != nil {
		return err
	}
	if err := validateString(expense.Category, "expense.Category"); err != nil {
		return err
	}
	if expense.Confidence != nil {
		if c := *expense.Confidence; c < 0 || c > 1 {
			return fmt.Errorf("expense confidence %f out of range [0,1]", c)
		}
	}
	return nil
}

// validateSample validates a training sample before it is appended.
func validateSample(sample *model.TrainingSample) error {
	if sample == nil {
		return fmt.Errorf("%w: sample", ErrNilParameter)
	}
	if strings.TrimSpace(sample.Description) == "" {
		return fmt.Errorf("%w: description is empty", ErrInvalidSample)
	}
	if strings.TrimSpace(sample.Label) == "" {
		return fmt.Errorf("%w: label is empty", ErrInvalidSample)
	}
	return nil
}

// validateMetric validates a metric row before it is appended.
func validateMetric(metric *model.ModelMetric) error {
	if metric == nil {
		return fmt.Errorf("%w: metric", ErrNilParameter)
	}
	if metric.Accuracy < 0 || metric.Accuracy > 1 {
		return fmt.Errorf("%w: accuracy %f out of range [0,1]", ErrInvalidMetric, metric.Accuracy)
	}
	switch metric.TrainingType {
	case model.TrainingTypeFull, model.TrainingTypeIncremental:
	default:
		return fmt.Errorf("%w: unknown training type %q", ErrInvalidMetric, metric.TrainingType)
	}
	return nil
}
