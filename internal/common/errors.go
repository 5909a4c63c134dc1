// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound        = errors.New("not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrDuplicateEntry  = errors.New("duplicate entry")

	// Categorization errors.
	ErrInvalidCategory  = errors.New("invalid category")
	ErrModelUnavailable = errors.New("no trained model available")

	// Training errors.
	ErrTrainingInProgress = errors.New("training already running")
	ErrTrainingFailed     = errors.New("training failed")
	ErrInsufficientData   = errors.New("insufficient training data")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
