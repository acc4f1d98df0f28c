// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application. Services wrap these with
// fmt.Errorf("...: %w") so callers can classify failures with errors.Is.
var (
	// ErrValidation is returned when input fails validation, for example an
	// unsupported period type or a malformed date.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a requested entity does not exist: an empty
	// problem catalog or a review submission without a plan.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent writer won a race the caller
	// could not recover from.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrPlanCompleted is returned when a review is submitted for a plan that
	// has already graduated.
	ErrPlanCompleted = errors.New("review plan already completed")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")
)
