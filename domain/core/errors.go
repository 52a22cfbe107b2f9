package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrEventNotFound   = fmt.Errorf("%w: event", ErrNotFound)
	ErrPuzzleNotFound  = fmt.Errorf("%w: puzzle", ErrNotFound)
	ErrAttemptNotFound = fmt.Errorf("%w: attempt", ErrNotFound)

	// Generation errors
	ErrGenerationFailed   = errors.New("event generation failed")
	ErrSchemaViolation    = errors.New("model output violated schema")
	ErrInsufficientYield  = errors.New("too few events survived validation")
	ErrProvidersExhausted = errors.New("primary and fallback models exhausted")

	// Puzzle composition errors
	ErrNotEnoughCandidates = errors.New("not enough candidate events")
	ErrEmptyPuzzle         = errors.New("puzzle has no events")
	ErrDuplicateEventIDs   = errors.New("duplicate event ids in ground truth")

	// Attempt errors
	ErrAttemptExists          = errors.New("attempt already recorded for this puzzle")
	ErrOrderingLengthMismatch = errors.New("ordering does not cover every puzzle event")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewGenerationError(year int, err error) error {
	return fmt.Errorf("%w for year %d: %v", ErrGenerationFailed, year, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSchemaViolation(err error) bool {
	return errors.Is(err, ErrSchemaViolation)
}

func IsInsufficientYield(err error) bool {
	return errors.Is(err, ErrInsufficientYield)
}
