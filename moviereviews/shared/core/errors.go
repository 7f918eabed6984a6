package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned for any write attempted without an authenticated viewer.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrStoreUnavailable wraps every failure of the backing review store.
	ErrStoreUnavailable = errors.New("review store unavailable")

	// ErrValidationFailed is matched by every ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// Fields named by ValidationError.
const (
	FieldContent     = "content"
	FieldRating      = "rating"
	FieldReaction    = "reaction"
	FieldQuickRating = "quick_rating"
	FieldMovieID     = "movie_id"
	FieldMovieTitle  = "movie_title"
	FieldReviewID    = "review_id"
	FieldLimit       = "limit"
)

// ValidationError tells the caller which input was rejected, so "review text" and "rating"
// problems can be reported differently.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidationFailed, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidationFailed) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// AsValidationError unwraps err to a ValidationError, if it contains one.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}

	return nil, false
}
