package core

import "fmt"

const (
	MinRating = 1
	MaxRating = 10

	NoQuickRating  = 0
	MinQuickRating = 1
	MaxQuickRating = 5
)

// Rating is the score of a full review, 1..10.
type Rating int

// NewRating rejects values outside 1..10.
func NewRating(value int) (Rating, error) {
	if value < MinRating || value > MaxRating {
		return 0, NewValidationError(FieldRating, fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}

	return Rating(value), nil
}

// IsValid reports whether r is within 1..10.
func (r Rating) IsValid() bool {
	return r >= MinRating && r <= MaxRating
}

// QuickRating is the star rating given when marking a movie as viewed, 1..5, with 0 meaning none.
// It is a different scale from Rating.
type QuickRating int

// NewQuickRating accepts 0 (none) or 1..5.
func NewQuickRating(value int) (QuickRating, error) {
	if value != NoQuickRating && (value < MinQuickRating || value > MaxQuickRating) {
		return 0, NewValidationError(
			FieldQuickRating,
			fmt.Sprintf("must be %d (none) or between %d and %d", NoQuickRating, MinQuickRating, MaxQuickRating),
		)
	}

	return QuickRating(value), nil
}

// HasRating reports whether a star rating was given.
func (q QuickRating) HasRating() bool {
	return q != NoQuickRating
}

// IsValid reports whether q is 0 or within 1..5.
func (q QuickRating) IsValid() bool {
	return q == NoQuickRating || (q >= MinQuickRating && q <= MaxQuickRating)
}
