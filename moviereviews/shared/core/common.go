package core

import (
	"strconv"
	"time"
)

// MovieID identifies a movie of the external metadata catalog.
type MovieID int64

func (id MovieID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMovieID accepts positive decimal ids only.
func ParseMovieID(s string) (MovieID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationError(FieldMovieID, "must be a positive integer")
	}

	return MovieID(id), nil
}

// ReviewID is assigned by the store on creation. It is opaque but sorts by creation time.
type ReviewID = string

// UserID identifies an authenticated user.
type UserID = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// ToEpochMillis is the createdAt representation of reviews.
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
