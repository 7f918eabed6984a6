package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_NewRating_Bounds(t *testing.T) {
	testCases := []struct {
		value int
		valid bool
	}{
		{0, false},
		{1, true},
		{7, true},
		{10, true},
		{11, false},
		{-3, false},
	}

	for _, tc := range testCases {
		// act
		rating, err := core.NewRating(tc.value)

		// assert
		if tc.valid {
			assert.NoError(t, err)
			assert.Equal(t, core.Rating(tc.value), rating)
			assert.True(t, rating.IsValid())
		} else {
			assert.ErrorIs(t, err, core.ErrValidationFailed)
			validationErr, ok := core.AsValidationError(err)
			assert.True(t, ok)
			assert.Equal(t, core.FieldRating, validationErr.Field)
		}
	}
}

func Test_NewQuickRating_Bounds(t *testing.T) {
	testCases := []struct {
		value     int
		valid     bool
		hasRating bool
	}{
		{0, true, false},
		{1, true, true},
		{5, true, true},
		{6, false, false},
		{10, false, false},
		{-1, false, false},
	}

	for _, tc := range testCases {
		// act
		quickRating, err := core.NewQuickRating(tc.value)

		// assert
		if tc.valid {
			assert.NoError(t, err)
			assert.Equal(t, tc.hasRating, quickRating.HasRating())
		} else {
			validationErr, ok := core.AsValidationError(err)
			assert.True(t, ok)
			assert.Equal(t, core.FieldQuickRating, validationErr.Field)
		}
	}
}
