package submitreview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// submission is validated in field order, the first failing field is reported. The movie title is
// a display snapshot and may be empty.
type submission struct {
	Content string `validate:"required"`
	Rating  int    `validate:"min=1,max=10"`
	MovieID int64  `validate:"gt=0"`
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

var fieldNames = map[string]string{
	"Content": core.FieldContent,
	"Rating":  core.FieldRating,
	"MovieID": core.FieldMovieID,
}

func (c Command) validate() error {
	err := structValidator.Struct(submission{
		Content: strings.TrimSpace(c.Content),
		Rating:  c.Rating,
		MovieID: int64(c.Movie.ID),
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]

	return core.NewValidationError(fieldNames[first.StructField()], reasonFor(first))
}

func reasonFor(fieldErr validator.FieldError) string {
	switch fieldErr.StructField() {
	case "Content":
		return "must not be empty"
	case "Rating":
		return fmt.Sprintf("must be between %d and %d", core.MinRating, core.MaxRating)
	default:
		return "must be a positive integer"
	}
}
