package publicreviews

import (
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

const (
	queryType = "PublicReviews"
)

// Query represents the intent to read the newest reviews across all movies.
type Query struct {
	Viewer core.Viewer
	Limit  int // 0 means all
}

// BuildQuery creates a new Query.
func BuildQuery(viewer core.Viewer, limit int) Query {
	return Query{
		Viewer: viewer,
		Limit:  limit,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

func (q Query) validate() error {
	if q.Limit < 0 {
		return core.NewValidationError(core.FieldLimit, "must not be negative")
	}

	return nil
}
