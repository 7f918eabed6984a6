package viewedmovies

import (
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

const (
	queryType = "ViewedMovies"
)

// Query represents the intent to read the movies a viewer has seen.
type Query struct {
	ViewerID core.UserID
}

// BuildQuery creates a new Query for the viewer.
func BuildQuery(viewer core.Viewer) Query {
	return Query{
		ViewerID: viewer.ID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
