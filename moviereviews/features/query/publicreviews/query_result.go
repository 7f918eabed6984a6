package publicreviews

import (
	"github.com/AntonStoeckl/reviewfeed/moviereviews/aggregator"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Entry pairs a review with its reaction summary for the querying viewer.
type Entry struct {
	Review  core.Review
	Summary aggregator.ReactionSummary
}

// PublicReviews is the query result.
type PublicReviews struct {
	Entries        []Entry
	Count          int
	Total          int
	Skipped        map[core.ReviewID]error // reviews left out, with the reason
	SequenceNumber uint
}

// GetSequenceNumber returns the highest sequence number included in the projection.
func (p PublicReviews) GetSequenceNumber() uint {
	return p.SequenceNumber
}
