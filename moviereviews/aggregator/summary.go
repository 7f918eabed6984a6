package aggregator

import (
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// ReactionSummary holds the per-symbol counts of one review and the viewer's own reaction.
// Symbols nobody chose are absent from CountsByType.
type ReactionSummary struct {
	CountsByType   map[core.ReactionSymbol]int
	ViewerReaction core.ReactionSymbol
}

// ReactionCount is one entry of ReactionSummary.Ordered.
type ReactionCount struct {
	Symbol core.ReactionSymbol
	Count  int
}

// Summarize counts reactions in a single pass. NoReaction and unknown symbols are not counted, so
// for reactions read through the review store the counts sum to len(reactions).
func Summarize(reactions map[core.UserID]core.ReactionSymbol, viewerID core.UserID) ReactionSummary {
	summary := ReactionSummary{
		CountsByType:   make(map[core.ReactionSymbol]int),
		ViewerReaction: core.NoReaction,
	}

	for userID, symbol := range reactions {
		if !symbol.IsValid() {
			continue
		}

		summary.CountsByType[symbol]++

		if viewerID != "" && userID == viewerID {
			summary.ViewerReaction = symbol
		}
	}

	return summary
}

// SummarizeReview is Summarize for review as seen by viewer.
func SummarizeReview(review core.Review, viewer core.Viewer) ReactionSummary {
	return Summarize(review.Reactions, viewer.ID)
}

// Ordered returns the non-zero counts in canonical symbol order.
func (s ReactionSummary) Ordered() []ReactionCount {
	ordered := make([]ReactionCount, 0, len(s.CountsByType))

	for _, symbol := range core.ReactionSymbols() {
		if count := s.CountsByType[symbol]; count > 0 {
			ordered = append(ordered, ReactionCount{Symbol: symbol, Count: count})
		}
	}

	return ordered
}

// Total is the number of counted reactions.
func (s ReactionSummary) Total() int {
	total := 0
	for _, count := range s.CountsByType {
		total += count
	}

	return total
}

// CountOf returns the count for symbol, 0 if nobody chose it.
func (s ReactionSummary) CountOf(symbol core.ReactionSymbol) int {
	return s.CountsByType[symbol]
}

// HasViewerReacted reports whether the viewer holds a reaction on the review.
func (s ReactionSummary) HasViewerReacted() bool {
	return !s.ViewerReaction.IsNone()
}
