package esbackend

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

var errNoMovieID = errors.New("payload has no MovieID")

var reviewEventTypes = []string{
	core.ReviewWrittenEventType,
	core.ReactionSetEventType,
	core.ReactionClearedEventType,
}

// BuildMovieFilter matches every review and reaction event of one movie.
func BuildMovieFilter(movieID core.MovieID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(reviewEventTypes[0], reviewEventTypes[1:]...).
		AndAnyPredicateOf(eventstore.PInt("MovieID", int64(movieID))).
		Finalize()
}

// load is the reviewstore.Loader of this backend. Feeds read with strong consistency so that a
// write is visible on the reload its own notification triggers.
func (b *Backend) load(ctx context.Context, movieID core.MovieID) ([]reviewstore.RawRecord, error) {
	storableEvents, _, err := b.store.Query(eventstore.WithStrongConsistency(ctx), BuildMovieFilter(movieID))
	if err != nil {
		return nil, err
	}

	return b.project(ctx, storableEvents)
}

// project folds review events into one document per review, in the order the reviews were written.
// Reactions on a review this fold has not seen are ignored.
func (b *Backend) project(ctx context.Context, storableEvents eventstore.StorableEvents) ([]reviewstore.RawRecord, error) {
	order := make([]core.ReviewID, 0)
	documents := make(map[core.ReviewID]*reviewstore.Document)

	for _, storableEvent := range storableEvents {
		domainEvent, err := shell.DomainEventFrom(storableEvent)
		if err != nil {
			b.logSkipped(ctx, storableEvent, err)
			continue
		}

		switch e := domainEvent.(type) {
		case core.ReviewWritten:
			if _, exists := documents[e.ReviewID]; exists {
				continue
			}

			order = append(order, e.ReviewID)
			documents[e.ReviewID] = &reviewstore.Document{
				MovieID:    int64(e.MovieID),
				MovieTitle: e.MovieTitle,
				Content:    e.Content,
				Rating:     e.Rating,
				Username:   e.AuthorDisplayName,
				UserID:     e.AuthorID,
				UserAvatar: e.AuthorAvatarURL,
				CreatedAt:  e.CreatedAt,
				Reactions:  make(map[string]string),
			}

		case core.ReactionSet:
			if document, ok := documents[e.ReviewID]; ok {
				document.Reactions[e.UserID] = e.Symbol.Emoji()
			}

		case core.ReactionCleared:
			if document, ok := documents[e.ReviewID]; ok {
				delete(document.Reactions, e.UserID)
			}
		}
	}

	records := make([]reviewstore.RawRecord, 0, len(order))

	for _, reviewID := range order {
		data, err := reviewstore.MarshalDocument(*documents[reviewID])
		if err != nil {
			return nil, err
		}

		records = append(records, reviewstore.RawRecord{ID: reviewID, Data: data})
	}

	return records, nil
}

func movieIDOf(storableEvent eventstore.StorableEvent) (core.MovieID, bool) {
	var payload struct {
		MovieID core.MovieID
	}

	if err := jsoniter.ConfigFastest.Unmarshal(storableEvent.PayloadJSON, &payload); err != nil {
		return 0, false
	}

	return payload.MovieID, payload.MovieID > 0
}
