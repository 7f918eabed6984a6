package reviewstore

import (
	"context"
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

var documentJSON = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrMalformedRecord is the reason a record was skipped.
	ErrMalformedRecord = errors.New("malformed review record")

	errMissingID = errors.New("id is missing")
)

// Translate converts raw records into reviews in backend order. Malformed records are skipped and
// unknown reaction symbols are dropped, both with a warning on logger (which may be nil).
func Translate(
	ctx context.Context,
	movieID core.MovieID,
	records []RawRecord,
	logger eventstore.ContextualLogger,
) []core.Review {
	reviews := make([]core.Review, 0, len(records))

	for _, record := range records {
		review, err := translateRecord(ctx, movieID, record, logger)
		if err != nil {
			if logger != nil {
				logger.WarnContext(ctx, logMsgSkippedRecord,
					logAttrMovieID, movieID.String(),
					logAttrReviewID, record.ID,
					logAttrError, err.Error())
			}

			continue
		}

		reviews = append(reviews, review)
	}

	return reviews
}

func translateRecord(
	ctx context.Context,
	movieID core.MovieID,
	record RawRecord,
	logger eventstore.ContextualLogger,
) (core.Review, error) {
	if record.ID == "" {
		return core.Review{}, errors.Join(ErrMalformedRecord, errMissingID)
	}

	document, err := UnmarshalDocument(record.Data)
	if err != nil {
		return core.Review{}, errors.Join(ErrMalformedRecord, err)
	}

	displayName := document.Username
	if displayName == "" {
		displayName = core.AnonymousDisplayName
	}

	review := core.Review{
		ID:                record.ID,
		MovieID:           movieID,
		MovieTitle:        document.MovieTitle,
		AuthorID:          document.UserID,
		AuthorDisplayName: displayName,
		AuthorAvatarURL:   document.UserAvatar,
		Content:           strings.TrimSpace(document.Content),
		Rating:            core.Rating(document.Rating),
		CreatedAt:         document.CreatedAt,
	}

	if err = review.Validate(); err != nil {
		return core.Review{}, errors.Join(ErrMalformedRecord, err)
	}

	review.Reactions = translateReactions(ctx, record.ID, document.Reactions, logger)

	return review, nil
}

func translateReactions(
	ctx context.Context,
	reviewID core.ReviewID,
	raw map[string]string,
	logger eventstore.ContextualLogger,
) map[core.UserID]core.ReactionSymbol {
	reactions := make(map[core.UserID]core.ReactionSymbol, len(raw))

	for userID, rawSymbol := range raw {
		if userID == "" || rawSymbol == "" {
			continue
		}

		symbol, err := core.ParseReactionSymbol(rawSymbol)
		if err != nil {
			if logger != nil {
				logger.WarnContext(ctx, logMsgDroppedReaction,
					logAttrReviewID, reviewID,
					logAttrUserID, userID,
					logAttrSymbol, rawSymbol)
			}

			continue
		}

		reactions[userID] = symbol
	}

	return reactions
}
