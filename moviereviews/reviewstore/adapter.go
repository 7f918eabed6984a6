package reviewstore

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

var (
	// ErrNilBackend is returned by NewAdapter without a backend.
	ErrNilBackend = errors.New("review store backend must not be nil")

	errEmptyReviewID = errors.New("backend returned an empty review id")
)

// Adapter translates between the backend's raw records and core.Review.
type Adapter struct {
	backend Backend
	logger  eventstore.ContextualLogger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithContextualLogger sets the logger for skipped records and write operations.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates an Adapter over backend.
func NewAdapter(backend Backend, options ...Option) (*Adapter, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	a := &Adapter{backend: backend}

	for _, option := range options {
		option(a)
	}

	return a, nil
}

// Subscribe calls onReviews with the reviews of movieID, once before it returns and then after
// every change, in backend order. A movie without reviews yields an empty slice.
func (a *Adapter) Subscribe(
	ctx context.Context,
	movieID core.MovieID,
	onReviews func([]core.Review),
) (*Subscription, error) {
	sub := newSubscription()

	unsubscribe, err := a.backend.SubscribeReviews(ctx, movieID, func(records []RawRecord) {
		if !sub.Active() {
			return
		}

		reviews := Translate(ctx, movieID, records, a.logger)

		if !sub.Active() {
			return
		}

		onReviews(reviews)
	})
	if err != nil {
		sub.alive.Store(false)
		return nil, errors.Join(core.ErrStoreUnavailable, err)
	}

	sub.attach(unsubscribe)
	a.debug(ctx, logMsgSubscribed, logAttrMovieID, movieID.String())

	return sub, nil
}

// PushReview writes a new review and returns the id the store assigned.
func (a *Adapter) PushReview(ctx context.Context, draft core.ReviewDraft) (core.ReviewID, error) {
	reviewID, err := a.backend.PushReview(ctx, draft.MovieID, DocumentFromDraft(draft))
	if err != nil {
		return "", errors.Join(core.ErrStoreUnavailable, err)
	}

	if reviewID == "" {
		return "", errors.Join(core.ErrStoreUnavailable, errEmptyReviewID)
	}

	a.debug(ctx, logMsgReviewPushed, logAttrMovieID, draft.MovieID.String(), logAttrReviewID, reviewID)

	return reviewID, nil
}

// ReadReaction returns userID's reaction on a review, NoReaction if there is none. A stored value
// that is not a known symbol reads as NoReaction.
func (a *Adapter) ReadReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
) (core.ReactionSymbol, error) {
	raw, err := a.backend.ReadReaction(ctx, movieID, reviewID, userID)
	if err != nil {
		return core.NoReaction, errors.Join(core.ErrStoreUnavailable, err)
	}

	if raw == "" {
		return core.NoReaction, nil
	}

	symbol, parseErr := core.ParseReactionSymbol(raw)
	if parseErr != nil {
		if a.logger != nil {
			a.logger.WarnContext(ctx, logMsgUnknownStoredValue,
				logAttrReviewID, reviewID,
				logAttrUserID, userID,
				logAttrSymbol, raw)
		}

		return core.NoReaction, nil
	}

	return symbol, nil
}

// WriteReaction replaces userID's reaction slot with symbol, NoReaction clears it.
func (a *Adapter) WriteReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
	symbol core.ReactionSymbol,
) error {
	if !symbol.IsNone() && !symbol.IsValid() {
		return core.NewValidationError(core.FieldReaction, "is not a known reaction symbol")
	}

	if err := a.backend.WriteReaction(ctx, movieID, reviewID, userID, symbol.Emoji()); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	a.debug(ctx, logMsgReactionWritten,
		logAttrMovieID, movieID.String(),
		logAttrReviewID, reviewID,
		logAttrUserID, userID,
		logAttrSymbol, symbol.String())

	return nil
}

func (a *Adapter) debug(ctx context.Context, msg string, args ...any) {
	if a.logger != nil {
		a.logger.DebugContext(ctx, msg, args...)
	}
}
