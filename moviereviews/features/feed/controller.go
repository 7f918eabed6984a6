package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/submitreview"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/togglereaction"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

const (
	logMsgFeedOpened        = "feed: opened"
	logMsgFeedClosed        = "feed: closed"
	logMsgFeedRefreshFailed = "feed: refresh after write failed"
	logAttrMovieID          = "movie_id"
	logAttrViewerID         = "viewer_id"
	logAttrOpenFeeds        = "open_feeds"
	logAttrError            = "error"
)

var (
	// ErrNilReviewStore is returned when the controller is built without a review store.
	ErrNilReviewStore = errors.New("review store must not be nil")

	// ErrNilCommandHandler is returned when a command handler dependency is missing.
	ErrNilCommandHandler = errors.New("command handler must not be nil")
)

// ReviewStore is the subscription side of the review store adapter.
type ReviewStore interface {
	Subscribe(ctx context.Context, movieID core.MovieID, onReviews func([]core.Review)) (*reviewstore.Subscription, error)
}

// Controller opens feeds and runs the write use cases of the review feed.
type Controller struct {
	store             ReviewStore
	submitReview      shell.CommandHandler[submitreview.Command]
	toggleReaction    shell.CommandHandler[togglereaction.Command]
	clock             func() time.Time
	refreshAfterWrite bool
	logger            eventstore.ContextualLogger

	mu    sync.Mutex
	feeds map[core.MovieID]map[*Feed]struct{}
}

// Option defines a functional option for configuring Controller.
type Option func(*Controller)

// WithRefreshAfterWrite toggles re-subscribing the open feeds of a movie after a write to it.
// It is enabled by default.
func WithRefreshAfterWrite(enabled bool) Option {
	return func(c *Controller) {
		c.refreshAfterWrite = enabled
	}
}

// WithClock replaces time.Now as the source of createdAt and event times.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithContextualLogger sets the logger for feed lifecycle logs.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller. The handlers are usually the observable wrappers of
// submitreview.CommandHandler and togglereaction.CommandHandler.
func NewController(
	store ReviewStore,
	submitReview shell.CommandHandler[submitreview.Command],
	toggleReaction shell.CommandHandler[togglereaction.Command],
	options ...Option,
) (*Controller, error) {

	if store == nil {
		return nil, ErrNilReviewStore
	}

	if submitReview == nil || toggleReaction == nil {
		return nil, ErrNilCommandHandler
	}

	c := &Controller{
		store:             store,
		submitReview:      submitReview,
		toggleReaction:    toggleReaction,
		clock:             time.Now,
		refreshAfterWrite: true,
		feeds:             make(map[core.MovieID]map[*Feed]struct{}),
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// ReviewsForMovie opens a live feed of movieID for viewer. The feed is closed by Close or when ctx
// is done.
func (c *Controller) ReviewsForMovie(ctx context.Context, movieID core.MovieID, viewer core.Viewer) (*Feed, error) {
	if movieID <= 0 {
		return nil, core.NewValidationError(core.FieldMovieID, "must be a positive integer")
	}

	f := newFeed(ctx, c, movieID, viewer)

	if err := f.subscribe(c.store); err != nil {
		f.cancel()
		return nil, err
	}

	open := c.remember(f)
	context.AfterFunc(f.ctx, f.Close)

	if c.logger != nil {
		c.logger.DebugContext(ctx, logMsgFeedOpened,
			logAttrMovieID, movieID.String(),
			logAttrViewerID, viewer.ID,
			logAttrOpenFeeds, open)
	}

	return f, nil
}

// SubmitReview publishes a review and returns the id the store assigned.
func (c *Controller) SubmitReview(
	ctx context.Context,
	movie core.MovieSnapshot,
	viewer core.Viewer,
	content string,
	rating int,
) (core.ReviewID, error) {

	result, err := c.submitReview.Handle(ctx, submitreview.BuildCommand(movie, viewer, content, rating, c.clock()))
	if err != nil {
		return "", err
	}

	c.refresh(ctx, movie.ID)

	return result.ResourceID, nil
}

// React toggles viewer's symbol on a review: the held symbol is cleared, any other replaces it.
func (c *Controller) React(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	viewer core.Viewer,
	symbol core.ReactionSymbol,
) error {

	_, err := c.toggleReaction.Handle(ctx, togglereaction.BuildCommand(viewer, movieID, reviewID, symbol, c.clock()))
	if err != nil {
		return err
	}

	c.refresh(ctx, movieID)

	return nil
}

// OpenFeeds returns the number of open feeds of movieID.
func (c *Controller) OpenFeeds(movieID core.MovieID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.feeds[movieID])
}

// Close closes every open feed.
func (c *Controller) Close() {
	c.mu.Lock()
	all := make([]*Feed, 0)
	for _, feeds := range c.feeds {
		for f := range feeds {
			all = append(all, f)
		}
	}
	c.mu.Unlock()

	for _, f := range all {
		f.Close()
	}
}

// refresh re-subscribes every open feed of movieID. A failed re-subscribe keeps the feed on its
// previous subscription.
func (c *Controller) refresh(ctx context.Context, movieID core.MovieID) {
	if !c.refreshAfterWrite {
		return
	}

	for _, f := range c.openFeeds(movieID) {
		if err := f.subscribe(c.store); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, logMsgFeedRefreshFailed,
				logAttrMovieID, movieID.String(),
				logAttrError, err.Error())
		}
	}
}

func (c *Controller) openFeeds(movieID core.MovieID) []*Feed {
	c.mu.Lock()
	defer c.mu.Unlock()

	feeds := make([]*Feed, 0, len(c.feeds[movieID]))
	for f := range c.feeds[movieID] {
		feeds = append(feeds, f)
	}

	return feeds
}

func (c *Controller) remember(f *Feed) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.feeds[f.movieID] == nil {
		c.feeds[f.movieID] = make(map[*Feed]struct{})
	}

	c.feeds[f.movieID][f] = struct{}{}

	return len(c.feeds[f.movieID])
}

func (c *Controller) forget(f *Feed) {
	c.mu.Lock()
	delete(c.feeds[f.movieID], f)
	if len(c.feeds[f.movieID]) == 0 {
		delete(c.feeds, f.movieID)
	}
	open := len(c.feeds[f.movieID])
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.DebugContext(f.ctx, logMsgFeedClosed,
			logAttrMovieID, f.movieID.String(),
			logAttrOpenFeeds, open)
	}
}
