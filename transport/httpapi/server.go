package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/addtowatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/markmovieasviewed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removefromwatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removeviewing"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/feed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/publicreviews"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/viewedmovies"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/watchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

var (
	// ErrNilFeedController is returned when the server is built without a feed controller.
	ErrNilFeedController = errors.New("feed controller must not be nil")

	// ErrNilViewerResolver is returned when the server is built without a viewer resolver.
	ErrNilViewerResolver = errors.New("viewer resolver must not be nil")
)

// FeedController is the review feed use case surface.
type FeedController interface {
	ReviewsForMovie(ctx context.Context, movieID core.MovieID, viewer core.Viewer) (*feed.Feed, error)
	SubmitReview(ctx context.Context, movie core.MovieSnapshot, viewer core.Viewer, content string, rating int) (core.ReviewID, error)
	React(ctx context.Context, movieID core.MovieID, reviewID core.ReviewID, viewer core.Viewer, symbol core.ReactionSymbol) error
}

// ViewerResolver identifies the viewer of a request.
type ViewerResolver interface {
	ViewerFromRequest(r *http.Request) (core.Viewer, error)
}

// Handlers are the optional viewer and public list use cases. Routes of a nil handler are not served.
type Handlers struct {
	AddToWatchlist      shell.CommandHandler[addtowatchlist.Command]
	RemoveFromWatchlist shell.CommandHandler[removefromwatchlist.Command]
	MarkMovieAsViewed   shell.CommandHandler[markmovieasviewed.Command]
	RemoveViewing       shell.CommandHandler[removeviewing.Command]
	Watchlist           shell.QueryHandler[watchlist.Query, watchlist.Watchlist]
	ViewedMovies        shell.QueryHandler[viewedmovies.Query, viewedmovies.ViewedMovies]
	PublicReviews       shell.QueryHandler[publicreviews.Query, publicreviews.PublicReviews]
}

// Server is the http.Handler of the API.
type Server struct {
	feed       FeedController
	identity   ViewerResolver
	handlers   Handlers
	logger     shell.ContextualLogger
	registry   *prometheus.Registry
	metrics    *httpMetrics
	clock      func() time.Time
	pingPeriod time.Duration
	router     *mux.Router
}

// Option defines a functional option for configuring Server.
type Option func(*Server)

// WithContextualLogger sets the logger for failed requests and websocket errors.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRegistry sets the registry HTTP metrics are registered on and /metrics is served from.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithClock replaces time.Now as the source of command times.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithPingPeriod sets the websocket keepalive period. Clients must answer within 10/9 of it.
func WithPingPeriod(period time.Duration) Option {
	return func(s *Server) {
		s.pingPeriod = period
	}
}

// NewServer creates the Server and its routes.
func NewServer(controller FeedController, identity ViewerResolver, handlers Handlers, options ...Option) (*Server, error) {
	if controller == nil {
		return nil, ErrNilFeedController
	}

	if identity == nil {
		return nil, ErrNilViewerResolver
	}

	s := &Server{
		feed:       controller,
		identity:   identity,
		handlers:   handlers,
		clock:      time.Now,
		pingPeriod: defaultPingPeriod,
	}

	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	s.metrics = newHTTPMetrics(s.registry)
	s.router = s.routes()

	return s, nil
}

// ServeHTTP dispatches to the routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) viewerFrom(r *http.Request) (core.Viewer, error) {
	return s.identity.ViewerFromRequest(r)
}
