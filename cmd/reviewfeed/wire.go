package main

import (
	"log/slog"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/addtowatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/markmovieasviewed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removefromwatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removeviewing"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/submitreview"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/togglereaction"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/feed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/publicreviews"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/viewedmovies"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/watchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell/config"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell/observable"
	"github.com/AntonStoeckl/reviewfeed/transport/httpapi"
	"github.com/AntonStoeckl/reviewfeed/transport/identity"
)

type app struct {
	controller *feed.Controller
	server     *httpapi.Server
}

func wire(cfg config.Config, logger *slog.Logger, t *telemetry, s *stores) (*app, error) {
	observer := shell.Observer{
		Metrics:          t.metrics,
		Tracing:          t.tracing,
		ContextualLogger: logger,
	}

	adapter, err := reviewstore.NewAdapter(s.reviews, reviewstore.WithContextualLogger(logger))
	if err != nil {
		return nil, err
	}

	submitReview, err := wrapCommand[submitreview.Command](submitreview.NewCommandHandler(adapter), observer)
	if err != nil {
		return nil, err
	}

	toggleReaction, err := wrapCommand[togglereaction.Command](togglereaction.NewCommandHandler(adapter), observer)
	if err != nil {
		return nil, err
	}

	controller, err := feed.NewController(
		adapter,
		submitReview,
		toggleReaction,
		feed.WithRefreshAfterWrite(cfg.Feed.RefreshAfterWrite),
		feed.WithContextualLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	handlers, err := viewerHandlers(s, observer, logger)
	if err != nil {
		controller.Close()
		return nil, err
	}

	tokens, err := identity.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		controller.Close()
		return nil, err
	}

	server, err := httpapi.NewServer(
		controller,
		tokens,
		handlers,
		httpapi.WithContextualLogger(logger),
		httpapi.WithMetricsRegistry(t.registry),
	)
	if err != nil {
		controller.Close()
		return nil, err
	}

	return &app{controller: controller, server: server}, nil
}

// viewerHandlers builds the watchlist, viewing and public review use cases on the event store.
func viewerHandlers(s *stores, observer shell.Observer, logger *slog.Logger) (httpapi.Handlers, error) {
	var handlers httpapi.Handlers
	var err error

	if handlers.AddToWatchlist, err = wrapCommand[addtowatchlist.Command](addtowatchlist.NewCommandHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.RemoveFromWatchlist, err = wrapCommand[removefromwatchlist.Command](removefromwatchlist.NewCommandHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.MarkMovieAsViewed, err = wrapCommand[markmovieasviewed.Command](markmovieasviewed.NewCommandHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.RemoveViewing, err = wrapCommand[removeviewing.Command](removeviewing.NewCommandHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.Watchlist, err = wrapQuery[watchlist.Query, watchlist.Watchlist](watchlist.NewQueryHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	if handlers.ViewedMovies, err = wrapQuery[viewedmovies.Query, viewedmovies.ViewedMovies](viewedmovies.NewQueryHandler(s.events), observer); err != nil {
		return httpapi.Handlers{}, err
	}

	// reviews kept in redis never reach the event store
	if s.reviewsAreES {
		publicReviews := publicreviews.NewQueryHandler(s.events, publicreviews.WithContextualLogger(logger))
		if handlers.PublicReviews, err = wrapQuery[publicreviews.Query, publicreviews.PublicReviews](publicReviews, observer); err != nil {
			return httpapi.Handlers{}, err
		}
	}

	return handlers, nil
}

func wrapCommand[C shell.Command](handler shell.CommandHandler[C], observer shell.Observer) (shell.CommandHandler[C], error) {
	wrapped, err := observable.NewCommandWrapper(handler, observable.WithCommandObserver[C](observer))
	if err != nil {
		return nil, err
	}

	return wrapped, nil
}

func wrapQuery[Q shell.Query, R shell.QueryResult](handler shell.QueryHandler[Q, R], observer shell.Observer) (shell.QueryHandler[Q, R], error) {
	wrapped, err := observable.NewQueryWrapper(handler, observable.WithQueryObserver[Q, R](observer))
	if err != nil {
		return nil, err
	}

	return wrapped, nil
}
