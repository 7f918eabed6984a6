package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	movies := r.PathPrefix("/movies/{movieID}").Subrouter()
	movies.HandleFunc("/reviews", s.reviewsForMovie).Methods(http.MethodGet)
	movies.HandleFunc("/reviews", s.submitReview).Methods(http.MethodPost)
	movies.HandleFunc("/reviews/live", s.liveReviews).Methods(http.MethodGet)
	movies.HandleFunc("/reviews/{reviewID}/reactions", s.react).Methods(http.MethodPost)

	if s.handlers.PublicReviews != nil {
		r.HandleFunc("/reviews", s.publicReviews).Methods(http.MethodGet)
	}

	me := r.PathPrefix("/me").Subrouter()

	if s.handlers.Watchlist != nil {
		me.HandleFunc("/watchlist", s.watchlist).Methods(http.MethodGet)
	}

	if s.handlers.AddToWatchlist != nil {
		me.HandleFunc("/watchlist/{movieID}", s.addToWatchlist).Methods(http.MethodPut)
	}

	if s.handlers.RemoveFromWatchlist != nil {
		me.HandleFunc("/watchlist/{movieID}", s.removeFromWatchlist).Methods(http.MethodDelete)
	}

	if s.handlers.ViewedMovies != nil {
		me.HandleFunc("/viewed", s.viewedMovies).Methods(http.MethodGet)
	}

	if s.handlers.MarkMovieAsViewed != nil {
		me.HandleFunc("/viewed/{movieID}", s.markMovieAsViewed).Methods(http.MethodPut)
	}

	if s.handlers.RemoveViewing != nil {
		me.HandleFunc("/viewed/{movieID}", s.removeViewing).Methods(http.MethodDelete)
	}

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
