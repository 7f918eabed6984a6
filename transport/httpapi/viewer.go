package httpapi

import (
	"net/http"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/addtowatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/markmovieasviewed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removefromwatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removeviewing"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/viewedmovies"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/watchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

func (s *Server) watchlist(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.handlers.Watchlist.Handle(r.Context(), watchlist.BuildQuery(viewer))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, watchlistResponseFrom(result))
}

func (s *Server) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	viewer, movieID, ok := s.viewerAndMovie(w, r)
	if !ok {
		return
	}

	var request watchlistRequest
	if err := decodeBody(w, r, &request); err != nil {
		s.writeError(w, r, err)
		return
	}

	movie := core.MovieSnapshot{
		ID:          movieID,
		Title:       request.MovieTitle,
		PosterPath:  request.PosterPath,
		ReleaseDate: request.ReleaseDate,
		VoteAverage: request.VoteAverage,
	}

	result, err := s.handlers.AddToWatchlist.Handle(r.Context(), addtowatchlist.BuildCommand(viewer, movie, s.clock()))
	s.writeCommandOutcome(w, r, result, err)
}

func (s *Server) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	viewer, movieID, ok := s.viewerAndMovie(w, r)
	if !ok {
		return
	}

	result, err := s.handlers.RemoveFromWatchlist.Handle(r.Context(), removefromwatchlist.BuildCommand(viewer, movieID, s.clock()))
	s.writeCommandOutcome(w, r, result, err)
}

func (s *Server) viewedMovies(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.handlers.ViewedMovies.Handle(r.Context(), viewedmovies.BuildQuery(viewer))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, viewedResponseFrom(result))
}

func (s *Server) markMovieAsViewed(w http.ResponseWriter, r *http.Request) {
	viewer, movieID, ok := s.viewerAndMovie(w, r)
	if !ok {
		return
	}

	var request markViewedRequest
	if err := decodeBody(w, r, &request); err != nil {
		s.writeError(w, r, err)
		return
	}

	command := markmovieasviewed.BuildCommand(viewer, movieID, core.QuickRating(request.QuickRating), s.clock())
	result, err := s.handlers.MarkMovieAsViewed.Handle(r.Context(), command)
	s.writeCommandOutcome(w, r, result, err)
}

func (s *Server) removeViewing(w http.ResponseWriter, r *http.Request) {
	viewer, movieID, ok := s.viewerAndMovie(w, r)
	if !ok {
		return
	}

	result, err := s.handlers.RemoveViewing.Handle(r.Context(), removeviewing.BuildCommand(viewer, movieID, s.clock()))
	s.writeCommandOutcome(w, r, result, err)
}

func (s *Server) viewerAndMovie(w http.ResponseWriter, r *http.Request) (core.Viewer, core.MovieID, bool) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return core.Viewer{}, 0, false
	}

	movieID, err := movieIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return core.Viewer{}, 0, false
	}

	return viewer, movieID, true
}

// writeCommandOutcome answers 204 both for a change and for an idempotent no-op.
func (s *Server) writeCommandOutcome(w http.ResponseWriter, r *http.Request, result shell.HandlerResult, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result.Idempotent {
		w.Header().Set("X-Idempotent", "true")
	}

	w.WriteHeader(http.StatusNoContent)
}
