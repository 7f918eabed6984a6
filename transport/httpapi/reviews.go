package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/publicreviews"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// reviewsForMovie answers with the current snapshot of the movie's feed.
func (s *Server) reviewsForMovie(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	movieID, err := movieIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := s.feed.ReviewsForMovie(r.Context(), movieID, viewer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	s.writeJSON(w, r, http.StatusOK, snapshotResponseFrom(f.Current()))
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	movieID, err := movieIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var request submitReviewRequest
	if err = decodeBody(w, r, &request); err != nil {
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

	reviewID, err := s.feed.SubmitReview(r.Context(), movie, viewer, request.Content, request.Rating)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, createdResponse{ID: reviewID})
}

func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	movieID, err := movieIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var request reactRequest
	if err = decodeBody(w, r, &request); err != nil {
		s.writeError(w, r, err)
		return
	}

	symbol, err := core.ParseReactionSymbol(request.Symbol)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err = s.feed.React(r.Context(), movieID, mux.Vars(r)["reviewID"], viewer, symbol); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) publicReviews(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewerFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	limit, err := limitFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.handlers.PublicReviews.Handle(r.Context(), publicreviews.BuildQuery(viewer, limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, publicReviewsResponseFrom(result))
}
