package httpapi

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/transport/identity"
)

const (
	maxBodyBytes = 1 << 20

	logMsgRequestFailed = "httpapi: request failed"
	logMsgEncodeFailed  = "httpapi: encoding response failed"
	logAttrMethod       = "method"
	logAttrPath         = "path"
	logAttrStatus       = "status"
	logAttrError        = "error"
)

// ErrMalformedRequest marks unparsable bodies, path segments and query parameters.
var ErrMalformedRequest = errors.New("malformed request")

var bodyJSON = jsoniter.ConfigCompatibleWithStandardLibrary

var requestValidator = newRequestValidator()

// requestFieldNames maps JSON names of request fields to the fields ValidationError reports.
var requestFieldNames = map[string]string{
	"movieTitle":  core.FieldMovieTitle,
	"symbol":      core.FieldReaction,
	"quickRating": core.FieldQuickRating,
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// StatusFor maps an error of any use case to its HTTP status.
func StatusFor(err error) int {
	var validationErr *core.ValidationError

	switch {
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrAuthenticationRequired), errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrStoreUnavailable),
		errors.Is(err, eventstore.ErrQueryingEventsFailed),
		errors.Is(err, eventstore.ErrAppendingEventFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := bodyJSON.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.ErrorContext(r.Context(), logMsgEncodeFailed, logAttrPath, r.URL.Path, logAttrError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := errorResponse{Error: http.StatusText(status)}

	switch status {
	case http.StatusUnprocessableEntity:
		if validationErr, ok := core.AsValidationError(err); ok {
			body.Error = validationErr.Error()
			body.Field = validationErr.Field
		}
	case http.StatusBadRequest:
		body.Error = err.Error()
	}

	if s.logger != nil {
		args := []any{
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrStatus, status,
			logAttrError, err.Error(),
		}

		if status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), logMsgRequestFailed, args...)
		} else {
			s.logger.DebugContext(r.Context(), logMsgRequestFailed, args...)
		}
	}

	s.writeJSON(w, r, status, body)
}

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.Join(ErrMalformedRequest, err)
	}

	if err = bodyJSON.Unmarshal(body, dst); err != nil {
		return errors.Join(ErrMalformedRequest, err)
	}

	return validateRequest(dst)
}

func validateRequest(request any) error {
	err := requestValidator.Struct(request)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Join(ErrMalformedRequest, err)
	}

	first := fieldErrs[0]
	field, known := requestFieldNames[first.Field()]
	if !known {
		field = first.Field()
	}

	return core.NewValidationError(field, "fails the "+first.Tag()+" rule")
}

// movieIDFrom answers 400 for a path segment that is not a number and 422 for one that is not positive.
func movieIDFrom(r *http.Request) (core.MovieID, error) {
	raw := mux.Vars(r)["movieID"]
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return 0, errors.Join(ErrMalformedRequest, err)
	}

	return core.ParseMovieID(raw)
}

func limitFrom(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(ErrMalformedRequest, err)
	}

	return limit, nil
}
