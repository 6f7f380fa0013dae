// Package apperror provides centralized, transport-agnostic error kinds.
//
// Components return wrapped sentinel errors from this package; the HTTP
// layer is the only place that translates them into status codes, via
// HTTPStatus.
package apperror

import (
	"errors"
	"net/http"
)

// Kind-level sentinels. Wrap these with fmt.Errorf("...: %w", ErrX) at
// the point an operation fails so callers can still errors.Is against
// the kind while keeping a specific message.
var (
	// ErrDatabase indicates a row-store failure.
	ErrDatabase = errors.New("database error")

	// ErrSearch indicates a full-text index failure.
	ErrSearch = errors.New("search error")

	// ErrAI indicates a summarizer/answerer failure.
	ErrAI = errors.New("ai error")

	// ErrCrawler indicates a crawl pipeline failure.
	ErrCrawler = errors.New("crawler error")

	// ErrAuth indicates missing or invalid credentials.
	ErrAuth = errors.New("auth error")

	// ErrConfig indicates a configuration problem.
	ErrConfig = errors.New("config error")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a uniqueness or state conflict.
	ErrConflict = errors.New("conflict")
)

// HTTPStatus maps an error to its HTTP status code.
// Unrecognized errors map to 500; the caller is responsible for logging
// the original error before returning a generic body.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
