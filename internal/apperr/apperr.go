// Package apperr defines the error taxonomy shared across stores,
// services and HTTP handlers.
package apperr

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Error class tags. Handlers map these to HTTP status codes; everything
// untagged is treated as an internal error.
var (
	TagValidation = goerr.NewTag("validation")
	TagAuth       = goerr.NewTag("auth")
	TagForbidden  = goerr.NewTag("forbidden")
	TagNotFound   = goerr.NewTag("not_found")
	TagStorage    = goerr.NewTag("storage")
)

// Validation returns a new validation error (missing or malformed input).
func Validation(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagValidation))...)
}

// Auth returns a new authentication error (bad credential or token).
func Auth(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagAuth))...)
}

// Forbidden returns a new authorization error (role insufficient).
func Forbidden(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagForbidden))...)
}

// NotFound returns a new unknown-identifier error.
func NotFound(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagNotFound))...)
}

// Storage wraps a persistence I/O failure.
func Storage(cause error, msg string, options ...goerr.Option) error {
	return goerr.Wrap(cause, msg, append(options, goerr.T(TagStorage))...)
}

// HTTPStatus maps an error to the HTTP status code of its class.
func HTTPStatus(err error) int {
	switch {
	case goerr.HasTag(err, TagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, TagAuth):
		return http.StatusUnauthorized
	case goerr.HasTag(err, TagForbidden):
		return http.StatusForbidden
	case goerr.HasTag(err, TagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, TagStorage):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
