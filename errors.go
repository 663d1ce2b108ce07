package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexsward/marquee/model"
	"go.uber.org/zap"
)

type errorKind int

const (
	kindMalformedRequest errorKind = iota
	kindMovieNotFound
	kindRouteNotFound
	kindMethodNotAllowed
	kindRateLimited
	// kindUnknown covers anything the handlers did not anticipate: a
	// recovered panic or a failing backing store.
	kindUnknown
)

// apiError is the only error type handlers hand to writeError. Its message
// is what the client sees; cause is logged and never sent.
type apiError struct {
	kind   errorKind
	detail string
	cause  error
}

func failedToParseRequest(detail string) *apiError {
	return &apiError{kind: kindMalformedRequest, detail: detail}
}

func movieNotFound(id model.MovieId) *apiError {
	return &apiError{kind: kindMovieNotFound, detail: id.String()}
}

func unknownError(cause error) *apiError {
	return &apiError{kind: kindUnknown, cause: cause}
}

func (e *apiError) Error() string {
	switch e.kind {
	case kindMalformedRequest:
		return fmt.Sprintf("Failed to parse request: %s", e.detail)
	case kindMovieNotFound:
		return fmt.Sprintf("Movie %s not found", e.detail)
	case kindRouteNotFound:
		return fmt.Sprintf("Route %s not found", e.detail)
	case kindMethodNotAllowed:
		return fmt.Sprintf("Method %s not allowed", e.detail)
	case kindRateLimited:
		return "Rate limit exceeded"
	}
	return "Unknown error"
}

func (e *apiError) Unwrap() error {
	return e.cause
}

func (e *apiError) Status() int {
	switch e.kind {
	case kindMalformedRequest:
		return http.StatusBadRequest
	case kindMovieNotFound, kindRouteNotFound:
		return http.StatusNotFound
	case kindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case kindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError renders err as {"error": "..."}. Anything that is not an
// *apiError is reported as unknown.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		apiErr = unknownError(err)
	}

	status := apiErr.Status()
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(apiErr.cause),
		)
	}
	writeJSON(w, r, status, errorResponse{Error: apiErr.Error()})
}

func (s *service) routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &apiError{kind: kindRouteNotFound, detail: r.URL.Path})
}

func (s *service) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &apiError{kind: kindMethodNotAllowed, detail: r.Method})
}

func (s *service) rateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &apiError{kind: kindRateLimited})
}
