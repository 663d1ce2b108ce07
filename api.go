package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/alexsward/marquee/model"
)

const maxBodyBytes = 1 << 20

// Wire types. These never leave the HTTP layer; model.Movie is converted
// at the boundary in both directions.

type postMovieRequest struct {
	Name    string `json:"name"`
	Year    uint16 `json:"year"`
	WasGood bool   `json:"was_good"`
}

func (r postMovieRequest) movie() model.Movie {
	return model.Movie{
		Name:    r.Name,
		Year:    r.Year,
		WasGood: r.WasGood,
	}
}

type postMovieResponse struct {
	Id string `json:"id"`
}

func newPostMovieResponse(id model.MovieId) postMovieResponse {
	return postMovieResponse{Id: id.String()}
}

type getMovieRequest struct {
	Id model.MovieId
}

type getMovieResponse struct {
	Name    string `json:"name"`
	Year    uint16 `json:"year"`
	WasGood bool   `json:"was_good"`
}

func newGetMovieResponse(m model.Movie) getMovieResponse {
	return getMovieResponse{
		Name:    m.Name,
		Year:    m.Year,
		WasGood: m.WasGood,
	}
}

// readPostMovieRequest decodes a POST body. Every field is required, keys
// match exactly (no case folding) and unknown fields are ignored.
func readPostMovieRequest(w http.ResponseWriter, r *http.Request) (postMovieRequest, error) {
	if err := requireJSONContentType(r); err != nil {
		return postMovieRequest{}, err
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&fields); err != nil {
		return postMovieRequest{}, failedToParseRequest(describeDecodeError(err))
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return postMovieRequest{}, failedToParseRequest("body must contain a single JSON object")
	}

	var req postMovieRequest
	if err := decodeField(fields, "name", &req.Name); err != nil {
		return postMovieRequest{}, err
	}
	if err := decodeField(fields, "year", &req.Year); err != nil {
		return postMovieRequest{}, err
	}
	if err := decodeField(fields, "was_good", &req.WasGood); err != nil {
		return postMovieRequest{}, err
	}
	return req, nil
}

// decodeField unmarshals fields[key] into dst. A missing key or an explicit
// null is reported as a missing field.
func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return failedToParseRequest(fmt.Sprintf("missing field `%s`", key))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return failedToParseRequest(fmt.Sprintf("invalid type for field `%s`: cannot use %s as %s", key, typeErr.Value, typeErr.Type))
		}
		return failedToParseRequest(fmt.Sprintf("invalid value for field `%s`: %s", key, err))
	}
	return nil
}

func requireJSONContentType(r *http.Request) error {
	const expected = "Expected request with `Content-Type: application/json`"

	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return failedToParseRequest(expected)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return failedToParseRequest(expected)
	}
	if mt == "application/json" || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json")) {
		return nil
	}
	return failedToParseRequest(expected)
}

func describeDecodeError(err error) string {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d: %s", syntaxErr.Offset, syntaxErr)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON: unexpected end of body"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("invalid type: expected an object, got %s", typeErr.Value)
	case errors.Is(err, io.EOF):
		return "body is empty"
	case errors.As(err, &maxBytesErr):
		return fmt.Sprintf("body exceeds %d bytes", maxBytesErr.Limit)
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, unknownError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
