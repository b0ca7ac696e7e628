// Package handlers implements the JSON HTTP handlers for the DIYHub API:
// authentication, the project feed, and the project mutation endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"diyhub/internal/store"
)

// apiError is a request failure with an HTTP status. Every failure is
// terminal for the request; there are no retries anywhere.
type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }

func errValidation(msg string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: msg}
}

// errCredentials covers both unknown email and wrong password with one
// identical message, so responses carry no account-enumeration signal.
func errCredentials() *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: "Invalid credentials"}
}

func errConflict(msg string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: msg}
}

func errForbidden(msg string) *apiError {
	return &apiError{Status: http.StatusForbidden, Message: msg}
}

func errNotFound(msg string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: msg}
}

// writeJSON serializes data with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError maps an error to its JSON response. Typed apiErrors surface
// their message; store misses become 404s; anything else is a 500 whose
// detail is logged but never sent to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errNotFound("Project not found"))
		return
	}

	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, &apiError{Message: "Server error"})
}

// writeRawJSON writes an already-serialized JSON payload.
func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errValidation("Invalid request body")
	}
	return nil
}
