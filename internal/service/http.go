// Package service exposes the engine's operations over HTTP JSON endpoints.
// Handlers validate and authorize the request, call the store, map domain
// errors to status codes and fire post-commit notifications. All ownership
// and sharing logic lives in the storage layer.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/listmasterapp/listmaster/internal/metrics"
	"github.com/listmasterapp/listmaster/internal/middleware"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// statusMessage is the uniform error payload.
type statusMessage struct {
	Message string `json:"message"`
}

// decodeJSON reads the request body into v. A malformed body is an
// InvalidRequest, reported before any store access.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, statusMessage{Message: "malformed request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// authorized checks the token-subject-equals-resource-owner precondition:
// the authenticated user must be the user named in the request.
func authorized(r *http.Request, userID string) bool {
	return userID != "" && middleware.GetUserID(r.Context()) == userID
}

// writeDomainError maps a storage/domain error to an HTTP status and records
// the operation outcome. Store internals never leak: anything outside the
// domain taxonomy is reported as an opaque failure.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	var status int
	var outcome string

	switch {
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrListNotFound),
		errors.Is(err, storage.ErrGroupNotFound),
		errors.Is(err, storage.ErrMemberNotFound):
		status, outcome = http.StatusNotFound, "not_found"
	case errors.Is(err, storage.ErrEmailTaken),
		errors.Is(err, storage.ErrDuplicateID):
		status, outcome = http.StatusConflict, "conflict"
	case errors.Is(err, storage.ErrNotOwner):
		status, outcome = http.StatusForbidden, "forbidden"
	default:
		status, outcome = http.StatusInternalServerError, "error"
	}

	metrics.Record(op, outcome)
	if status == http.StatusInternalServerError {
		slog.Error("operation failed", "operation", op, "error", err)
		writeJSON(w, status, statusMessage{Message: "operation failed"})
		return
	}
	writeJSON(w, status, statusMessage{Message: err.Error()})
}

func recordOK(op string) {
	metrics.Record(op, "ok")
}

func writeUnauthorized(w http.ResponseWriter, op string) {
	metrics.Record(op, "forbidden")
	writeJSON(w, http.StatusUnauthorized, statusMessage{Message: "token subject does not match request user"})
}

func writeInvalid(w http.ResponseWriter, op, msg string) {
	metrics.Record(op, "invalid")
	writeJSON(w, http.StatusBadRequest, statusMessage{Message: msg})
}
