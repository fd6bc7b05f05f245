// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
)

// StatusFor maps a ledger error to an HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidOptionIndex):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyExists),
		errors.Is(err, ledger.ErrNotInitialized),
		errors.Is(err, ledger.ErrDuplicateCandidate),
		errors.Is(err, ledger.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError reports err to the client. Store and codec failures are
// logged and hidden behind a generic message.
func writeLedgerError(w http.ResponseWriter, err error, pollID, action string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("ledger operation failed", "action", action, "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, status, "Failed to "+action)
		return
	}

	slog.Info("ledger operation rejected", "action", action, "poll_id", pollID, "error", err)
	middleware.CodedErrorResponse(w, status, err.Error(), ledger.Code(err))
}

// callerOrReject returns the verified caller or writes a 401
func callerOrReject(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "identity token required")
		return "", false
	}
	return caller, true
}
