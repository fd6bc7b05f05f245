// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
)

type ResultsHandler struct {
	engine *ledger.Engine
}

func NewResultsHandler(engine *ledger.Engine) *ResultsHandler {
	return &ResultsHandler{engine: engine}
}

// GetResults handles GET /polls/{id}/results
// Tallies are public while the poll is open and after it closes.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	results, err := h.engine.Results(r.Context(), pollID)
	if err != nil {
		writeLedgerError(w, err, pollID, "get results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
