// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
	"github.com/danielhkuo/poll-ledger/models"
)

type VotingHandler struct {
	engine *ledger.Engine
}

func NewVotingHandler(engine *ledger.Engine) *VotingHandler {
	return &VotingHandler{engine: engine}
}

// Vote handles POST /polls/{id}/votes
// One vote per identity per poll; the identity comes from X-Identity-Token.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.OptionIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_index is required")
		return
	}

	poll, err := h.engine.Vote(r.Context(), pollID, *req.OptionIndex, caller)
	if err != nil {
		writeLedgerError(w, err, pollID, "record vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}
