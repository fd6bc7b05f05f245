// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/poll-ledger/auth"
	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
	"github.com/danielhkuo/poll-ledger/models"
)

type PollHandler struct {
	engine *ledger.Engine
}

func NewPollHandler(engine *ledger.Engine) *PollHandler {
	return &PollHandler{engine: engine}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Generate poll ID when the client does not pick one
	if req.ID == "" {
		pollID, err := auth.GenerateID(16)
		if err != nil {
			slog.Error("failed to generate poll ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		req.ID = pollID
	}

	poll, err := h.engine.CreatePoll(r.Context(), req.ID, req.Question, req.Candidates, caller)
	if err != nil {
		writeLedgerError(w, err, req.ID, "create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	poll, err := h.engine.GetPoll(r.Context(), pollID)
	if err != nil {
		writeLedgerError(w, err, pollID, "get poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// AddCandidate handles POST /polls/{id}/candidates
// Any identified caller may add candidates while the poll is active.
func (h *PollHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.engine.AddCandidate(r.Context(), pollID, req.Name, caller)
	if err != nil {
		writeLedgerError(w, err, pollID, "add candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	poll, err := h.engine.ClosePoll(r.Context(), pollID, caller)
	if err != nil {
		writeLedgerError(w, err, pollID, "close poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClosePollResponse{
		ID:     poll.ID,
		Policy: h.engine.ClosePolicy(),
		Active: poll.Active,
	})
}
