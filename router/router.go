// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/poll-ledger/cliparse"
	"github.com/danielhkuo/poll-ledger/handlers"
	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
)

func NewRouter(engine *ledger.Engine, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(engine)
	votingHandler := handlers.NewVotingHandler(engine)
	resultsHandler := handlers.NewResultsHandler(engine)

	// Mutations run as the caller named by X-Identity-Token
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireIdentity(cfg.IdentitySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll lifecycle
	mux.HandleFunc("POST /polls", authed(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/{id}/candidates", authed(pollHandler.AddCandidate))
	mux.HandleFunc("POST /polls/{id}/close", authed(pollHandler.ClosePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/votes", authed(votingHandler.Vote))

	// Reads (public)
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("poll-ledger API v1"))
	})

	return mux
}
