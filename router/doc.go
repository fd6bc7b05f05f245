// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the poll-ledger API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(engine, cfg)

# Endpoints

Health:

	GET /health

Mutations (require X-Identity-Token):

	POST /polls                 - Create poll
	POST /polls/{id}/candidates - Add candidate
	POST /polls/{id}/votes      - Cast vote
	POST /polls/{id}/close      - Close poll (creator only)

Reads (public):

	GET /polls/{id}         - Stored poll record
	GET /polls/{id}/results - Ranked tally

# Handler Initialization

The router creates handler instances with dependency injection:

	pollHandler := handlers.NewPollHandler(engine)
	votingHandler := handlers.NewVotingHandler(engine)
	resultsHandler := handlers.NewResultsHandler(engine)

All handlers share one ledger.Engine so per-poll locking covers every route.
*/
package router
