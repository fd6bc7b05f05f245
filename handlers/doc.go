// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the poll-ledger API.

# Handler Types

Each handler is a struct holding the ledger engine it drives:

  - PollHandler: Poll lifecycle (create, add candidate, close, read)
  - VotingHandler: Vote submission
  - ResultsHandler: Ranked results

Handlers are created via constructor functions that accept a
*ledger.Engine:

	pollHandler := handlers.NewPollHandler(engine)

# Poll Lifecycle

Polls are active from creation until their creator closes them:

	POST /polls                 → CreatePoll (id generated when omitted)
	POST /polls/{id}/candidates → AddCandidate (active only)
	POST /polls/{id}/votes      → Vote (one per identity)
	POST /polls/{id}/close      → ClosePoll (creator only)

Mutations read the caller from the request context, which
middleware.RequireIdentity fills from the X-Identity-Token header.

# Errors

Ledger errors map to statuses through StatusFor:

	InvalidInput, InvalidOptionIndex               → 400
	Unauthorized                                   → 403
	NotFound                                       → 404
	AlreadyExists, NotInitialized,
	DuplicateCandidate, AlreadyVoted               → 409
	CapacityExceeded                               → 422

The response body carries the taxonomy name in "code". Store failures are
logged and returned as a bare 500.
*/
package handlers
