// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: id (optional), question, candidates
  - AddCandidateRequest: name
  - VoteRequest: option_index

# Response Types

  - Poll: the full poll record
  - PollResults: ranked tallies and winners
  - ClosePollResponse: id, policy, active
  - ErrorResponse: error, message, code

# Domain Types

Poll is the only entity. Its invariants:

  - len(Tally) == len(Candidates), index-aligned
  - Candidates contain no duplicates
  - Voters is a sorted set
  - Creator never changes; Active never goes false → true

Poll.Clone returns a deep copy; the engine mutates clones and commits
them in one write.

# Constants

Close policies:

	ClosePolicyFlag    = "flag"    // keep the record, set active=false
	ClosePolicyRelease = "release" // delete the record
*/
package models
