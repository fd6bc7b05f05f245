// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the poll-ledger API server.

poll-ledger is a single-choice voting ledger. Each poll is one fixed-size
record holding its question, candidates, per-candidate tally, creator, an
active flag and the set of identities that have voted.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	IDENTITY_SALT=... DATABASE_URL=ledger.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -identity-salt ...

Variables are also read from a .env file in the working directory (-env to
pick another file, -env "" to skip it).

# Identity Tokens

Mutating requests carry X-Identity-Token. Issue one with the deployment's
salt:

	go run . token alice

# Configuration

Required settings:

  - IDENTITY_SALT (-identity-salt): Secret for identity token HMAC
  - DATABASE_URL (-d): Connection string, or directory for leveldb

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres, leveldb or memory (default: sqlite)
  - CLOSE_POLICY (-close-policy): flag or release (default: flag)
  - LOG_LEVEL (-log-level): debug, info, warn, error (default: info)
  - MAX_QUESTION_LEN, MAX_CANDIDATES, MAX_CANDIDATE_LEN, MAX_VOTERS

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity, JSON helpers
  - ledger: Poll operations, per-poll locking, ranking
  - record: Binary poll record codec and size limits
  - store: Record stores (memory, SQL, LevelDB)
  - models: Request/response and domain types
  - auth: Identity tokens and id generation
  - db: SQL schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
