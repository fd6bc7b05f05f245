// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite, postgres, leveldb or memory (default: sqlite)
  - DatabaseURL: connection string, or a directory for leveldb
    (required unless memory)
  - IdentitySalt: Secret for identity token HMAC (required)
  - ClosePolicy: flag (default) or release
  - LogLevel: debug, info, warn or error (default: info)
  - Limits: record size limits (question, candidates, voters)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	-env               Environment file (default: .env)
	--identity-salt    Identity token salt
	--close-policy     flag or release
	--log-level        Log level
	--max-question     Question length limit (bytes)
	--max-candidates   Candidates per poll
	--max-candidate-len Candidate name length limit (bytes)
	--max-voters       Voters per poll

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	IDENTITY_SALT     → --identity-salt
	CLOSE_POLICY      → --close-policy
	LOG_LEVEL         → --log-level
	MAX_QUESTION_LEN  → --max-question
	MAX_CANDIDATES    → --max-candidates
	MAX_CANDIDATE_LEN → --max-candidate-len
	MAX_VOTERS        → --max-voters

CLI flags take precedence over environment variables. The env file is
loaded with godotenv before the fallback runs and never overrides a
variable that is already set. A missing env file is ignored.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing for a persistent database type
  - IDENTITY_SALT is missing
  - the database type or close policy is unknown
  - any limit is not positive
*/
package cliparse
