// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL record store.

# Schema Creation

CreateSchema initializes the poll_record table for a dialect:

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for the table and index.

# Tables

One table holds every poll:

  - poll_record: address (derived from the poll id), size_bound,
    payload (encoded poll), created_at, updated_at

The payload column is BYTEA on postgres and BLOB on sqlite. Everything
else about the poll lives inside the encoded payload, so schema changes
are rare.
*/
package db
