// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	schema, err := SchemaFor(dialect)
	if err != nil {
		return err
	}

	_, err = db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SchemaFor returns the DDL for a dialect ("postgres" or "sqlite")
func SchemaFor(dialect string) (string, error) {
	switch dialect {
	case "postgres":
		return fmt.Sprintf(schemaTemplate, "BYTEA"), nil
	case "sqlite":
		return fmt.Sprintf(schemaTemplate, "BLOB"), nil
	default:
		return "", fmt.Errorf("unsupported SQL dialect %q", dialect)
	}
}

const schemaTemplate = `
-- Poll records, keyed by derived address
CREATE TABLE IF NOT EXISTS poll_record (
    address TEXT PRIMARY KEY,
    size_bound INTEGER NOT NULL CHECK (size_bound > 0),
    payload %s NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_record_updated_at ON poll_record(updated_at);
`
