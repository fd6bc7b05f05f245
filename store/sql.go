// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/poll-ledger/db"
)

var _ RecordStore = (*SQLStore)(nil)

// SQLStore keeps records in the poll_record table of a postgres or sqlite
// database.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore connects, verifies the connection and creates the schema.
// dbType doubles as the database/sql driver name.
func OpenSQLStore(dbType, url string) (*SQLStore, error) {
	if url == "" {
		return nil, errors.New("database URL required")
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	// sqlite serializes writers; a single connection also keeps
	// ":memory:" databases from splitting across connections
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(conn, dbType); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQLStore(conn), nil
}

// NewSQLStore wraps a connection whose schema already exists
func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

// DB exposes the underlying connection for inspection in tests
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Allocate(ctx context.Context, key string, sizeBound int, data []byte) error {
	if err := checkAllocation(key, sizeBound, data); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_record (address, size_bound, payload, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (address) DO NOTHING
	`, key, sizeBound, data)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrExists
	}

	slog.Debug("record allocated", "address", key, "bound", humanize.Bytes(uint64(sizeBound)))
	return nil
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM poll_record WHERE address = $1
	`, key).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return payload, nil
}

func (s *SQLStore) Store(ctx context.Context, key string, prev, data []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll_record
		SET payload = $1, updated_at = CURRENT_TIMESTAMP
		WHERE address = $2 AND size_bound >= $3 AND payload = $4
	`, data, key, len(data), prev)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: the record is gone, changed underneath us, or the
	// write is too big
	var sizeBound int
	var current []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT size_bound, payload FROM poll_record WHERE address = $1
	`, key).Scan(&sizeBound, &current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query record: %w", err)
	}
	if !bytes.Equal(current, prev) {
		return ErrConflict
	}
	return fmt.Errorf("%w: %d bytes, bound %d", ErrTooLarge, len(data), sizeBound)
}

func (s *SQLStore) Release(ctx context.Context, key string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sizeBound int
	err = tx.QueryRowContext(ctx, `
		SELECT size_bound FROM poll_record WHERE address = $1
	`, key).Scan(&sizeBound)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_record WHERE address = $1`, key); err != nil {
		return 0, fmt.Errorf("failed to delete record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("record released", "address", key, "reclaimed", humanize.Bytes(uint64(sizeBound)))
	return sizeBound, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
