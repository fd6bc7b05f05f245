// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
	ErrTooLarge = errors.New("record exceeds allocated size")
	ErrConflict = errors.New("record changed since it was loaded")
)

// Database types accepted by Open
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeLevelDB  = "leveldb"
)

// RecordStore is keyed persistent storage for encoded poll records.
// Each call is atomic with respect to the key it touches.
type RecordStore interface {
	// Allocate creates the record at key with its initial contents in one
	// step. sizeBound caps every later write to the record.
	Allocate(ctx context.Context, key string, sizeBound int, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	// Store replaces the contents of an existing record if they still
	// equal prev, and returns ErrConflict otherwise
	Store(ctx context.Context, key string, prev, data []byte) error
	// Release deletes the record and returns the number of bytes reclaimed
	Release(ctx context.Context, key string) (int, error)
	Close() error
}

// Open returns the backend selected by dbType. url is a connection string
// for SQL backends and a directory for leveldb; memory ignores it.
func Open(dbType, url string) (RecordStore, error) {
	switch dbType {
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeLevelDB:
		return OpenLevelStore(url)
	case TypeSQLite, TypePostgres:
		return OpenSQLStore(dbType, url)
	default:
		return nil, fmt.Errorf("unknown database type %q", dbType)
	}
}

func checkAllocation(key string, sizeBound int, data []byte) error {
	if key == "" {
		return errors.New("record key is required")
	}
	if sizeBound <= 0 {
		return fmt.Errorf("invalid size bound %d", sizeBound)
	}
	if len(data) > sizeBound {
		return fmt.Errorf("%w: %d bytes, bound %d", ErrTooLarge, len(data), sizeBound)
	}
	return nil
}
