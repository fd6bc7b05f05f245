// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/syndtr/goleveldb/leveldb"
)

var _ RecordStore = (*LevelStore)(nil)

// keyPrefix namespaces poll records in the leveldb keyspace
var keyPrefix = []byte("poll:")

// LevelStore keeps records in a leveldb database. Values are a 4 byte
// little endian size bound followed by the payload.
type LevelStore struct {
	// mu makes read-check-write sequences atomic; leveldb only
	// guarantees atomicity per Put/Delete
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelStore opens (or creates) a leveldb database in dir
func OpenLevelStore(dir string) (*LevelStore, error) {
	if dir == "" {
		return nil, errors.New("leveldb directory required")
	}
	ldb, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", dir, err)
	}
	return NewLevelStore(ldb), nil
}

func NewLevelStore(ldb *leveldb.DB) *LevelStore {
	return &LevelStore{db: ldb}
}

func levelKey(key string) []byte {
	return append(append([]byte{}, keyPrefix...), key...)
}

// get returns the stored bound and payload
func (s *LevelStore) get(key string) (int, []byte, error) {
	value, err := s.db.Get(levelKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read record: %w", err)
	}
	if len(value) < 4 {
		return 0, nil, fmt.Errorf("record %s has a truncated header", key)
	}
	return int(binary.LittleEndian.Uint32(value)), value[4:], nil
}

func (s *LevelStore) put(key string, sizeBound int, data []byte) error {
	value := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(data)), uint32(sizeBound))
	value = append(value, data...)
	if err := s.db.Put(levelKey(key), value, nil); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (s *LevelStore) Allocate(_ context.Context, key string, sizeBound int, data []byte) error {
	if err := checkAllocation(key, sizeBound, data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.db.Has(levelKey(key), nil)
	if err != nil {
		return fmt.Errorf("failed to check record: %w", err)
	}
	if ok {
		return ErrExists
	}

	if err := s.put(key, sizeBound, data); err != nil {
		return err
	}
	slog.Debug("record allocated", "address", key, "bound", humanize.Bytes(uint64(sizeBound)))
	return nil
}

func (s *LevelStore) Load(_ context.Context, key string) ([]byte, error) {
	_, data, err := s.get(key)
	return data, err
}

func (s *LevelStore) Store(_ context.Context, key string, prev, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sizeBound, current, err := s.get(key)
	if err != nil {
		return err
	}
	if !bytes.Equal(current, prev) {
		return ErrConflict
	}
	if len(data) > sizeBound {
		return fmt.Errorf("%w: %d bytes, bound %d", ErrTooLarge, len(data), sizeBound)
	}
	return s.put(key, sizeBound, data)
}

func (s *LevelStore) Release(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sizeBound, _, err := s.get(key)
	if err != nil {
		return 0, err
	}
	if err := s.db.Delete(levelKey(key), nil); err != nil {
		return 0, fmt.Errorf("failed to delete record: %w", err)
	}

	slog.Debug("record released", "address", key, "reclaimed", humanize.Bytes(uint64(sizeBound)))
	return sizeBound, nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}
