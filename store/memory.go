// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

var _ RecordStore = (*MemoryStore)(nil)

type memoryRecord struct {
	sizeBound int
	data      []byte
}

// MemoryStore keeps records in a map. Used for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Allocate(_ context.Context, key string, sizeBound int, data []byte) error {
	if err := checkAllocation(key, sizeBound, data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; exists {
		return ErrExists
	}
	s.records[key] = memoryRecord{sizeBound: sizeBound, data: bytes.Clone(data)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(rec.data), nil
}

func (s *MemoryStore) Store(_ context.Context, key string, prev, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	if !bytes.Equal(rec.data, prev) {
		return ErrConflict
	}
	if len(data) > rec.sizeBound {
		return fmt.Errorf("%w: %d bytes, bound %d", ErrTooLarge, len(data), rec.sizeBound)
	}
	rec.data = bytes.Clone(data)
	s.records[key] = rec
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return 0, ErrNotFound
	}
	delete(s.records, key)
	return rec.sizeBound, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
