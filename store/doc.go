// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the keyed record storage the ledger persists polls
in.

# Contract

RecordStore has four primitives:

	Allocate(ctx, key, sizeBound, data) // ErrExists if key is taken
	Load(ctx, key)                      // ErrNotFound if absent
	Store(ctx, key, prev, data)         // ErrNotFound, ErrTooLarge, ErrConflict
	Release(ctx, key)                   // returns reclaimed bytes

Allocate writes the initial contents together with the key, so a record
is never visible half-built. The size bound recorded at allocation caps
every later Store.

Store is a compare-and-swap: it writes only if the record still holds
prev, the bytes the caller loaded. The ledger's per-poll locks serialize
writers inside one process; the comparison keeps several processes
sharing one database from overwriting each other's votes.

# Backends

  - memory: MemoryStore, a mutex-guarded map
  - sqlite / postgres: SQLStore over the poll_record table
  - leveldb: LevelStore, keys prefixed with "poll:"

Select one with Open:

	s, err := store.Open(cfg.DatabaseType, cfg.DatabaseURL)
*/
package store
