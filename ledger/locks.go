// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "sync"

type pollLock struct {
	sync.RWMutex
	refs int
}

// lockTable hands out one lock per poll address. An entry lives only while
// an operation holds or waits on it, so polls never share a lock.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*pollLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*pollLock)}
}

func (t *lockTable) acquire(address string) *pollLock {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[address]
	if !ok {
		l = &pollLock{}
		t.locks[address] = l
	}
	l.refs++
	return l
}

func (t *lockTable) release(address string, l *pollLock) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(t.locks, address)
	}
}

// lock takes the exclusive lock for address and returns its unlock
func (t *lockTable) lock(address string) func() {
	l := t.acquire(address)
	l.Lock()
	return func() {
		l.Unlock()
		t.release(address, l)
	}
}

// rlock takes the shared lock for address and returns its unlock
func (t *lockTable) rlock(address string) func() {
	l := t.acquire(address)
	l.RLock()
	return func() {
		l.RUnlock()
		t.release(address, l)
	}
}

// held returns the number of live entries
func (t *lockTable) held() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
