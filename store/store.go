// Package store persists ledger snapshots together with a hash-chained
// journal of the operations that produced them.
package store

import (
	"sync"
)

// Store persists one snapshot and an append-only journal. Commit writes
// both atomically.
type Store interface {
	// Snapshot returns the latest committed state, or ErrNoSnapshot.
	Snapshot() ([]byte, error)

	// Commit replaces the snapshot and appends entries, assigning their
	// sequence numbers and hashes. It returns the sealed entries.
	Commit(snapshot []byte, entries []Entry) ([]Entry, error)

	// Journal returns up to limit entries starting at seq from. A limit of
	// zero or less returns all of them.
	Journal(from uint64, limit int) ([]Entry, error)

	// Head returns the last sequence number and hash, or 0 and "".
	Head() (uint64, string, error)

	Close() error
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu       sync.RWMutex
	snapshot []byte
	entries  []Entry
	closed   bool
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Snapshot() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.snapshot...), nil
}

func (m *MemStore) Commit(snapshot []byte, entries []Entry) ([]Entry, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	seq, prev := m.head()
	sealed := make([]Entry, 0, len(entries))
	for _, e := range entries {
		seq++
		s, err := seal(e, seq, prev)
		if err != nil {
			return nil, err
		}
		sealed = append(sealed, s)
		prev = s.Hash
	}
	m.entries = append(m.entries, sealed...)
	m.snapshot = append([]byte(nil), snapshot...)
	return sealed, nil
}

func (m *MemStore) Journal(from uint64, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []Entry
	for _, e := range m.entries {
		if e.Seq < from {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemStore) Head() (uint64, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, "", ErrClosed
	}
	seq, hash := m.head()
	return seq, hash, nil
}

func (m *MemStore) head() (uint64, string) {
	if len(m.entries) == 0 {
		return 0, ""
	}
	last := m.entries[len(m.entries)-1]
	return last.Seq, last.Hash
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
