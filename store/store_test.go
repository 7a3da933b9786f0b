package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "ledger.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntry(op string) Entry {
	alice := address.Derive("alice")
	return Entry{
		At:    at,
		Op:    op,
		Actor: alice,
		Args:  map[string]string{"value": "10"},
		Events: []event.Event{{
			Kind:   event.TokenPurchase,
			From:   alice,
			To:     alice,
			Amount: units.U(10),
			Tokens: units.U(2000),
			At:     at,
		}},
	}
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("bolt", func(t *testing.T) { fn(t, tempBoltStore(t)) })
}

func TestStore_EmptySnapshot(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.Snapshot()
		assert.ErrorIs(t, err, ErrNoSnapshot)

		seq, hash, err := s.Head()
		require.NoError(t, err)
		assert.Zero(t, seq)
		assert.Empty(t, hash)

		_, err = s.Commit(nil, []Entry{testEntry("buy")})
		assert.ErrorIs(t, err, ErrEmptySnapshot)
	})
}

func TestStore_CommitAndJournal(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		sealed, err := s.Commit([]byte(`{"v":1}`), []Entry{testEntry("init")})
		require.NoError(t, err)
		require.Len(t, sealed, 1)
		assert.Equal(t, uint64(1), sealed[0].Seq)
		assert.Empty(t, sealed[0].Prev)
		assert.Len(t, sealed[0].Hash, 64)

		sealed2, err := s.Commit([]byte(`{"v":2}`), []Entry{testEntry("buy"), testEntry("buy")})
		require.NoError(t, err)
		require.Len(t, sealed2, 2)
		assert.Equal(t, sealed[0].Hash, sealed2[0].Prev)
		assert.Equal(t, sealed2[0].Hash, sealed2[1].Prev)

		snap, err := s.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(snap))

		seq, hash, err := s.Head()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), seq)
		assert.Equal(t, sealed2[1].Hash, hash)

		all, err := s.Journal(0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.NoError(t, VerifyJournal(all, ""))
		assert.Equal(t, uint64(2000), all[1].Events[0].Tokens.Uint64())

		tail, err := s.Journal(2, 1)
		require.NoError(t, err)
		require.Len(t, tail, 1)
		assert.Equal(t, uint64(2), tail[0].Seq)
		require.NoError(t, VerifyJournal(tail, all[0].Hash))
	})
}

func TestStore_SnapshotOnlyCommit(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.Commit([]byte("a"), nil)
		require.NoError(t, err)
		seq, _, err := s.Head()
		require.NoError(t, err)
		assert.Zero(t, seq)
		snap, err := s.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, "a", string(snap))
	})
}

func TestVerifyJournal_Tamper(t *testing.T) {
	s := NewMemStore()
	_, err := s.Commit([]byte("x"), []Entry{testEntry("a"), testEntry("b"), testEntry("c")})
	require.NoError(t, err)
	good, err := s.Journal(0, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]Entry) []Entry
	}{
		{"edited op", func(es []Entry) []Entry { es[1].Op = "mint"; return es }},
		{"edited amount", func(es []Entry) []Entry { es[0].Events[0].Amount = units.U(11); return es }},
		{"dropped entry", func(es []Entry) []Entry { return append(es[:1], es[2:]...) }},
		{"reordered", func(es []Entry) []Entry { es[1], es[2] = es[2], es[1]; return es }},
		{"relinked", func(es []Entry) []Entry { es[2].Prev = es[0].Hash; return es }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := make([]Entry, len(good))
			for i, e := range good {
				e.Events = append([]event.Event(nil), e.Events...)
				es[i] = e
			}
			err := VerifyJournal(tt.mutate(es), "")
			assert.ErrorIs(t, err, ErrJournalCorrupt)
		})
	}
	require.NoError(t, VerifyJournal(good, ""))
	assert.ErrorIs(t, VerifyJournal(good[1:], "not-the-hash"), ErrJournalCorrupt)
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := OpenBoltStore(path, time.Second)
	require.NoError(t, err)
	_, err = s.Commit([]byte("state"), []Entry{testEntry("init")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path, time.Second)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "state", string(snap))

	sealed, err := s.Commit([]byte("state2"), []Entry{testEntry("buy")})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), sealed[0].Seq)
	all, err := s.Journal(1, 0)
	require.NoError(t, err)
	require.NoError(t, VerifyJournal(all, ""))
}

func TestMemStore_Closed(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Close())
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Commit([]byte("x"), nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDecompress_Limit(t *testing.T) {
	packed, err := compress(make([]byte, MaxSnapshotSize+1))
	require.NoError(t, err)
	_, err = decompress(packed)
	assert.ErrorIs(t, err, ErrSnapshotTooLarge)

	_, err = decompress([]byte("not gzip"))
	assert.Error(t, err)
}
