package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketState   = []byte("state")
	bucketJournal = []byte("journal")

	keySnapshot = []byte("snapshot")
	keyHeadSeq  = []byte("head_seq")
	keyHeadHash = []byte("head_hash")
)

// BoltStore keeps the snapshot and journal in a single bbolt file. bbolt
// holds an exclusive file lock while the store is open.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at dbPath, creating the
// parent directory if needed. It gives up after timeout if another process
// holds the database.
func OpenBoltStore(dbPath string, timeout time.Duration) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketJournal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// seqKey encodes a sequence number as an 8-byte big-endian key so cursor
// order is journal order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func (s *BoltStore) Snapshot() ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keySnapshot)
		if data == nil {
			return ErrNoSnapshot
		}
		var err error
		out, err = decompress(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Commit(snapshot []byte, entries []Entry) ([]Entry, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}
	packed, err := compress(snapshot)
	if err != nil {
		return nil, fmt.Errorf("store: compress snapshot: %w", err)
	}

	sealed := make([]Entry, 0, len(entries))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		state := tx.Bucket(bucketState)
		journal := tx.Bucket(bucketJournal)

		seq, prev := readHead(state)
		for _, e := range entries {
			seq++
			se, err := seal(e, seq, prev)
			if err != nil {
				return err
			}
			data, err := json.Marshal(se)
			if err != nil {
				return fmt.Errorf("store: encode entry %d: %w", seq, err)
			}
			if err := journal.Put(seqKey(seq), data); err != nil {
				return fmt.Errorf("store: put entry %d: %w", seq, err)
			}
			sealed = append(sealed, se)
			prev = se.Hash
		}
		if err := state.Put(keyHeadSeq, seqKey(seq)); err != nil {
			return fmt.Errorf("store: put head: %w", err)
		}
		if err := state.Put(keyHeadHash, []byte(prev)); err != nil {
			return fmt.Errorf("store: put head: %w", err)
		}
		if err := state.Put(keySnapshot, packed); err != nil {
			return fmt.Errorf("store: put snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sealed, nil
}

func (s *BoltStore) Journal(from uint64, limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketJournal).Cursor()
		for k, v := c.Seek(seqKey(from)); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) == limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("%w: decode entry %d: %v", ErrJournalCorrupt, binary.BigEndian.Uint64(k), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Head() (uint64, string, error) {
	var (
		seq  uint64
		hash string
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		seq, hash = readHead(tx.Bucket(bucketState))
		return nil
	})
	return seq, hash, err
}

func readHead(state *bbolt.Bucket) (uint64, string) {
	raw := state.Get(keyHeadSeq)
	if len(raw) != 8 {
		return 0, ""
	}
	return binary.BigEndian.Uint64(raw), string(state.Get(keyHeadHash))
}
