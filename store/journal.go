package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/event"
)

// Entry is one committed operation. Seq, Prev and Hash are assigned by the
// store on commit.
type Entry struct {
	Seq    uint64            `json:"seq"`
	At     time.Time         `json:"at"`
	Op     string            `json:"op"`
	Actor  address.Address   `json:"actor"`
	Args   map[string]string `json:"args,omitempty"`
	Events []event.Event     `json:"events,omitempty"`
	Prev   string            `json:"prev"`
	Hash   string            `json:"hash,omitempty"`
}

// digest returns the hex BLAKE2b-256 of e with Hash cleared.
func (e Entry) digest() (string, error) {
	e.Hash = ""
	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("store: encode entry %d: %w", e.Seq, err)
	}
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// seal links e after (seq-1, prev) and fills its hash.
func seal(e Entry, seq uint64, prev string) (Entry, error) {
	e.Seq = seq
	e.Prev = prev
	h, err := e.digest()
	if err != nil {
		return Entry{}, err
	}
	e.Hash = h
	return e, nil
}

// VerifyJournal checks that entries form a contiguous hash chain. prev is
// the hash the first entry must link to; with "" a slice starting past the
// genesis entry is accepted unanchored.
func VerifyJournal(entries []Entry, prev string) error {
	for i, e := range entries {
		if i > 0 && e.Seq != entries[i-1].Seq+1 {
			return fmt.Errorf("%w: seq %d follows %d", ErrJournalCorrupt, e.Seq, entries[i-1].Seq)
		}
		if (i > 0 || prev != "" || e.Seq == 1) && e.Prev != prev {
			return fmt.Errorf("%w: entry %d does not link to its predecessor", ErrJournalCorrupt, e.Seq)
		}
		h, err := e.digest()
		if err != nil {
			return err
		}
		if h != e.Hash {
			return fmt.Errorf("%w: entry %d hash mismatch", ErrJournalCorrupt, e.Seq)
		}
		prev = e.Hash
	}
	return nil
}
