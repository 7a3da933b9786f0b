package dividend

import (
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// State is the persisted form of a Ledger. In-flight marks are not part of
// it; snapshots are taken between calls.
type State struct {
	PerShare  *uint256.Int                 `json:"per_share"`
	Carry     *uint256.Int                 `json:"carry"`
	Deposited *uint256.Int                 `json:"deposited"`
	Withdrawn *uint256.Int                 `json:"withdrawn"`
	Last      LastDeposit                  `json:"last"`
	Accounts  map[address.Address]*Account `json:"accounts"`
}

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() State {
	s := State{
		PerShare:  l.perShare.Clone(),
		Carry:     l.carry.Clone(),
		Deposited: l.deposited.Clone(),
		Withdrawn: l.withdrawn.Clone(),
		Last:      l.Last(),
		Accounts:  make(map[address.Address]*Account, len(l.accounts)),
	}
	for h, a := range l.accounts {
		s.Accounts[h] = a.clone()
	}
	return s
}

// Restore replaces the ledger state with s.
func (l *Ledger) Restore(s State) {
	l.perShare = units.Or(s.PerShare).Clone()
	l.carry = units.Or(s.Carry).Clone()
	l.deposited = units.Or(s.Deposited).Clone()
	l.withdrawn = units.Or(s.Withdrawn).Clone()
	l.last = LastDeposit{
		Amount: units.Or(s.Last.Amount).Clone(),
		Supply: units.Or(s.Last.Supply).Clone(),
		Seq:    s.Last.Seq,
	}
	l.accounts = make(map[address.Address]*Account, len(s.Accounts))
	for h, a := range s.Accounts {
		if a != nil {
			l.accounts[h] = a.clone()
		}
	}
	l.inFlight = make(map[address.Address]bool)
}

func (a *Account) clone() *Account {
	return &Account{
		Checkpoint:      units.Or(a.Checkpoint).Clone(),
		Accrued:         units.Or(a.Accrued).Clone(),
		Withdrawn:       units.Or(a.Withdrawn).Clone(),
		SnapshotBalance: units.Or(a.SnapshotBalance).Clone(),
		SnapshotSeq:     a.SnapshotSeq,
	}
}
