package vault

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Snapshot is the persisted form of a RefundVault.
type Snapshot struct {
	State     State                            `json:"state"`
	Deposited map[address.Address]*uint256.Int `json:"deposited"`
	Balance   *uint256.Int                     `json:"balance"`
}

// Snapshot returns a deep copy of the vault state.
func (v *RefundVault) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{
		State:     v.state,
		Deposited: make(map[address.Address]*uint256.Int, len(v.deposited)),
		Balance:   v.balance.Clone(),
	}
	for a, d := range v.deposited {
		s.Deposited[a] = d.Clone()
	}
	return s
}

// Restore replaces the vault state with s.
func (v *RefundVault) Restore(s Snapshot) error {
	if s.State < Active || s.State > Closed {
		return fmt.Errorf("vault: restore: unknown %s", s.State)
	}
	deposited := make(map[address.Address]*uint256.Int, len(s.Deposited))
	for a, d := range s.Deposited {
		deposited[a] = units.Or(d).Clone()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s.State
	v.deposited = deposited
	v.balance = units.Or(s.Balance).Clone()
	return nil
}
