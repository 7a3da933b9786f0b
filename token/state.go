package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// State is the persisted form of a Token.
type State struct {
	Owner           address.Address                                      `json:"owner"`
	MintingFinished bool                                                 `json:"minting_finished"`
	Supply          *uint256.Int                                         `json:"supply"`
	Balances        map[address.Address]*uint256.Int                     `json:"balances"`
	Allowances      map[address.Address]map[address.Address]*uint256.Int `json:"allowances,omitempty"`
	Dividends       dividend.State                                       `json:"dividends"`
}

// Snapshot returns a deep copy of the token state.
func (t *Token) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		Owner:           t.owner,
		MintingFinished: t.mintingFinished,
		Supply:          t.held.supply.Clone(),
		Balances:        make(map[address.Address]*uint256.Int, len(t.held.balances)),
		Allowances:      make(map[address.Address]map[address.Address]*uint256.Int, len(t.allowances)),
		Dividends:       t.dividends.Snapshot(),
	}
	for a, b := range t.held.balances {
		s.Balances[a] = b.Clone()
	}
	for h, m := range t.allowances {
		cp := make(map[address.Address]*uint256.Int, len(m))
		for sp, v := range m {
			cp[sp] = v.Clone()
		}
		s.Allowances[h] = cp
	}
	return s
}

// Restore replaces the token state with s after checking that balances sum
// to the recorded supply.
func (t *Token) Restore(s State) error {
	balances := make(map[address.Address]*uint256.Int, len(s.Balances))
	sum := units.Zero()
	for a, b := range s.Balances {
		b = units.Or(b)
		next, err := units.Add(sum, b)
		if err != nil {
			return err
		}
		sum = next
		balances[a] = b.Clone()
	}
	if !sum.Eq(units.Or(s.Supply)) {
		return fmt.Errorf("%w: balances=%s supply=%s", ErrSupplyMismatch, sum, units.Or(s.Supply))
	}

	allowances := make(map[address.Address]map[address.Address]*uint256.Int, len(s.Allowances))
	for h, m := range s.Allowances {
		cp := make(map[address.Address]*uint256.Int, len(m))
		for sp, v := range m {
			cp[sp] = units.Or(v).Clone()
		}
		allowances[h] = cp
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.owner = s.Owner
	t.mintingFinished = s.MintingFinished
	t.held.balances = balances
	t.held.supply = sum
	t.allowances = allowances
	t.dividends.Restore(s.Dividends)
	return nil
}
