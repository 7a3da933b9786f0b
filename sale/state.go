package sale

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// State is the persisted, mutable part of a Crowdsale.
type State struct {
	End        time.Time       `json:"end"`
	TokensSold *uint256.Int    `json:"tokens_sold"`
	Raised     *uint256.Int    `json:"raised"`
	Stage      Stage           `json:"stage"`
	Outcome    Stage           `json:"outcome"`
	Minter     address.Address `json:"minter"`
	Desk       address.Address `json:"desk"`
}

// Snapshot returns the mutable sale state.
func (c *Crowdsale) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		End:        c.end,
		TokensSold: c.tokensSold.Clone(),
		Raised:     c.raised.Clone(),
		Stage:      c.stage,
		Outcome:    c.outcome,
		Minter:     c.minter,
		Desk:       c.desk,
	}
}

// Restore replaces the mutable sale state with s.
func (c *Crowdsale) Restore(s State) error {
	sold := units.Or(s.TokensSold)
	if sold.Gt(c.params.TokensSoldCap) {
		return fmt.Errorf("%w: tokens sold %s above cap", ErrInvalidParams, sold)
	}
	if s.End.Before(c.params.End) {
		return fmt.Errorf("%w: end %s before deployment end", ErrInvalidParams, s.End)
	}
	if s.Stage < Active || s.Stage > Closed {
		return fmt.Errorf("%w: stage %d", ErrInvalidParams, int(s.Stage))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = s.End
	c.tokensSold = sold.Clone()
	c.raised = units.Or(s.Raised).Clone()
	c.stage = s.Stage
	c.outcome = s.Outcome
	c.minter = s.Minter
	c.desk = s.Desk
	return nil
}
