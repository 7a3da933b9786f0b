package sale

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/allocation"
)

// MaxBatch is the largest administrative mint batch.
const MaxBatch = 100

// Params fixes a sale at deployment. Only the end time may change later.
type Params struct {
	// Self is the sale's own address; it holds the token's minting authority.
	Self address.Address
	// Owner administers the sale.
	Owner address.Address

	Start time.Time
	End   time.Time

	// Rate is token base units per base-asset unit before discount.
	Rate   *uint256.Int
	Phases []Phase

	BonusPercent   uint64
	BonusThreshold *uint256.Int

	// MinPurchase is the smallest quote, in tokens, an ordinary purchase accepts.
	MinPurchase *uint256.Int
	// TokensSoldCap bounds tokens attributed to the public sale.
	TokensSoldCap *uint256.Int
	// Goal is the base-asset amount that makes the sale successful.
	Goal *uint256.Int

	Allocation allocation.Plan
}

// Validate checks parameter consistency.
func (p Params) Validate() error {
	switch {
	case p.Self.IsZero():
		return fmt.Errorf("%w: null sale address", ErrInvalidParams)
	case p.Owner.IsZero():
		return fmt.Errorf("%w: null owner", ErrInvalidParams)
	case !p.End.After(p.Start):
		return fmt.Errorf("%w: end %s not after start %s", ErrInvalidParams, p.End, p.Start)
	case p.Rate == nil || p.Rate.IsZero():
		return fmt.Errorf("%w: zero rate", ErrInvalidParams)
	case p.TokensSoldCap == nil || p.TokensSoldCap.IsZero():
		return fmt.Errorf("%w: zero cap", ErrInvalidParams)
	case p.Goal == nil || p.Goal.IsZero():
		return fmt.Errorf("%w: zero goal", ErrInvalidParams)
	case len(p.Phases) == 0:
		return fmt.Errorf("%w: no phases", ErrInvalidPhases)
	case !p.Phases[0].Activation.Equal(p.Start):
		return fmt.Errorf("%w: phase 0 must activate at start", ErrInvalidPhases)
	case !p.Phases[len(p.Phases)-1].Activation.Before(p.End):
		return fmt.Errorf("%w: last phase activates after end", ErrInvalidPhases)
	}
	if err := p.Allocation.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}
