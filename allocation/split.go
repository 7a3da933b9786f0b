// Package allocation computes the non-public token allocations minted when a
// successful sale is finalized.
package allocation

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Validate checks that the percentages total 100 with a positive public share.
func (p Percents) Validate() error {
	if p.ICO == 0 {
		return ErrZeroICOPercent
	}
	if sum := p.ICO + p.Team + p.Bounty + p.RnD; sum != 100 {
		return fmt.Errorf("%w: got %d", ErrPercentSum, sum)
	}
	return nil
}

// Validate checks the percentages and that every funded entry has a recipient.
func (p Plan) Validate() error {
	if err := p.Percents.Validate(); err != nil {
		return err
	}
	for _, e := range p.Entries() {
		if e.Percent > 0 && e.Address.IsZero() {
			return fmt.Errorf("%w: %d%% allocation", ErrZeroRecipient, e.Percent)
		}
	}
	return nil
}

// PublicShare returns floor(totalSupply * icoPct / 100), the part of a
// finalized supply attributed to the public sale.
func PublicShare(totalSupply *uint256.Int, icoPct uint64) (*uint256.Int, error) {
	return units.Percent(totalSupply, icoPct)
}

// Split computes each allocation as floor(pct * sold / icoPct), where sold is
// the supply minted before finalization. The public share of the resulting
// supply is then icoPct percent up to rounding. Entries with a zero percent
// are skipped.
func Split(sold *uint256.Int, plan Plan) ([]Distribution, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	ico := uint256.NewInt(plan.Percents.ICO)

	var out []Distribution
	for _, e := range plan.Entries() {
		if e.Percent == 0 {
			continue
		}
		amount, err := units.MulDiv(uint256.NewInt(e.Percent), sold, ico)
		if err != nil {
			return nil, fmt.Errorf("allocation: %s: %w", e.Address, err)
		}
		out = append(out, Distribution{Address: e.Address, Amount: amount})
	}
	return out, nil
}

// Total returns sold plus every distribution.
func Total(sold *uint256.Int, distributions []Distribution) (*uint256.Int, error) {
	total := sold.Clone()
	for _, d := range distributions {
		next, err := units.Add(total, d.Amount)
		if err != nil {
			return nil, err
		}
		total = next
	}
	return total, nil
}

// Verify recomputes the split and checks distributions against it.
func Verify(distributions []Distribution, sold *uint256.Int, plan Plan) error {
	expected, err := Split(sold, plan)
	if err != nil {
		return err
	}
	if len(distributions) != len(expected) {
		return fmt.Errorf("%w: count %d != %d", ErrDistributionMismatch, len(distributions), len(expected))
	}
	for i := range distributions {
		if distributions[i].Address != expected[i].Address {
			return fmt.Errorf("%w: entry %d address", ErrDistributionMismatch, i)
		}
		if !distributions[i].Amount.Eq(expected[i].Amount) {
			return fmt.Errorf("%w: entry %d amount %s != %s", ErrDistributionMismatch, i, distributions[i].Amount, expected[i].Amount)
		}
	}
	return nil
}
