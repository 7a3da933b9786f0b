package sale

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// ManualMint is the outcome of an administrative batch mint. Excess is the
// part of Total beyond the remaining cap; it was minted anyway and must be
// reconciled off-ledger.
type ManualMint struct {
	Total  *uint256.Int
	Excess *uint256.Int
}

// MintTokens batch-mints to up to MaxBatch recipients. The owner or the
// delegated minter may call it until finalization, inside or outside the
// sale window. The whole batch is validated before anything is minted.
func (c *Crowdsale) MintTokens(caller address.Address, recipients []address.Address, amounts []*uint256.Int) (ManualMint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.params.Owner && (c.minter.IsZero() || caller != c.minter) {
		return ManualMint{}, fmt.Errorf("%w: %s may not mint", ErrUnauthorized, caller)
	}
	if c.stage != Active {
		return ManualMint{}, ErrAlreadyFinalized
	}
	if len(recipients) == 0 && len(amounts) == 0 {
		return ManualMint{}, ErrEmptyBatch
	}
	if len(recipients) != len(amounts) {
		return ManualMint{}, fmt.Errorf("%w: %d recipients, %d amounts", ErrArityMismatch, len(recipients), len(amounts))
	}
	if len(recipients) > MaxBatch {
		return ManualMint{}, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(recipients), MaxBatch)
	}

	total := units.Zero()
	for i := range recipients {
		if recipients[i].IsZero() {
			return ManualMint{}, fmt.Errorf("%w: entry %d", ErrInvalidRecipient, i)
		}
		if amounts[i] == nil || amounts[i].IsZero() {
			return ManualMint{}, fmt.Errorf("%w: entry %d", ErrInvalidAmount, i)
		}
		next, err := units.Add(total, amounts[i])
		if err != nil {
			return ManualMint{}, err
		}
		total = next
	}
	if _, err := units.Add(c.token.TotalSupply(), total); err != nil {
		return ManualMint{}, err
	}
	sold, err := units.Add(c.tokensSold, total)
	if err != nil {
		return ManualMint{}, err
	}

	for i := range recipients {
		if err := c.token.Mint(c.params.Self, recipients[i], amounts[i]); err != nil {
			if i == 0 {
				return ManualMint{}, fmt.Errorf("sale: mint: %w", err)
			}
			return ManualMint{}, fmt.Errorf("%w: batch interrupted at entry %d: %w", ErrEscrowInconsistent, i, err)
		}
		c.emit(event.Event{Kind: event.ManualMint, From: caller, To: recipients[i], Tokens: amounts[i].Clone()})
	}

	excess := units.Zero()
	if sold.Gt(c.params.TokensSoldCap) {
		excess = new(uint256.Int).Sub(sold, c.params.TokensSoldCap)
		sold = c.params.TokensSoldCap.Clone()
		c.emit(event.Event{Kind: event.ManualMintRequiresRefund, From: caller, Tokens: excess.Clone(), Detail: "minted beyond token cap"})
		c.logger.Warn("manual mint exceeds cap; refund required", "caller", caller, "excess", excess)
	}
	c.tokensSold = sold
	c.logger.Info("manual mint", "caller", caller, "entries", len(recipients), "total", total, "sold", sold)
	return ManualMint{Total: total, Excess: excess}, nil
}
