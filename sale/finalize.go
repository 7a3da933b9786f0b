package sale

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/allocation"
	"github.com/bitfsorg/libcrowdsale-go/event"
)

// Finalize closes the sale exactly once. Anyone may call it once the cap is
// reached or the end time has passed.
//
// A successful sale (sold out, or raised at least the goal) releases escrow
// to the wallet, mints the team, bounty and R&D allocations against the
// supply sold, finishes minting and hands minting authority to the token
// itself. An unsuccessful sale leaves supply untouched and enables refunds.
func (c *Crowdsale) Finalize(ctx context.Context) (Stage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stage != Active {
		return c.outcome, ErrAlreadyFinalized
	}
	now := c.clock.Now()
	if !c.soldOut() && !now.After(c.end) {
		return Active, fmt.Errorf("%w: ends %s, sold %s of %s", ErrTooEarly, c.end, c.tokensSold, c.params.TokensSoldCap)
	}

	outcome := Unsuccessful
	if c.soldOut() || !c.raised.Lt(c.params.Goal) {
		outcome = Successful
	}

	var err error
	if outcome == Successful {
		err = c.finalizeSuccess(ctx)
	} else {
		err = c.escrow.EnableRefunds()
	}
	if err != nil {
		return Active, err
	}

	c.outcome = outcome
	c.stage = Closed

	supply := c.token.TotalSupply()
	c.emit(event.Event{Kind: event.Finalized, Amount: c.raised.Clone(), Tokens: supply, Detail: outcome.String()})
	c.logger.Info("sale finalized", "outcome", outcome, "raised", c.raised, "sold", c.tokensSold, "supply", supply)
	return outcome, nil
}

func (c *Crowdsale) finalizeSuccess(ctx context.Context) error {
	sold := c.token.TotalSupply()
	dists, err := allocation.Split(sold, c.params.Allocation)
	if err != nil {
		return err
	}
	if _, err := allocation.Total(sold, dists); err != nil {
		return err
	}

	if err := c.escrow.Close(ctx); err != nil {
		return fmt.Errorf("sale: release escrow: %w", err)
	}

	invariant := func(step string, err error) error {
		c.logger.Error("finalization interrupted after escrow release", "step", step, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrEscrowInconsistent, step, err)
	}
	for _, d := range dists {
		if err := c.token.Mint(c.params.Self, d.Address, d.Amount); err != nil {
			return invariant("allocation mint", err)
		}
		c.logger.Info("allocation minted", "to", d.Address, "amount", d.Amount)
	}
	if err := c.token.FinishMinting(c.params.Self); err != nil {
		return invariant("finish minting", err)
	}
	if err := c.token.TransferOwnership(c.params.Self, c.token.Address()); err != nil {
		return invariant("ownership handover", err)
	}
	return nil
}

// ClaimRefund returns the investor's escrowed contribution after an
// unsuccessful sale.
func (c *Crowdsale) ClaimRefund(ctx context.Context, investor address.Address) (*uint256.Int, error) {
	c.mu.Lock()
	refundable := c.stage == Closed && c.outcome == Unsuccessful
	c.mu.Unlock()
	if !refundable {
		return nil, ErrNotRefundable
	}
	return c.escrow.Refund(ctx, investor)
}
