package sale

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Order is a contribution. Sender supplies Value and is the escrow investor;
// Beneficiary receives the tokens.
type Order struct {
	Sender      address.Address
	Beneficiary address.Address
	Value       *uint256.Int
}

// Purchase is the outcome of an accepted order. Returned is the part of the
// order value not taken because the cap was reached; it stays with the
// sender.
type Purchase struct {
	Sender      address.Address
	Beneficiary address.Address
	Phase       int
	Quoted      *uint256.Int
	Tokens      *uint256.Int
	Accepted    *uint256.Int
	Returned    *uint256.Int
}

// Buy converts an order into tokens at the current phase price.
func (c *Crowdsale) Buy(ctx context.Context, o Order) (Purchase, error) {
	return c.buy(ctx, o, nil, 0)
}

// BuyOnBehalf is the forwarding entry point. Only the registered desk may
// call it; extraPercent is applied to the base tokens from phase 1 on.
func (c *Crowdsale) BuyOnBehalf(ctx context.Context, caller address.Address, o Order, extraPercent uint64) (Purchase, error) {
	return c.buy(ctx, o, &caller, extraPercent)
}

func (c *Crowdsale) buy(ctx context.Context, o Order, via *address.Address, extraPercent uint64) (Purchase, error) {
	if err := ctx.Err(); err != nil {
		return Purchase{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if via != nil && (c.desk.IsZero() || *via != c.desk) {
		return Purchase{}, fmt.Errorf("%w: %s is not the desk", ErrUnauthorized, *via)
	}
	if c.stage != Active {
		return Purchase{}, ErrAlreadyFinalized
	}
	now := c.clock.Now()
	if now.Before(c.params.Start) {
		return Purchase{}, fmt.Errorf("%w: starts %s", ErrBeforeWindow, c.params.Start)
	}
	if now.After(c.end) {
		return Purchase{}, fmt.Errorf("%w: ended %s", ErrSaleClosed, c.end)
	}
	if o.Beneficiary.IsZero() || o.Sender.IsZero() {
		return Purchase{}, ErrInvalidRecipient
	}
	if o.Value == nil || o.Value.IsZero() {
		return Purchase{}, ErrInvalidAmount
	}

	quoted, phase, err := c.phases.Quote(o.Value, c.params.Rate, now, extraPercent)
	if err != nil {
		return Purchase{}, err
	}
	if quoted.Lt(c.params.MinPurchase) {
		return Purchase{}, fmt.Errorf("%w: quote %s < %s", ErrBelowMinimum, quoted, c.params.MinPurchase)
	}
	if c.soldOut() {
		return Purchase{}, ErrCapReached
	}
	remaining := new(uint256.Int).Sub(c.params.TokensSoldCap, c.tokensSold)

	tokens, accepted := quoted, o.Value.Clone()
	if quoted.Gt(remaining) {
		tokens = remaining
		if accepted, err = ceilMulDiv(o.Value, remaining, quoted); err != nil {
			return Purchase{}, err
		}
	}
	raised, err := units.Add(c.raised, accepted)
	if err != nil {
		return Purchase{}, err
	}

	if err := c.escrow.Deposit(o.Sender, accepted); err != nil {
		return Purchase{}, fmt.Errorf("sale: escrow: %w", err)
	}
	if err := c.token.Mint(c.params.Self, o.Beneficiary, tokens); err != nil {
		if rerr := c.escrow.Reverse(o.Sender, accepted); rerr != nil {
			c.logger.Error("escrow reversal failed", "sender", o.Sender, "amount", accepted, "err", rerr)
			return Purchase{}, fmt.Errorf("%w: %w", ErrEscrowInconsistent, errors.Join(err, rerr))
		}
		return Purchase{}, fmt.Errorf("sale: mint: %w", err)
	}
	c.tokensSold = new(uint256.Int).Add(c.tokensSold, tokens)
	c.raised = raised

	p := Purchase{
		Sender:      o.Sender,
		Beneficiary: o.Beneficiary,
		Phase:       phase,
		Quoted:      quoted,
		Tokens:      tokens.Clone(),
		Accepted:    accepted,
		Returned:    new(uint256.Int).Sub(o.Value, accepted),
	}
	c.emit(event.Event{
		Kind:   event.TokenPurchase,
		From:   o.Sender,
		To:     o.Beneficiary,
		Amount: accepted.Clone(),
		Tokens: tokens.Clone(),
		Detail: "phase " + strconv.Itoa(phase),
	})
	c.logger.Info("token purchase",
		"sender", o.Sender, "beneficiary", o.Beneficiary, "phase", phase,
		"value", accepted, "tokens", tokens, "returned", p.Returned, "sold", c.tokensSold)
	return p, nil
}

// ceilMulDiv returns ceil(x*y/d).
func ceilMulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	q, err := units.MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	r, err := units.MulMod(x, y, d)
	if err != nil {
		return nil, err
	}
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q, nil
}
