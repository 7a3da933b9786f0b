package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Deposit distributes amount of the base asset over current holders.
func (t *Token) Deposit(from address.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dividends.Deposit(amount); err != nil {
		return err
	}
	last := t.dividends.Last()
	t.emit(event.Event{Kind: event.DividendDeposit, From: from, Amount: amount.Clone(), Tokens: last.Supply})
	t.logger.Info("dividend deposit", "from", from, "amount", amount, "supply", last.Supply, "seq", last.Seq)
	return nil
}

// Withdraw pays the holder's claimable dividends. Nothing claimable is a
// successful no-op. The withdrawal is recorded before the payment and
// reverted if the payment fails.
func (t *Token) Withdraw(ctx context.Context, holder address.Address) (*uint256.Int, error) {
	return t.payout(ctx, holder, units.Zero())
}

// Receive handles plain value sent to the token. The value is not
// distributed: it is returned to the sender together with any claimable
// dividends in a single payment.
func (t *Token) Receive(ctx context.Context, from address.Address, value *uint256.Int) (*uint256.Int, error) {
	return t.payout(ctx, from, units.Or(value))
}

func (t *Token) payout(ctx context.Context, holder address.Address, extra *uint256.Int) (*uint256.Int, error) {
	if t.payer == nil {
		return nil, dividend.ErrNilPayer
	}

	t.mu.Lock()
	p, err := t.dividends.BeginPayout(holder)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	total, err := units.Add(p.Amount, extra)
	if err != nil {
		t.mu.Lock()
		t.dividends.EndPayout(p, err)
		t.mu.Unlock()
		return nil, err
	}
	if total.IsZero() {
		return total, nil
	}

	payErr := t.payer.Pay(ctx, holder, total)

	t.mu.Lock()
	t.dividends.EndPayout(p, payErr)
	if payErr == nil && !p.Amount.IsZero() {
		t.emit(event.Event{Kind: event.DividendPayout, To: holder, Amount: p.Amount.Clone()})
	}
	t.mu.Unlock()

	if payErr != nil {
		t.logger.Error("payout failed", "holder", holder, "amount", total, "err", payErr)
		return nil, fmt.Errorf("%w: %s: %w", ErrPayoutFailed, holder, payErr)
	}
	if !p.Amount.IsZero() {
		t.logger.Info("dividend paid", "holder", holder, "amount", p.Amount)
	}
	return p.Amount, nil
}

// PayoutTo withdraws for each holder in turn. Failures do not stop the
// batch; they are joined into the returned error. The result is the total
// paid.
func (t *Token) PayoutTo(ctx context.Context, holders []address.Address) (*uint256.Int, error) {
	paid := units.Zero()
	var errs []error
	for _, h := range holders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		amount, err := t.Withdraw(ctx, h)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paid.Add(paid, amount)
	}
	return paid, errors.Join(errs...)
}

// Claimable returns the dividends holder may withdraw now.
func (t *Token) Claimable(holder address.Address) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dividends.Claimable(holder)
}

// Withdrawn returns the dividends already paid to holder.
func (t *Token) Withdrawn(holder address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dividends.Withdrawn(holder)
}

// UnpaidRemainder returns the holder's integer-division remainder of the
// most recent deposit.
func (t *Token) UnpaidRemainder(holder address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dividends.UnpaidRemainder(holder)
}

// Reserved returns deposited value not attributable to any holder.
func (t *Token) Reserved() (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dividends.Reserved()
}

// DividendTotals returns cumulative deposits and withdrawals.
func (t *Token) DividendTotals() (deposited, withdrawn *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dividends.TotalDeposited(), t.dividends.TotalWithdrawn()
}

// Audit checks supply and dividend conservation.
func (t *Token) Audit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sum := units.Zero()
	for _, b := range t.held.balances {
		next, err := units.Add(sum, b)
		if err != nil {
			return err
		}
		sum = next
	}
	if !sum.Eq(t.held.supply) {
		return fmt.Errorf("%w: balances=%s supply=%s", ErrSupplyMismatch, sum, t.held.supply)
	}
	return t.dividends.Audit()
}
