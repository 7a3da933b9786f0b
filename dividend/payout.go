package dividend

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Payer moves base-asset value to a recipient. A returned error means no
// value moved.
type Payer interface {
	Pay(ctx context.Context, to address.Address, amount *uint256.Int) error
}

// PayerFunc adapts a function to the Payer interface.
type PayerFunc func(ctx context.Context, to address.Address, amount *uint256.Int) error

// Pay calls f.
func (f PayerFunc) Pay(ctx context.Context, to address.Address, amount *uint256.Int) error {
	return f(ctx, to, amount)
}

// Payout is a committed withdrawal awaiting its outbound transfer.
type Payout struct {
	Holder address.Address
	Amount *uint256.Int
}

// BeginPayout commits the holder's claimable amount as withdrawn and marks
// the holder in flight. A zero claim returns a zero Payout and marks nothing.
// Every non-zero Payout must be passed to EndPayout.
func (l *Ledger) BeginPayout(holder address.Address) (Payout, error) {
	if l.inFlight[holder] {
		return Payout{}, fmt.Errorf("%w: %s", ErrPayoutInFlight, holder)
	}
	claim, err := l.Claimable(holder)
	if err != nil {
		return Payout{}, err
	}
	p := Payout{Holder: holder, Amount: claim}
	if claim.IsZero() {
		return p, nil
	}
	withdrawn, err := units.Add(l.withdrawn, claim)
	if err != nil {
		return Payout{}, err
	}
	acct := l.account(holder)
	acct.Withdrawn = new(uint256.Int).Add(acct.Withdrawn, claim)
	l.withdrawn = withdrawn
	l.inFlight[holder] = true
	return p, nil
}

// EndPayout clears the in-flight mark. When the transfer failed the
// committed withdrawal is rolled back.
func (l *Ledger) EndPayout(p Payout, transferErr error) {
	if p.Amount == nil || p.Amount.IsZero() {
		return
	}
	delete(l.inFlight, p.Holder)
	if transferErr == nil {
		return
	}
	acct := l.account(p.Holder)
	acct.Withdrawn = new(uint256.Int).Sub(acct.Withdrawn, p.Amount)
	l.withdrawn = new(uint256.Int).Sub(l.withdrawn, p.Amount)
}

// InFlight reports whether holder has an outbound payment pending.
func (l *Ledger) InFlight(holder address.Address) bool {
	return l.inFlight[holder]
}
