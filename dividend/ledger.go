// Package dividend implements a proportional payout ledger over a changing
// set of token balances.
//
// Every deposit raises a magnified per-share accumulator by
// floor((amount*Magnitude + carry) / supply) and keeps the remainder as carry
// for the next deposit. A holder's magnified entitlement is its settled
// entitlement plus balance times the accumulator growth since its last
// settlement; the claimable amount is that entitlement divided by Magnitude,
// floored, less what has been withdrawn. Balances must be settled before they
// change, which keeps accrued value with the holder that earned it.
//
// The ledger is not safe for concurrent use. The owning token serializes
// access.
package dividend

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Magnitude scales per-share values. A power of ten keeps decimal supplies
// exact: any supply dividing 10^36 accrues without rounding.
var Magnitude = units.Pow10(36)

// MaxDeposited bounds cumulative deposits so that balance times accumulator
// growth stays within 256 bits.
var MaxDeposited = new(uint256.Int).Div(new(uint256.Int).SetAllOne(), Magnitude)

// Shares exposes the balances dividends are distributed over.
type Shares interface {
	BalanceOf(holder address.Address) *uint256.Int
	TotalSupply() *uint256.Int
}

// Account is the per-holder dividend record.
type Account struct {
	// Checkpoint is the accumulator value at the last settlement.
	Checkpoint *uint256.Int `json:"checkpoint"`
	// Accrued is the magnified entitlement settled so far.
	Accrued *uint256.Int `json:"accrued"`
	// Withdrawn is the base-unit amount paid out.
	Withdrawn *uint256.Int `json:"withdrawn"`
	// SnapshotBalance is the balance held at deposit SnapshotSeq.
	SnapshotBalance *uint256.Int `json:"snapshot_balance"`
	SnapshotSeq     uint64       `json:"snapshot_seq"`
}

func newAccount(checkpoint *uint256.Int) *Account {
	return &Account{
		Checkpoint:      checkpoint.Clone(),
		Accrued:         units.Zero(),
		Withdrawn:       units.Zero(),
		SnapshotBalance: units.Zero(),
	}
}

// LastDeposit records the most recent deposit.
type LastDeposit struct {
	Amount *uint256.Int `json:"amount"`
	Supply *uint256.Int `json:"supply"`
	Seq    uint64       `json:"seq"`
}

// Ledger tracks entitlements to deposited value.
type Ledger struct {
	shares Shares

	perShare  *uint256.Int // magnified, cumulative
	carry     *uint256.Int // magnified remainder of the last division
	deposited *uint256.Int
	withdrawn *uint256.Int
	last      LastDeposit

	accounts map[address.Address]*Account
	inFlight map[address.Address]bool
}

// NewLedger returns an empty ledger distributing over shares.
func NewLedger(shares Shares) *Ledger {
	return &Ledger{
		shares:    shares,
		perShare:  units.Zero(),
		carry:     units.Zero(),
		deposited: units.Zero(),
		withdrawn: units.Zero(),
		last:      LastDeposit{Amount: units.Zero(), Supply: units.Zero()},
		accounts:  make(map[address.Address]*Account),
		inFlight:  make(map[address.Address]bool),
	}
}

// Deposit distributes amount over the current supply.
func (l *Ledger) Deposit(amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	supply := units.Or(l.shares.TotalSupply())
	if supply.IsZero() {
		return ErrNothingToDistribute
	}
	deposited, err := units.Add(l.deposited, amount)
	if err != nil || deposited.Gt(MaxDeposited) {
		return fmt.Errorf("%w: deposited=%s amount=%s", ErrDepositCap, l.deposited, amount)
	}

	// amount*Magnitude fits: amount <= MaxDeposited.
	numerator, overflow := new(uint256.Int).AddOverflow(new(uint256.Int).Mul(amount, Magnitude), l.carry)
	if overflow {
		return fmt.Errorf("%w: amount=%s carry=%s", ErrDepositCap, amount, l.carry)
	}
	quo, rem := new(uint256.Int).DivMod(numerator, supply, new(uint256.Int))

	perShare, err := units.Add(l.perShare, quo)
	if err != nil {
		return fmt.Errorf("dividend: accumulator: %w", err)
	}

	l.perShare = perShare
	l.carry = rem
	l.deposited = deposited
	l.last = LastDeposit{Amount: amount.Clone(), Supply: supply.Clone(), Seq: l.last.Seq + 1}
	return nil
}

func (l *Ledger) account(holder address.Address) *Account {
	acct, ok := l.accounts[holder]
	if !ok {
		acct = newAccount(l.perShare)
		l.accounts[holder] = acct
	}
	return acct
}

// accrual returns balance * (perShare - checkpoint).
func (l *Ledger) accrual(acct *Account, balance *uint256.Int) (*uint256.Int, error) {
	growth, err := units.Sub(l.perShare, acct.Checkpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint ahead of accumulator", ErrConservation)
	}
	return units.Mul(balance, growth)
}

// Settle folds accrued value into the holder's record at its current
// balance. Call it before every change to that balance.
func (l *Ledger) Settle(holder address.Address) error {
	acct := l.account(holder)
	balance := units.Or(l.shares.BalanceOf(holder))

	if acct.SnapshotSeq < l.last.Seq {
		acct.SnapshotBalance = balance.Clone()
		acct.SnapshotSeq = l.last.Seq
	}
	if acct.Checkpoint.Eq(l.perShare) {
		return nil
	}
	gained, err := l.accrual(acct, balance)
	if err != nil {
		return err
	}
	accrued, err := units.Add(acct.Accrued, gained)
	if err != nil {
		return err
	}
	acct.Accrued = accrued
	acct.Checkpoint = l.perShare.Clone()
	return nil
}

// Entitlement returns the holder's cumulative magnified entitlement.
func (l *Ledger) Entitlement(holder address.Address) (*uint256.Int, error) {
	acct, ok := l.accounts[holder]
	if !ok {
		acct = newAccount(units.Zero())
	}
	gained, err := l.accrual(acct, units.Or(l.shares.BalanceOf(holder)))
	if err != nil {
		return nil, err
	}
	return units.Add(acct.Accrued, gained)
}

// Claimable returns the whole base units the holder may withdraw now.
func (l *Ledger) Claimable(holder address.Address) (*uint256.Int, error) {
	ent, err := l.Entitlement(holder)
	if err != nil {
		return nil, err
	}
	earned := new(uint256.Int).Div(ent, Magnitude)
	withdrawn := units.Zero()
	if acct, ok := l.accounts[holder]; ok {
		withdrawn = acct.Withdrawn
	}
	if earned.Lt(withdrawn) {
		return nil, fmt.Errorf("%w: %s earned=%s withdrawn=%s", ErrNegativeClaim, holder, earned, withdrawn)
	}
	return new(uint256.Int).Sub(earned, withdrawn), nil
}

// Withdrawn returns the base units already paid to holder.
func (l *Ledger) Withdrawn(holder address.Address) *uint256.Int {
	if acct, ok := l.accounts[holder]; ok {
		return acct.Withdrawn.Clone()
	}
	return units.Zero()
}

// UnpaidRemainder returns (balance * amount) mod supply for the most recent
// deposit, the holder's share of that deposit lost to integer division
// before magnification. It is informational.
func (l *Ledger) UnpaidRemainder(holder address.Address) *uint256.Int {
	if l.last.Seq == 0 {
		return units.Zero()
	}
	balance := units.Or(l.shares.BalanceOf(holder))
	if acct, ok := l.accounts[holder]; ok && acct.SnapshotSeq == l.last.Seq {
		balance = acct.SnapshotBalance
	}
	return new(uint256.Int).MulMod(balance, l.last.Amount, l.last.Supply)
}

// TotalDeposited returns the cumulative deposits.
func (l *Ledger) TotalDeposited() *uint256.Int { return l.deposited.Clone() }

// TotalWithdrawn returns the cumulative payouts.
func (l *Ledger) TotalWithdrawn() *uint256.Int { return l.withdrawn.Clone() }

// PerShare returns the magnified accumulator.
func (l *Ledger) PerShare() *uint256.Int { return l.perShare.Clone() }

// Last returns the most recent deposit record.
func (l *Ledger) Last() LastDeposit {
	return LastDeposit{Amount: l.last.Amount.Clone(), Supply: l.last.Supply.Clone(), Seq: l.last.Seq}
}

// Holders returns every address with a dividend record.
func (l *Ledger) Holders() []address.Address {
	out := make([]address.Address, 0, len(l.accounts))
	for h := range l.accounts {
		out = append(out, h)
	}
	return out
}

// Reserved returns deposited value not attributable to any holder:
// deposited - withdrawn - sum of claimable.
func (l *Ledger) Reserved() (*uint256.Int, error) {
	reserved, err := units.Sub(l.deposited, l.withdrawn)
	if err != nil {
		return nil, fmt.Errorf("%w: withdrawn exceeds deposited", ErrConservation)
	}
	for h := range l.accounts {
		c, err := l.Claimable(h)
		if err != nil {
			return nil, err
		}
		if reserved, err = units.Sub(reserved, c); err != nil {
			return nil, fmt.Errorf("%w: claimable exceeds undistributed", ErrConservation)
		}
	}
	return reserved, nil
}

// Audit checks that claimable, reserved and withdrawn value sum exactly to
// deposits, and that reserved value equals the carried and fractional
// magnified remainders.
func (l *Ledger) Audit() error {
	reserved, err := l.Reserved()
	if err != nil {
		return err
	}
	fractions := l.carry.Clone()
	for h := range l.accounts {
		ent, err := l.Entitlement(h)
		if err != nil {
			return err
		}
		if fractions, err = units.Add(fractions, new(uint256.Int).Mod(ent, Magnitude)); err != nil {
			return err
		}
	}
	want, err := units.Mul(reserved, Magnitude)
	if err != nil {
		return err
	}
	if !fractions.Eq(want) {
		return fmt.Errorf("%w: remainders=%s reserved*magnitude=%s", ErrConservation, fractions, want)
	}
	if supply := units.Or(l.shares.TotalSupply()); !supply.IsZero() && !l.carry.Lt(supply) {
		return fmt.Errorf("%w: carry %s >= supply %s", ErrConservation, l.carry, supply)
	}
	return nil
}
