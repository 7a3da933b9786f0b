package token

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

func claimable(t *testing.T, tok *Token, h address.Address) string {
	t.Helper()
	c, err := tok.Claimable(h)
	require.NoError(t, err)
	return c.Dec()
}

func TestDividendLifecycle(t *testing.T) {
	ctx := context.Background()
	tok, payer, rec := newTestToken(t)
	require.NoError(t, tok.Mint(owner, account[0], tokens(10000)))
	require.NoError(t, tok.FinishMinting(owner))

	require.NoError(t, tok.Transfer(account[0], account[1], tokens(5000)))
	assert.Equal(t, "0", claimable(t, tok, account[0]))

	// Plain value is returned and never distributed.
	paid, err := tok.Receive(ctx, account[0], units.One)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	assert.Equal(t, units.One.Dec(), payer.Paid(account[0]).Dec())
	deposited, _ := tok.DividendTotals()
	assert.True(t, deposited.IsZero())

	require.NoError(t, tok.Deposit(account[1], tokens(5)))
	half := uint256.MustFromDecimal("2500000000000000000")
	assert.Equal(t, half.Dec(), claimable(t, tok, account[0]))
	assert.Equal(t, half.Dec(), claimable(t, tok, account[1]))

	require.NoError(t, tok.Deposit(account[0], units.One))
	require.NoError(t, tok.Deposit(account[0], units.One))
	assert.Equal(t, "3500000000000000000", claimable(t, tok, account[0]))

	// A zero-value receive withdraws.
	paid, err = tok.Receive(ctx, account[1], units.Zero())
	require.NoError(t, err)
	assert.Equal(t, "3500000000000000000", paid.Dec())
	assert.Equal(t, "3500000000000000000", payer.Paid(account[1]).Dec())

	paid, err = tok.Withdraw(ctx, account[1])
	require.NoError(t, err)
	assert.True(t, paid.IsZero(), "second withdraw is a no-op")
	assert.Len(t, rec.OfKind(event.DividendPayout), 1)

	// transfer -> distribute -> transfer -> distribute
	_, err = tok.Withdraw(ctx, account[0])
	require.NoError(t, err)
	require.NoError(t, tok.Transfer(account[0], account[1], tokens(5000)))
	require.NoError(t, tok.Deposit(account[0], units.One))
	require.NoError(t, tok.Transfer(account[1], account[2], tokens(5000)))
	require.NoError(t, tok.Deposit(account[0], units.One))

	assert.Equal(t, "0", claimable(t, tok, account[0]))
	assert.Equal(t, "1500000000000000000", claimable(t, tok, account[1]))
	assert.Equal(t, "500000000000000000", claimable(t, tok, account[2]))
	require.NoError(t, tok.Audit())
}

func TestPayoutTo_SmallAmounts(t *testing.T) {
	ctx := context.Background()
	tok, _, _ := newTestToken(t)
	require.NoError(t, tok.Mint(owner, account[0], tokens(5)))
	require.NoError(t, tok.Mint(owner, account[1], tokens(3)))
	require.NoError(t, tok.Mint(owner, account[2], tokens(2)))
	require.NoError(t, tok.FinishMinting(owner))

	for i := 0; i < 5; i++ {
		require.NoError(t, tok.Deposit(owner, units.U(1)))
	}
	assert.Equal(t, "2", claimable(t, tok, account[0]))
	assert.Equal(t, "1", claimable(t, tok, account[1]))
	assert.Equal(t, "1", claimable(t, tok, account[2]))

	paid, err := tok.PayoutTo(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), paid.Uint64())
	reserved, err := tok.Reserved()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reserved.Uint64())

	for i := 0; i < 5; i++ {
		require.NoError(t, tok.Deposit(owner, units.U(1)))
	}
	assert.Equal(t, "3", claimable(t, tok, account[0]))
	assert.Equal(t, "2", claimable(t, tok, account[1]))
	assert.Equal(t, "1", claimable(t, tok, account[2]))

	paid, err = tok.PayoutTo(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), paid.Uint64())
	reserved, err = tok.Reserved()
	require.NoError(t, err)
	assert.True(t, reserved.IsZero())
	require.NoError(t, tok.Audit())
}

func TestWithdraw_FailedPaymentRollsBack(t *testing.T) {
	ctx := context.Background()
	tok, payer, _ := newTestToken(t)
	require.NoError(t, tok.Mint(owner, account[0], tokens(1)))
	require.NoError(t, tok.Mint(owner, account[1], tokens(1)))
	require.NoError(t, tok.Deposit(owner, units.U(10)))

	payer.FailFor[account[0]] = true
	_, err := tok.Withdraw(ctx, account[0])
	assert.ErrorIs(t, err, ErrPayoutFailed)
	assert.Equal(t, "5", claimable(t, tok, account[0]))
	assert.True(t, tok.Withdrawn(account[0]).IsZero())

	paid, err := tok.PayoutTo(ctx, account[:2])
	assert.ErrorIs(t, err, ErrPayoutFailed)
	assert.Equal(t, uint64(5), paid.Uint64())
	assert.Equal(t, "5", payer.Paid(account[1]).Dec())

	payer.FailFor[account[0]] = false
	paid, err = tok.Withdraw(ctx, account[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(5), paid.Uint64())
	require.NoError(t, tok.Audit())
}

func TestWithdraw_ReentryRejected(t *testing.T) {
	ctx := context.Background()
	tok, payer, _ := newTestToken(t)
	require.NoError(t, tok.Mint(owner, account[0], tokens(1)))
	require.NoError(t, tok.Deposit(owner, units.U(10)))

	var reentryErr error
	payer.PayFn = func(ctx context.Context, to address.Address, amount *uint256.Int) error {
		_, reentryErr = tok.Withdraw(ctx, to)
		return nil
	}
	paid, err := tok.Withdraw(ctx, account[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(10), paid.Uint64())
	assert.ErrorIs(t, reentryErr, dividend.ErrPayoutInFlight)
	assert.Equal(t, "10", payer.Paid(account[0]).Dec())
}

func TestWithdraw_NilPayer(t *testing.T) {
	tok := New(address.Derive("token"), owner, Options{})
	_, err := tok.Withdraw(context.Background(), account[0])
	assert.ErrorIs(t, err, dividend.ErrNilPayer)
}

func TestDeposit_NoSupply(t *testing.T) {
	tok, _, _ := newTestToken(t)
	assert.ErrorIs(t, tok.Deposit(owner, units.U(1)), dividend.ErrNothingToDistribute)
}

func TestSnapshotRestore(t *testing.T) {
	tok, _, _ := newTestToken(t)
	require.NoError(t, tok.Mint(owner, account[0], tokens(7)))
	require.NoError(t, tok.Mint(owner, account[1], tokens(3)))
	require.NoError(t, tok.FinishMinting(owner))
	require.NoError(t, tok.Approve(account[0], account[2], tokens(1)))
	require.NoError(t, tok.Deposit(owner, units.U(999)))

	snap := tok.Snapshot()
	restored := New(tok.Address(), address.Zero, Options{})
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, owner, restored.Owner())
	assert.True(t, restored.MintingFinished())
	assert.Equal(t, tok.TotalSupply().Dec(), restored.TotalSupply().Dec())
	assert.Equal(t, tokens(1).Dec(), restored.Allowance(account[0], account[2]).Dec())
	assert.Equal(t, claimable(t, tok, account[0]), claimable(t, restored, account[0]))
	require.NoError(t, restored.Audit())

	snap.Supply = tokens(11)
	assert.ErrorIs(t, restored.Restore(snap), ErrSupplyMismatch)
}
