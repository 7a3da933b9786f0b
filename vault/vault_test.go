package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/fault"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

func makeAddr(seed byte) address.Address {
	var a address.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	wallet   = makeAddr(0xEE)
	investor = makeAddr(0x01)
	other    = makeAddr(0x02)
)

type payment struct {
	to     address.Address
	amount *uint256.Int
}

func newTestVault(t *testing.T, fail *bool) (*RefundVault, *[]payment, *event.Recorder) {
	t.Helper()
	var paid []payment
	payer := dividend.PayerFunc(func(_ context.Context, to address.Address, amount *uint256.Int) error {
		if fail != nil && *fail {
			return errors.New("rejected")
		}
		paid = append(paid, payment{to, amount.Clone()})
		return nil
	})
	rec := event.NewRecorder()
	v, err := New(wallet, payer, Options{Events: rec})
	require.NoError(t, err)
	return v, &paid, rec
}

func TestNew_Validation(t *testing.T) {
	_, err := New(address.Zero, dividend.PayerFunc(nil), Options{})
	assert.ErrorIs(t, err, ErrInvalidWallet)
	_, err = New(wallet, nil, Options{})
	assert.ErrorIs(t, err, dividend.ErrNilPayer)
}

func TestCloseReleasesToWallet(t *testing.T) {
	v, paid, rec := newTestVault(t, nil)
	require.NoError(t, v.Deposit(investor, units.U(3)))
	require.NoError(t, v.Deposit(other, units.U(4)))
	require.NoError(t, v.Deposit(investor, units.U(1)))
	assert.Equal(t, uint64(4), v.Deposited(investor).Uint64())
	assert.Equal(t, uint64(8), v.Balance().Uint64())

	assert.ErrorIs(t, v.Deposit(investor, units.Zero()), ErrInvalidAmount)

	require.NoError(t, v.Close(context.Background()))
	assert.Equal(t, Closed, v.State())
	require.Len(t, *paid, 1)
	assert.Equal(t, wallet, (*paid)[0].to)
	assert.Equal(t, uint64(8), (*paid)[0].amount.Uint64())
	assert.Len(t, rec.OfKind(event.VaultClosed), 1)

	assert.ErrorIs(t, v.Deposit(investor, units.U(1)), ErrNotActive)
	assert.ErrorIs(t, v.EnableRefunds(), ErrNotActive)
	_, err := v.Refund(context.Background(), investor)
	assert.ErrorIs(t, err, ErrNotRefunding)
}

func TestReverse(t *testing.T) {
	v, _, _ := newTestVault(t, nil)
	require.NoError(t, v.Deposit(investor, units.U(5)))
	require.NoError(t, v.Deposit(other, units.U(2)))

	tests := []struct {
		name    string
		who     address.Address
		amount  *uint256.Int
		wantErr error
	}{
		{"zero", investor, units.Zero(), ErrInvalidAmount},
		{"more than held", other, units.U(3), ErrExceedsDeposit},
		{"unknown investor", makeAddr(0x03), units.U(1), ErrExceedsDeposit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, v.Reverse(tt.who, tt.amount), tt.wantErr)
		})
	}
	assert.Equal(t, uint64(7), v.Balance().Uint64())

	require.NoError(t, v.Reverse(investor, units.U(2)))
	assert.Equal(t, uint64(3), v.Deposited(investor).Uint64())
	require.NoError(t, v.Reverse(investor, units.U(3)))
	assert.True(t, v.Deposited(investor).IsZero())
	assert.NotContains(t, v.Snapshot().Deposited, investor)
	assert.Equal(t, uint64(2), v.Balance().Uint64())

	require.NoError(t, v.EnableRefunds())
	assert.ErrorIs(t, v.Reverse(other, units.U(1)), ErrNotActive)
	assert.ErrorIs(t, v.Reverse(other, units.U(1)), fault.ErrTiming)
}

func TestCloseFailureStaysActive(t *testing.T) {
	fail := true
	v, _, _ := newTestVault(t, &fail)
	require.NoError(t, v.Deposit(investor, units.U(5)))

	err := v.Close(context.Background())
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, Active, v.State())
	assert.Equal(t, uint64(5), v.Balance().Uint64())

	fail = false
	require.NoError(t, v.Close(context.Background()))
	assert.Equal(t, Closed, v.State())
}

func TestRefunds(t *testing.T) {
	ctx := context.Background()
	fail := false
	v, paid, _ := newTestVault(t, &fail)
	require.NoError(t, v.Deposit(investor, units.U(5)))
	require.NoError(t, v.Deposit(other, units.U(2)))

	_, err := v.Refund(ctx, investor)
	assert.ErrorIs(t, err, ErrNotRefunding)
	assert.ErrorIs(t, err, fault.ErrTiming)

	require.NoError(t, v.EnableRefunds())
	assert.Equal(t, Refunding, v.State())
	assert.ErrorIs(t, v.Close(ctx), ErrNotActive)

	fail = true
	_, err = v.Refund(ctx, investor)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, uint64(5), v.Deposited(investor).Uint64())

	fail = false
	got, err := v.Refund(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.Uint64())
	assert.Equal(t, uint64(2), v.Balance().Uint64())

	_, err = v.Refund(ctx, investor)
	assert.ErrorIs(t, err, ErrNothingToRefund)

	require.Len(t, *paid, 1)
	assert.Equal(t, investor, (*paid)[0].to)
}

func TestSnapshotRestore(t *testing.T) {
	v, _, _ := newTestVault(t, nil)
	require.NoError(t, v.Deposit(investor, units.U(5)))
	require.NoError(t, v.EnableRefunds())

	snap := v.Snapshot()
	w, _, _ := newTestVault(t, nil)
	require.NoError(t, w.Restore(snap))
	assert.Equal(t, Refunding, w.State())
	assert.Equal(t, uint64(5), w.Deposited(investor).Uint64())

	snap.State = State(7)
	assert.Error(t, w.Restore(snap))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "refunding", Refunding.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
