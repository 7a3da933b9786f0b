// Package vault escrows sale contributions until the sale is finalized, then
// either releases them to the operating wallet or refunds each investor.
package vault

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/clock"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// State is the vault lifecycle stage.
type State int

const (
	Active State = iota
	Refunding
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Refunding:
		return "refunding"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a RefundVault. Zero fields get defaults.
type Options struct {
	Events event.Sink
	Clock  clock.Clock
	Logger log.Logger
}

// RefundVault holds contributions in escrow. It is safe for concurrent use.
type RefundVault struct {
	mu sync.Mutex

	wallet    address.Address
	state     State
	deposited map[address.Address]*uint256.Int
	balance   *uint256.Int

	payer  dividend.Payer
	events event.Sink
	clock  clock.Clock
	logger log.Logger
}

// New creates an Active vault that releases to wallet and pays through payer.
func New(wallet address.Address, payer dividend.Payer, opts Options) (*RefundVault, error) {
	if wallet.IsZero() {
		return nil, ErrInvalidWallet
	}
	if payer == nil {
		return nil, dividend.ErrNilPayer
	}
	v := &RefundVault{
		wallet:    wallet,
		deposited: make(map[address.Address]*uint256.Int),
		balance:   units.Zero(),
		payer:     payer,
		events:    opts.Events,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
	if v.events == nil {
		v.events = event.Discard
	}
	if v.clock == nil {
		v.clock = clock.System{}
	}
	if v.logger == nil {
		v.logger = log.NewNopLogger()
	}
	v.logger = v.logger.With("module", "vault")
	return v, nil
}

func (v *RefundVault) emit(e event.Event) {
	e.At = v.clock.Now()
	v.events.Emit(e)
}

// Wallet returns the release destination.
func (v *RefundVault) Wallet() address.Address { return v.wallet }

// State returns the current lifecycle stage.
func (v *RefundVault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Balance returns the escrowed total.
func (v *RefundVault) Balance() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balance.Clone()
}

// Deposited returns the value escrowed for investor.
func (v *RefundVault) Deposited(investor address.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return units.Or(v.deposited[investor]).Clone()
}

// Deposit escrows amount for investor.
func (v *RefundVault) Deposit(investor address.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Active {
		return fmt.Errorf("%w: state=%s", ErrNotActive, v.state)
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	balance, err := units.Add(v.balance, amount)
	if err != nil {
		return fmt.Errorf("vault: deposit: %w", err)
	}
	v.deposited[investor] = new(uint256.Int).Add(units.Or(v.deposited[investor]), amount)
	v.balance = balance
	return nil
}

// Reverse takes back amount of investor's escrow while the vault is Active.
// It undoes a Deposit whose purchase could not complete.
func (v *RefundVault) Reverse(investor address.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Active {
		return fmt.Errorf("%w: state=%s", ErrNotActive, v.state)
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	held := units.Or(v.deposited[investor])
	if held.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, reverse %s", ErrExceedsDeposit, investor, held, amount)
	}
	if rest := new(uint256.Int).Sub(held, amount); rest.IsZero() {
		delete(v.deposited, investor)
	} else {
		v.deposited[investor] = rest
	}
	v.balance = new(uint256.Int).Sub(v.balance, amount)
	return nil
}

// EnableRefunds moves an Active vault to Refunding.
func (v *RefundVault) EnableRefunds() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Active {
		return fmt.Errorf("%w: state=%s", ErrNotActive, v.state)
	}
	v.state = Refunding
	v.emit(event.Event{Kind: event.RefundsEnabled, Amount: v.balance.Clone()})
	v.logger.Info("refunds enabled", "escrowed", v.balance)
	return nil
}

// Close releases the escrowed total to the wallet and moves the vault to
// Closed. A failed payment leaves the vault Active.
func (v *RefundVault) Close(ctx context.Context) error {
	v.mu.Lock()
	if v.state != Active {
		state := v.state
		v.mu.Unlock()
		return fmt.Errorf("%w: state=%s", ErrNotActive, state)
	}
	amount := v.balance
	v.state = Closed
	v.balance = units.Zero()
	v.mu.Unlock()

	var err error
	if !amount.IsZero() {
		err = v.payer.Pay(ctx, v.wallet, amount)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state = Active
		v.balance = new(uint256.Int).Add(v.balance, amount)
		v.logger.Error("release failed", "wallet", v.wallet, "amount", amount, "err", err)
		return fmt.Errorf("%w: release to %s: %w", ErrPaymentFailed, v.wallet, err)
	}
	v.emit(event.Event{Kind: event.VaultClosed, To: v.wallet, Amount: amount.Clone()})
	v.logger.Info("vault closed", "wallet", v.wallet, "released", amount)
	return nil
}

// Refund returns the investor's escrowed value. Only a Refunding vault
// pays refunds; each investor is paid at most once.
func (v *RefundVault) Refund(ctx context.Context, investor address.Address) (*uint256.Int, error) {
	v.mu.Lock()
	if v.state != Refunding {
		state := v.state
		v.mu.Unlock()
		return nil, fmt.Errorf("%w: state=%s", ErrNotRefunding, state)
	}
	amount := units.Or(v.deposited[investor])
	if amount.IsZero() {
		v.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNothingToRefund, investor)
	}
	delete(v.deposited, investor)
	v.balance = new(uint256.Int).Sub(v.balance, amount)
	v.mu.Unlock()

	err := v.payer.Pay(ctx, investor, amount)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.deposited[investor] = new(uint256.Int).Add(units.Or(v.deposited[investor]), amount)
		v.balance = new(uint256.Int).Add(v.balance, amount)
		return nil, fmt.Errorf("%w: refund to %s: %w", ErrPaymentFailed, investor, err)
	}
	v.emit(event.Event{Kind: event.Refund, To: investor, Amount: amount.Clone()})
	v.logger.Info("refunded", "investor", investor, "amount", amount)
	return amount, nil
}
