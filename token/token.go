// Package token implements the sale token: a mintable balance table with a
// one-way minting latch and an attached dividend ledger.
package token

import (
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

// holdings is the unlocked balance view handed to the dividend ledger.
type holdings struct {
	balances map[address.Address]*uint256.Int
	supply   *uint256.Int
}

func (h *holdings) BalanceOf(a address.Address) *uint256.Int { return units.Or(h.balances[a]) }

func (h *holdings) TotalSupply() *uint256.Int { return h.supply }

// Options configures a Token. Zero fields get defaults.
type Options struct {
	Payer  dividend.Payer
	Events event.Sink
	Clock  clock.Clock
	Logger log.Logger
}

// Token is safe for concurrent use. Every call is one atomic transition;
// outbound payments run outside the lock after bookkeeping is committed.
type Token struct {
	mu sync.Mutex

	self            address.Address
	owner           address.Address
	mintingFinished bool
	held            *holdings
	allowances      map[address.Address]map[address.Address]*uint256.Int
	dividends       *dividend.Ledger

	payer  dividend.Payer
	events event.Sink
	clock  clock.Clock
	logger log.Logger
}

// New creates a token at address self whose minting authority is owner.
func New(self, owner address.Address, opts Options) *Token {
	held := &holdings{balances: make(map[address.Address]*uint256.Int), supply: units.Zero()}
	t := &Token{
		self:       self,
		owner:      owner,
		held:       held,
		allowances: make(map[address.Address]map[address.Address]*uint256.Int),
		dividends:  dividend.NewLedger(held),
		payer:      opts.Payer,
		events:     opts.Events,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
	if t.events == nil {
		t.events = event.Discard
	}
	if t.clock == nil {
		t.clock = clock.System{}
	}
	if t.logger == nil {
		t.logger = log.NewNopLogger()
	}
	t.logger = t.logger.With("module", "token")
	return t
}

func (t *Token) emit(e event.Event) {
	e.At = t.clock.Now()
	t.events.Emit(e)
}

// Address returns the token's own address.
func (t *Token) Address() address.Address { return t.self }

// Owner returns the current minting authority.
func (t *Token) Owner() address.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.owner
}

// MintingFinished reports whether the minting latch is set.
func (t *Token) MintingFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mintingFinished
}

// TotalSupply returns the sum of all balances.
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.held.supply.Clone()
}

// BalanceOf returns the holder's balance.
func (t *Token) BalanceOf(holder address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.held.BalanceOf(holder).Clone()
}

// Holders returns every address with a non-zero balance.
func (t *Token) Holders() []address.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]address.Address, 0, len(t.held.balances))
	for a, b := range t.held.balances {
		if !b.IsZero() {
			out = append(out, a)
		}
	}
	return out
}

// Mint creates amount tokens for to. Only the owner may mint, and only
// before FinishMinting.
func (t *Token) Mint(caller, to address.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.owner {
		return ErrUnauthorized
	}
	if t.mintingFinished {
		return ErrMintingFinished
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	supply, err := units.Add(t.held.supply, amount)
	if err != nil {
		return fmt.Errorf("token: mint: %w", err)
	}
	if err := t.dividends.Settle(to); err != nil {
		return err
	}

	t.held.balances[to] = new(uint256.Int).Add(t.held.BalanceOf(to), amount)
	t.held.supply = supply

	t.emit(event.Event{Kind: event.Mint, To: to, Tokens: amount.Clone()})
	t.logger.Debug("minted", "to", to, "amount", amount)
	return nil
}

// FinishMinting sets the minting latch, which also enables transfers.
func (t *Token) FinishMinting(caller address.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.owner {
		return ErrUnauthorized
	}
	if t.mintingFinished {
		return ErrMintingFinished
	}
	t.mintingFinished = true
	t.emit(event.Event{Kind: event.MintFinished, Tokens: t.held.supply.Clone()})
	t.logger.Info("minting finished", "supply", t.held.supply)
	return nil
}

// TransferOwnership hands minting authority to newOwner.
func (t *Token) TransferOwnership(caller, newOwner address.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != t.owner {
		return ErrUnauthorized
	}
	if newOwner.IsZero() {
		return ErrInvalidRecipient
	}
	prev := t.owner
	t.owner = newOwner
	t.emit(event.Event{Kind: event.OwnershipTransferred, From: prev, To: newOwner})
	t.logger.Info("ownership transferred", "from", prev, "to", newOwner)
	return nil
}

// Transfer moves amount from one holder to another. Before minting finishes
// only the owner may transfer.
func (t *Token) Transfer(from, to address.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferLocked(from, to, amount)
}

func (t *Token) transferLocked(from, to address.Address, amount *uint256.Int) error {
	if !t.mintingFinished && from != t.owner {
		return ErrTransfersDisabled
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	amount = units.Or(amount)
	bal := t.held.BalanceOf(from)
	if bal.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, bal, amount)
	}
	if err := t.dividends.Settle(from); err != nil {
		return err
	}
	if err := t.dividends.Settle(to); err != nil {
		return err
	}

	t.held.balances[from] = new(uint256.Int).Sub(bal, amount)
	t.held.balances[to] = new(uint256.Int).Add(t.held.BalanceOf(to), amount)

	t.emit(event.Event{Kind: event.Transfer, From: from, To: to, Tokens: amount.Clone()})
	return nil
}

// Approve sets the amount spender may transfer out of holder's balance.
func (t *Token) Approve(holder, spender address.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if spender.IsZero() {
		return ErrInvalidRecipient
	}
	m, ok := t.allowances[holder]
	if !ok {
		m = make(map[address.Address]*uint256.Int)
		t.allowances[holder] = m
	}
	m[spender] = units.Or(amount).Clone()
	t.emit(event.Event{Kind: event.Approval, From: holder, To: spender, Tokens: units.Or(amount).Clone()})
	return nil
}

// Allowance returns the amount spender may still transfer from holder.
func (t *Token) Allowance(holder, spender address.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return units.Or(t.allowances[holder][spender]).Clone()
}

// TransferFrom moves amount from holder to to on the spender's allowance.
func (t *Token) TransferFrom(spender, holder, to address.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	amount = units.Or(amount)
	allowed := units.Or(t.allowances[holder][spender])
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: allowed %s, need %s", ErrInsufficientAllowance, allowed, amount)
	}
	if err := t.transferLocked(holder, to, amount); err != nil {
		return err
	}
	if m := t.allowances[holder]; m != nil {
		m[spender] = new(uint256.Int).Sub(allowed, amount)
	}
	return nil
}
