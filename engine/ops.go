package engine

import (
	"context"
	"strings"
	"time"

	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/sale"
	"github.com/bitfsorg/libcrowdsale-go/settlement"
	"github.com/bitfsorg/libcrowdsale-go/store"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// Buy records a contribution of value satoshis from sender.
func (e *Engine) Buy(ctx context.Context, sender, beneficiary address.Address, value *uint256.Int) (sale.Purchase, error) {
	var p sale.Purchase
	args := map[string]string{"beneficiary": beneficiary.Hex(), "value": units.Or(value).Dec()}
	_, err := e.exec("buy", sender, args, func() (err error) {
		p, err = e.sale.Buy(ctx, sale.Order{Sender: sender, Beneficiary: beneficiary, Value: value})
		return err
	})
	return p, err
}

// DeskBuy records a contribution forwarded through the configured desk.
func (e *Engine) DeskBuy(ctx context.Context, sender, beneficiary address.Address, value *uint256.Int) (sale.Purchase, error) {
	if e.desk == nil {
		return sale.Purchase{}, ErrNoDesk
	}
	var p sale.Purchase
	args := map[string]string{"beneficiary": beneficiary.Hex(), "value": units.Or(value).Dec(), "desk": e.desk.Address().Hex()}
	_, err := e.exec("desk-buy", sender, args, func() (err error) {
		p, err = e.desk.Buy(ctx, sale.Order{Sender: sender, Beneficiary: beneficiary, Value: value})
		return err
	})
	return p, err
}

// Mint batch-mints tokens on behalf of the owner or minter.
func (e *Engine) Mint(caller address.Address, recipients []address.Address, amounts []*uint256.Int) (sale.ManualMint, error) {
	var m sale.ManualMint
	to := make([]string, len(recipients))
	for i, r := range recipients {
		to[i] = r.Hex()
	}
	amt := make([]string, len(amounts))
	for i, a := range amounts {
		amt[i] = units.Or(a).Dec()
	}
	args := map[string]string{"recipients": strings.Join(to, ","), "amounts": strings.Join(amt, ",")}
	_, err := e.exec("mint", caller, args, func() (err error) {
		m, err = e.sale.MintTokens(caller, recipients, amounts)
		return err
	})
	return m, err
}

// Finalize closes the sale.
func (e *Engine) Finalize(ctx context.Context, caller address.Address) (sale.Stage, error) {
	var outcome sale.Stage
	_, err := e.exec("finalize", caller, nil, func() (err error) {
		outcome, err = e.sale.Finalize(ctx)
		return err
	})
	return outcome, err
}

// Refund pays back an investor after an unsuccessful sale.
func (e *Engine) Refund(ctx context.Context, investor address.Address) (*uint256.Int, error) {
	var amount *uint256.Int
	_, err := e.exec("refund", investor, nil, func() (err error) {
		amount, err = e.sale.ClaimRefund(ctx, investor)
		return err
	})
	return amount, err
}

// Transfer moves tokens between holders.
func (e *Engine) Transfer(from, to address.Address, amount *uint256.Int) error {
	args := map[string]string{"to": to.Hex(), "amount": units.Or(amount).Dec()}
	_, err := e.exec("transfer", from, args, func() error {
		return e.token.Transfer(from, to, amount)
	})
	return err
}

// Approve sets spender's allowance over holder's tokens.
func (e *Engine) Approve(holder, spender address.Address, amount *uint256.Int) error {
	args := map[string]string{"spender": spender.Hex(), "amount": units.Or(amount).Dec()}
	_, err := e.exec("approve", holder, args, func() error {
		return e.token.Approve(holder, spender, amount)
	})
	return err
}

// TransferFrom moves holder's tokens using spender's allowance.
func (e *Engine) TransferFrom(spender, holder, to address.Address, amount *uint256.Int) error {
	args := map[string]string{"holder": holder.Hex(), "to": to.Hex(), "amount": units.Or(amount).Dec()}
	_, err := e.exec("transfer-from", spender, args, func() error {
		return e.token.TransferFrom(spender, holder, to, amount)
	})
	return err
}

// Deposit distributes amount satoshis of dividends over current holders.
func (e *Engine) Deposit(from address.Address, amount *uint256.Int) error {
	args := map[string]string{"amount": units.Or(amount).Dec()}
	_, err := e.exec("deposit", from, args, func() error {
		return e.token.Deposit(from, amount)
	})
	return err
}

// Withdraw pays holder's claimable dividends into the settlement queue.
func (e *Engine) Withdraw(ctx context.Context, holder address.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	_, err := e.exec("withdraw", holder, nil, func() (err error) {
		paid, err = e.token.Withdraw(ctx, holder)
		return err
	})
	return paid, err
}

// PayoutAll withdraws on behalf of every current holder.
func (e *Engine) PayoutAll(ctx context.Context, caller address.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	_, err := e.exec("payout-all", caller, nil, func() (err error) {
		paid, err = e.token.PayoutTo(ctx, e.token.Holders())
		return err
	})
	return paid, err
}

// SetEndTime extends the sale.
func (e *Engine) SetEndTime(caller address.Address, end time.Time) error {
	args := map[string]string{"end": end.UTC().Format(time.RFC3339)}
	_, err := e.exec("set-end", caller, args, func() error {
		return e.sale.SetEndTime(caller, end)
	})
	return err
}

// SetMinter delegates administrative minting.
func (e *Engine) SetMinter(caller, minter address.Address) error {
	args := map[string]string{"minter": minter.Hex()}
	_, err := e.exec("set-minter", caller, args, func() error {
		return e.sale.SetMinter(caller, minter)
	})
	return err
}

// Settle drains the queued payments into an unsigned payout transaction.
// The queue is only cleared once the drain is committed.
func (e *Engine) Settle(caller address.Address) (*transaction.Transaction, []settlement.Payment, error) {
	var (
		tx      *transaction.Transaction
		drained []settlement.Payment
	)
	_, err := e.exec("settle", caller, nil, func() (err error) {
		if tx, err = settlement.BuildPayoutTx(e.payments.Pending(), e.cfg.Mainnet()); err != nil {
			return err
		}
		drained = e.payments.Drain()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return tx, drained, nil
}

// Holding is one holder's token and dividend position.
type Holding struct {
	Balance   *uint256.Int
	Claimable *uint256.Int
	Withdrawn *uint256.Int
	Unpaid    *uint256.Int
	Escrowed  *uint256.Int
}

// Holding returns the position of holder.
func (e *Engine) Holding(holder address.Address) (Holding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	claimable, err := e.token.Claimable(holder)
	if err != nil {
		return Holding{}, err
	}
	return Holding{
		Balance:   e.token.BalanceOf(holder),
		Claimable: claimable,
		Withdrawn: e.token.Withdrawn(holder),
		Unpaid:    e.token.UnpaidRemainder(holder),
		Escrowed:  e.vault.Deposited(holder),
	}, nil
}

// Status is a point-in-time view of the whole ledger.
type Status struct {
	Sale              sale.Status
	Supply            *uint256.Int
	Holders           int
	MintingFinished   bool
	DividendDeposited *uint256.Int
	DividendWithdrawn *uint256.Int
	DividendReserved  *uint256.Int
	PendingPayments   int
	PendingSatoshis   uint64
	JournalSeq        uint64
	JournalHead       string
}

// Status returns the current ledger state.
func (e *Engine) Status() (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reserved, err := e.token.Reserved()
	if err != nil {
		return Status{}, err
	}
	pending := e.payments.Pending()
	total, err := settlement.Total(pending)
	if err != nil {
		return Status{}, err
	}
	seq, head, err := e.store.Head()
	if err != nil {
		return Status{}, err
	}
	deposited, withdrawn := e.token.DividendTotals()
	return Status{
		Sale:              e.sale.Status(),
		Supply:            e.token.TotalSupply(),
		Holders:           len(e.token.Holders()),
		MintingFinished:   e.token.MintingFinished(),
		DividendDeposited: deposited,
		DividendWithdrawn: withdrawn,
		DividendReserved:  reserved,
		PendingPayments:   len(pending),
		PendingSatoshis:   total,
		JournalSeq:        seq,
		JournalHead:       head,
	}, nil
}

// Pending returns the queued outbound payments.
func (e *Engine) Pending() []settlement.Payment { return e.payments.Pending() }

// Journal returns committed entries starting at from.
func (e *Engine) Journal(from uint64, limit int) ([]store.Entry, error) {
	return e.store.Journal(from, limit)
}

// VerifyJournal checks the whole hash chain.
func (e *Engine) VerifyJournal() (int, error) {
	entries, err := e.store.Journal(0, 0)
	if err != nil {
		return 0, err
	}
	return len(entries), store.VerifyJournal(entries, "")
}

// Phases returns the pricing schedule.
func (e *Engine) Phases() *sale.PhaseTable { return e.sale.Phases() }

// Mainnet reports the configured address encoding.
func (e *Engine) Mainnet() bool { return e.cfg.Mainnet() }
