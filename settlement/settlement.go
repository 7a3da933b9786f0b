// Package settlement records outbound base-asset payments and renders them
// as P2PKH outputs of an unsigned payout transaction for the operator to
// fund and sign.
package settlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/clock"
	"github.com/bitfsorg/libcrowdsale-go/dividend"
)

// Payment is one accepted outbound transfer, in satoshis.
type Payment struct {
	Seq    uint64          `json:"seq"`
	To     address.Address `json:"to"`
	Amount uint64          `json:"amount"`
	At     time.Time       `json:"at"`
}

// Ledger accepts payments and queues them for settlement. It implements
// dividend.Payer and is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	pending []Payment
	seq     uint64

	clock  clock.Clock
	logger log.Logger
}

var _ dividend.Payer = (*Ledger)(nil)

// NewLedger returns an empty payment ledger.
func NewLedger(c clock.Clock, logger log.Logger) *Ledger {
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ledger{clock: c, logger: logger.With("module", "settlement")}
}

// Pay queues amount for to. Amounts must fit in a satoshi output.
func (l *Ledger) Pay(ctx context.Context, to address.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	if !amount.IsUint64() {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.pending = append(l.pending, Payment{Seq: l.seq, To: to, Amount: amount.Uint64(), At: l.clock.Now()})
	l.logger.Debug("payment queued", "seq", l.seq, "to", to, "amount", amount)
	return nil
}

// Pending returns a copy of the queued payments.
func (l *Ledger) Pending() []Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Payment, len(l.pending))
	copy(out, l.pending)
	return out
}

// Drain returns the queued payments and clears the queue.
func (l *Ledger) Drain() []Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Snapshot is the persisted form of a Ledger.
type Snapshot struct {
	Seq     uint64    `json:"seq"`
	Pending []Payment `json:"pending"`
}

// Snapshot returns the queue state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Seq: l.lastSeq(), Pending: l.Pending()}
}

func (l *Ledger) lastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Restore replaces the queue state.
func (l *Ledger) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = s.Seq
	l.pending = append([]Payment(nil), s.Pending...)
}
