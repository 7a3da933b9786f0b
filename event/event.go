// Package event carries the observable records emitted by ledger transitions.
package event

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
)

// Kind names an event type.
type Kind string

const (
	TokenPurchase            Kind = "TokenPurchase"
	ManualMint               Kind = "ManualMint"
	ManualMintRequiresRefund Kind = "ManualMintRequiresRefund"
	Finalized                Kind = "Finalized"
	Mint                     Kind = "Mint"
	MintFinished             Kind = "MintFinished"
	OwnershipTransferred     Kind = "OwnershipTransferred"
	Transfer                 Kind = "Transfer"
	Approval                 Kind = "Approval"
	DividendDeposit          Kind = "DividendDeposit"
	DividendPayout           Kind = "DividendPayout"
	RefundsEnabled           Kind = "RefundsEnabled"
	VaultClosed              Kind = "VaultClosed"
	Refund                   Kind = "Refund"
	EndTimeChanged           Kind = "EndTimeChanged"
	MinterChanged            Kind = "MinterChanged"
)

// Event is one emitted record. Amount is in base-asset units and Tokens in
// token units; either may be nil when it does not apply.
type Event struct {
	Kind   Kind            `json:"kind"`
	From   address.Address `json:"from"`
	To     address.Address `json:"to"`
	Amount *uint256.Int    `json:"amount,omitempty"`
	Tokens *uint256.Int    `json:"tokens,omitempty"`
	Detail string          `json:"detail,omitempty"`
	At     time.Time       `json:"at"`
}

// Sink receives events.
type Sink interface {
	Emit(Event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Recorder buffers events in emission order. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the buffered events and clears the buffer.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// OfKind returns the buffered events of kind k.
func (r *Recorder) OfKind(k Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
