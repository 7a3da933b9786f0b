// Package sale runs a phase-priced, capped token sale and its one-time
// finalization.
package sale

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/clock"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/units"
	"github.com/bitfsorg/libcrowdsale-go/vault"
)

// Token is the mintable supply the sale controls until finalization.
type Token interface {
	Address() address.Address
	Mint(caller, to address.Address, amount *uint256.Int) error
	FinishMinting(caller address.Address) error
	TransferOwnership(caller, newOwner address.Address) error
	TotalSupply() *uint256.Int
}

// Escrow holds contributions until finalization.
type Escrow interface {
	Deposit(investor address.Address, amount *uint256.Int) error
	Reverse(investor address.Address, amount *uint256.Int) error
	EnableRefunds() error
	Close(ctx context.Context) error
	Refund(ctx context.Context, investor address.Address) (*uint256.Int, error)
	State() vault.State
}

// Stage is the sale lifecycle latch. It only moves forward.
type Stage int

const (
	Active Stage = iota
	Successful
	Unsuccessful
	Closed
)

func (s Stage) String() string {
	switch s {
	case Active:
		return "active"
	case Successful:
		return "successful"
	case Unsuccessful:
		return "unsuccessful"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Crowdsale. Zero fields get defaults.
type Options struct {
	Events event.Sink
	Clock  clock.Clock
	Logger log.Logger
}

// Crowdsale is safe for concurrent use. Each call is serialized; the escrow
// must not call back into the sale.
type Crowdsale struct {
	mu sync.Mutex

	params Params
	phases *PhaseTable
	token  Token
	escrow Escrow

	end        time.Time
	tokensSold *uint256.Int
	raised     *uint256.Int
	stage      Stage
	outcome    Stage
	minter     address.Address
	desk       address.Address

	events event.Sink
	clock  clock.Clock
	logger log.Logger
}

// New creates an Active sale. The token's minting authority must already
// be params.Self.
func New(params Params, tok Token, escrow Escrow, opts Options) (*Crowdsale, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	phases, err := NewPhaseTable(params.Phases, params.BonusPercent, params.BonusThreshold)
	if err != nil {
		return nil, err
	}
	params.MinPurchase = units.Or(params.MinPurchase)
	params.Goal = units.Or(params.Goal)

	c := &Crowdsale{
		params:     params,
		phases:     phases,
		token:      tok,
		escrow:     escrow,
		end:        params.End,
		tokensSold: units.Zero(),
		raised:     units.Zero(),
		events:     opts.Events,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
	if c.events == nil {
		c.events = event.Discard
	}
	if c.clock == nil {
		c.clock = clock.System{}
	}
	if c.logger == nil {
		c.logger = log.NewNopLogger()
	}
	c.logger = c.logger.With("module", "sale")
	return c, nil
}

func (c *Crowdsale) emit(e event.Event) {
	e.At = c.clock.Now()
	c.events.Emit(e)
}

// Phases returns the pricing schedule.
func (c *Crowdsale) Phases() *PhaseTable { return c.phases }

// Params returns the deployment parameters with the current end time.
func (c *Crowdsale) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.params
	p.End = c.end
	return p
}

// CurrentPhase returns the active phase index.
func (c *Crowdsale) CurrentPhase() int {
	return c.phases.Current(c.clock.Now())
}

// Status is a point-in-time view of the sale.
type Status struct {
	Stage      Stage
	Outcome    Stage
	Phase      int
	Now        time.Time
	Start      time.Time
	End        time.Time
	TokensSold *uint256.Int
	Cap        *uint256.Int
	Raised     *uint256.Int
	Goal       *uint256.Int
	Minter     address.Address
	Desk       address.Address
	Escrow     vault.State
}

// Status returns the current sale state.
func (c *Crowdsale) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	return Status{
		Stage:      c.stage,
		Outcome:    c.outcome,
		Phase:      c.phases.Current(now),
		Now:        now,
		Start:      c.params.Start,
		End:        c.end,
		TokensSold: c.tokensSold.Clone(),
		Cap:        c.params.TokensSoldCap.Clone(),
		Raised:     c.raised.Clone(),
		Goal:       c.params.Goal.Clone(),
		Minter:     c.minter,
		Desk:       c.desk,
		Escrow:     c.escrow.State(),
	}
}

// Finalized reports whether finalization has run.
func (c *Crowdsale) Finalized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage != Active
}

func (c *Crowdsale) soldOut() bool {
	return !c.tokensSold.Lt(c.params.TokensSoldCap)
}
