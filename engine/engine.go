// Package engine assembles the sale, token, vault and settlement ledger
// from configuration and persists every successful operation as a
// snapshot plus a journal entry.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"cosmossdk.io/log"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/clock"
	"github.com/bitfsorg/libcrowdsale-go/config"
	"github.com/bitfsorg/libcrowdsale-go/event"
	"github.com/bitfsorg/libcrowdsale-go/sale"
	"github.com/bitfsorg/libcrowdsale-go/settlement"
	"github.com/bitfsorg/libcrowdsale-go/store"
	"github.com/bitfsorg/libcrowdsale-go/token"
	"github.com/bitfsorg/libcrowdsale-go/vault"
)

var (
	// SaleAddress is the sale's own address and the token's initial owner.
	SaleAddress = address.Derive("crowdledger/sale")
	// TokenAddress is the token's address; it owns the token after a
	// successful finalization.
	TokenAddress = address.Derive("crowdledger/token")
)

const snapshotVersion = 1

// Snapshot is the persisted state of every component.
type Snapshot struct {
	Version    int                 `json:"version"`
	Sale       sale.State          `json:"sale"`
	Token      token.State         `json:"token"`
	Vault      vault.Snapshot      `json:"vault"`
	Settlement settlement.Snapshot `json:"settlement"`
}

// Options configures an Engine. Zero fields get defaults.
type Options struct {
	Clock  clock.Clock
	Logger log.Logger
}

// Engine serializes operations over the assembled ledger. An operation
// that fails leaves the last committed state in place.
type Engine struct {
	mu sync.Mutex

	cfg    config.Config
	params sale.Params
	store  store.Store
	clock  clock.Clock
	logger log.Logger

	events   *event.Recorder
	payments *settlement.Ledger
	token    *token.Token
	vault    *vault.RefundVault
	sale     *sale.Crowdsale
	desk     *sale.Desk

	committed []byte
}

// NewLogger returns a logger writing to w at the configured level.
func NewLogger(cfg config.Config, w io.Writer) (log.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return log.NewLogger(w, log.LevelOption(lvl)), nil
}

// Open assembles the ledger described by cfg and loads the committed
// state from st, if any.
func Open(cfg config.Config, st store.Store, opts Options) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	params, err := config.SaleParams(cfg, SaleAddress)
	if err != nil {
		return nil, err
	}
	wallet, err := config.WalletAddress(cfg)
	if err != nil {
		return nil, err
	}
	deskAddr, deskBonus, hasDesk, err := config.DeskSettings(cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		params: params,
		store:  st,
		clock:  opts.Clock,
		logger: opts.Logger,
		events: event.NewRecorder(),
	}
	if e.clock == nil {
		e.clock = clock.System{}
	}
	if e.logger == nil {
		e.logger = log.NewNopLogger()
	}

	e.payments = settlement.NewLedger(e.clock, e.logger)
	e.token = token.New(TokenAddress, SaleAddress, token.Options{
		Payer: e.payments, Events: e.events, Clock: e.clock, Logger: e.logger,
	})
	if e.vault, err = vault.New(wallet, e.payments, vault.Options{
		Events: e.events, Clock: e.clock, Logger: e.logger,
	}); err != nil {
		return nil, err
	}
	if e.sale, err = sale.New(params, e.token, e.vault, sale.Options{
		Events: e.events, Clock: e.clock, Logger: e.logger,
	}); err != nil {
		return nil, err
	}
	if hasDesk {
		e.desk = sale.NewDesk(e.sale, deskAddr, deskBonus)
	}
	e.logger = e.logger.With("module", "engine")

	data, err := st.Snapshot()
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return e, nil
	case err != nil:
		return nil, err
	}
	if err := e.restore(data); err != nil {
		return nil, err
	}
	e.committed = data
	seq, _, err := st.Head()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("state loaded", "journal_head", seq)
	return e, nil
}

// Initialized reports whether the genesis state has been committed.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed != nil
}

// Init commits the genesis state and registers the configured desk.
func (e *Engine) Init() (store.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.committed != nil {
		return store.Entry{}, ErrAlreadyInitialized
	}
	args := map[string]string{
		"start": e.params.Start.String(),
		"end":   e.params.End.String(),
		"cap":   e.params.TokensSoldCap.Dec(),
		"goal":  e.params.Goal.Dec(),
	}
	return e.run("init", e.params.Owner, args, func() error {
		if e.desk == nil {
			return nil
		}
		args["desk"] = e.desk.Address().Hex()
		return e.sale.SetDesk(e.params.Owner, e.desk.Address())
	})
}

// Close closes the store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Close()
}

// exec runs fn as one committed operation.
func (e *Engine) exec(op string, actor address.Address, args map[string]string, fn func() error) (store.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.committed == nil {
		return store.Entry{}, ErrNotInitialized
	}
	return e.run(op, actor, args, fn)
}

// run executes fn, audits the result and commits. Any failure restores the
// last committed state. Callers hold e.mu.
func (e *Engine) run(op string, actor address.Address, args map[string]string, fn func() error) (store.Entry, error) {
	e.events.Drain()

	fail := func(err error) (store.Entry, error) {
		e.events.Drain()
		if e.committed != nil {
			if rerr := e.restore(e.committed); rerr != nil {
				e.logger.Error("rollback failed", "op", op, "err", rerr)
				return store.Entry{}, errors.Join(err, rerr)
			}
		} else if rerr := e.reset(); rerr != nil {
			return store.Entry{}, errors.Join(err, rerr)
		}
		return store.Entry{}, err
	}

	if err := fn(); err != nil {
		e.logger.Debug("operation rejected", "op", op, "actor", actor, "err", err)
		return fail(err)
	}
	if err := e.token.Audit(); err != nil {
		e.logger.Error("audit failed", "op", op, "err", err)
		return fail(err)
	}
	data, err := e.snapshot()
	if err != nil {
		return fail(err)
	}
	entry := store.Entry{At: e.clock.Now(), Op: op, Actor: actor, Args: args, Events: e.events.Drain()}
	sealed, err := e.store.Commit(data, []store.Entry{entry})
	if err != nil {
		e.logger.Error("commit failed", "op", op, "err", err)
		return fail(err)
	}
	e.committed = data
	e.logger.Info("committed", "op", op, "actor", actor, "seq", sealed[0].Seq, "events", len(entry.Events))
	return sealed[0], nil
}

func (e *Engine) snapshot() ([]byte, error) {
	s := Snapshot{
		Version:    snapshotVersion,
		Sale:       e.sale.Snapshot(),
		Token:      e.token.Snapshot(),
		Vault:      e.vault.Snapshot(),
		Settlement: e.payments.Snapshot(),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("engine: encode snapshot: %w", err)
	}
	return data, nil
}

func (e *Engine) restore(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("engine: decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	if err := e.token.Restore(s.Token); err != nil {
		return err
	}
	if err := e.vault.Restore(s.Vault); err != nil {
		return err
	}
	if err := e.sale.Restore(s.Sale); err != nil {
		return err
	}
	e.payments.Restore(s.Settlement)
	return nil
}

// reset returns an uninitialized engine to its freshly assembled state.
func (e *Engine) reset() error {
	fresh, err := Open(e.cfg, store.NewMemStore(), Options{Clock: e.clock})
	if err != nil {
		return err
	}
	data, err := fresh.snapshot()
	if err != nil {
		return err
	}
	return e.restore(data)
}
