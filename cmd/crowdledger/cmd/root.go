package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libcrowdsale-go/clock"
	"github.com/bitfsorg/libcrowdsale-go/config"
	"github.com/bitfsorg/libcrowdsale-go/engine"
	"github.com/bitfsorg/libcrowdsale-go/store"
)

// ledgerFile is the bbolt database inside the data directory.
const ledgerFile = "ledger.db"

type rootOptions struct {
	dataDir string
	at      string
	pretty  bool
}

// NewRootCmd builds the crowdledger command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "crowdledger",
		Short:         "Operate a phase-priced token sale with dividend distribution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "datadir", config.DefaultDataDir(), "Data directory holding config and ledger.db")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "Evaluate the operation at this time (RFC3339 or unix seconds) instead of now")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", true, "Pretty-print JSON output")

	root.AddCommand(
		configCommand(opts),
		initCommand(opts),
		statusCommand(opts),
		holdingCommand(opts),
		buyCommand(opts),
		mintCommand(opts),
		finalizeCommand(opts),
		refundCommand(opts),
		transferCommand(opts),
		approveCommand(opts),
		depositCommand(opts),
		withdrawCommand(opts),
		setEndCommand(opts),
		setMinterCommand(opts),
		settleCommand(opts),
		journalCommand(opts),
	)
	return root
}

// session is an open engine plus the resources behind it.
type session struct {
	*engine.Engine
	logFile io.Closer
}

func (s *session) close() {
	_ = s.Engine.Close()
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// open loads the configuration and ledger for one command.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(o.dataDir))
	if err != nil {
		return nil, err
	}
	cfg.DataDir = o.dataDir

	var (
		logOut  io.Writer = cmd.ErrOrStderr()
		logFile io.Closer
	)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut, logFile = f, f
	}
	logger, err := engine.NewLogger(cfg, logOut)
	if err != nil {
		closeQuietly(logFile)
		return nil, err
	}

	var clk clock.Clock = clock.System{}
	if o.at != "" {
		at, err := config.ParseTime(o.at)
		if err != nil {
			closeQuietly(logFile)
			return nil, fmt.Errorf("--at: %w", err)
		}
		clk = clock.NewManual(at)
	}

	st, err := store.OpenBoltStore(filepath.Join(o.dataDir, ledgerFile), 5*time.Second)
	if err != nil {
		closeQuietly(logFile)
		return nil, err
	}
	e, err := engine.Open(cfg, st, engine.Options{Clock: clk, Logger: logger})
	if err != nil {
		_ = st.Close()
		closeQuietly(logFile)
		return nil, err
	}
	return &session{Engine: e, logFile: logFile}, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func (o *rootOptions) write(cmd *cobra.Command, v any) error {
	var (
		out []byte
		err error
	)
	if o.pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(append(out, '\n'))
	return err
}
