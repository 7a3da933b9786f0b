package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libcrowdsale-go/sale"
	"github.com/bitfsorg/libcrowdsale-go/settlement"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

type statusView struct {
	Stage             string    `json:"stage"`
	Outcome           string    `json:"outcome,omitempty"`
	Phase             int       `json:"phase"`
	Now               time.Time `json:"now"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	TokensSold        string    `json:"tokens_sold"`
	Cap               string    `json:"cap"`
	Raised            string    `json:"raised"`
	Goal              string    `json:"goal"`
	Escrow            string    `json:"escrow"`
	Supply            string    `json:"supply"`
	Holders           int       `json:"holders"`
	MintingFinished   bool      `json:"minting_finished"`
	DividendDeposited string    `json:"dividend_deposited"`
	DividendWithdrawn string    `json:"dividend_withdrawn"`
	DividendReserved  string    `json:"dividend_reserved"`
	PendingPayments   int       `json:"pending_payments"`
	PendingCoins      string    `json:"pending_coins"`
	JournalSeq        uint64    `json:"journal_seq"`
	JournalHead       string    `json:"journal_head"`
}

func statusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sale, token and settlement state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if !s.Initialized() {
				return opts.write(cmd, map[string]bool{"initialized": false})
			}
			st, err := s.Status()
			if err != nil {
				return err
			}
			v := statusView{
				Stage:             st.Sale.Stage.String(),
				Phase:             st.Sale.Phase,
				Now:               st.Sale.Now,
				Start:             st.Sale.Start,
				End:               st.Sale.End,
				TokensSold:        tokens(st.Sale.TokensSold),
				Cap:               tokens(st.Sale.Cap),
				Raised:            coins(st.Sale.Raised),
				Goal:              coins(st.Sale.Goal),
				Escrow:            st.Sale.Escrow.String(),
				Supply:            tokens(st.Supply),
				Holders:           st.Holders,
				MintingFinished:   st.MintingFinished,
				DividendDeposited: coins(st.DividendDeposited),
				DividendWithdrawn: coins(st.DividendWithdrawn),
				DividendReserved:  coins(st.DividendReserved),
				PendingPayments:   st.PendingPayments,
				PendingCoins:      coins(units.U(st.PendingSatoshis)),
				JournalSeq:        st.JournalSeq,
				JournalHead:       st.JournalHead,
			}
			if st.Sale.Stage != sale.Active {
				v.Outcome = st.Sale.Outcome.String()
			}
			return opts.write(cmd, v)
		},
	}
}

func holdingCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "holding",
		Short: "Show one address's tokens, dividends and escrow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := parseAddress("address", addr)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			h, err := s.Holding(a)
			if err != nil {
				return err
			}
			encoded, err := a.Encode(s.Mainnet())
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{
				"address":   encoded,
				"balance":   tokens(h.Balance),
				"claimable": coins(h.Claimable),
				"withdrawn": coins(h.Withdrawn),
				"escrowed":  coins(h.Escrowed),
				"unpaid":    h.Unpaid.Dec(),
			})
		},
	}
	cmd.Flags().StringVar(&addr, "address", "", "Address to inspect")
	return cmd
}

func settleCommand(opts *rootOptions) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Drain queued payments into an unsigned payout transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseAddress("caller", caller)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			tx, payments, err := s.Settle(c)
			if err != nil {
				return err
			}
			total, err := settlement.Total(payments)
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]any{
				"payments": payments,
				"total":    total,
				"tx":       tx.Hex(),
			})
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "Operator address recorded in the journal")
	return cmd
}

func journalCommand(opts *rootOptions) *cobra.Command {
	var (
		from   uint64
		limit  int
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List or verify committed operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if verify {
				n, err := s.VerifyJournal()
				if err != nil {
					return err
				}
				return opts.write(cmd, map[string]any{"verified": n})
			}
			entries, err := s.Journal(from, limit)
			if err != nil {
				return err
			}
			return opts.write(cmd, entries)
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 1, "First sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries (0 for all)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the hash chain instead of listing")
	return cmd
}
