package cmd

import (
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/libcrowdsale-go/address"
)

func transferCommand(opts *rootOptions) *cobra.Command {
	var from, to, amount, spender string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move tokens between holders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseAddress("from", from)
			if err != nil {
				return err
			}
			t, err := parseAddress("to", to)
			if err != nil {
				return err
			}
			v, err := parseTokens("amount", amount)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if spender != "" {
				sp, err := parseAddress("spender", spender)
				if err != nil {
					return err
				}
				if err := s.TransferFrom(sp, f, t, v); err != nil {
					return err
				}
			} else if err := s.Transfer(f, t, v); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"from": f.Hex(), "to": t.Hex(), "amount": tokens(v)})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Holder address")
	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "Token amount")
	cmd.Flags().StringVar(&spender, "spender", "", "Transfer under this spender's allowance")
	return cmd
}

func approveCommand(opts *rootOptions) *cobra.Command {
	var holder, spender, amount string
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Set a spender's allowance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := parseAddress("holder", holder)
			if err != nil {
				return err
			}
			sp, err := parseAddress("spender", spender)
			if err != nil {
				return err
			}
			v, err := parseTokens("amount", amount)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.Approve(h, sp, v); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"holder": h.Hex(), "spender": sp.Hex(), "allowance": tokens(v)})
		},
	}
	cmd.Flags().StringVar(&holder, "holder", "", "Holder address")
	cmd.Flags().StringVar(&spender, "spender", "", "Spender address")
	cmd.Flags().StringVar(&amount, "amount", "", "Token amount")
	return cmd
}

func depositCommand(opts *rootOptions) *cobra.Command {
	var from, amount string
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Distribute dividends over current holders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseAddress("from", from)
			if err != nil {
				return err
			}
			v, err := parseCoins("amount", amount)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.Deposit(f, v); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"deposited": coins(v)})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Depositor address")
	cmd.Flags().StringVar(&amount, "amount", "", "Dividend in coins")
	return cmd
}

func withdrawCommand(opts *rootOptions) *cobra.Command {
	var holder, caller string
	var all bool
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Queue claimable dividends for payment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				who address.Address
				err error
			)
			if all {
				who, err = parseAddress("caller", caller)
			} else {
				who, err = parseAddress("holder", holder)
			}
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var paid *uint256.Int
			if all {
				paid, err = s.PayoutAll(cmd.Context(), who)
			} else {
				paid, err = s.Withdraw(cmd.Context(), who)
			}
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"paid": coins(paid)})
		},
	}
	cmd.Flags().StringVar(&holder, "holder", "", "Holder address")
	cmd.Flags().BoolVar(&all, "all", false, "Pay every holder")
	cmd.Flags().StringVar(&caller, "caller", "", "Caller recorded in the journal with --all")
	return cmd
}
