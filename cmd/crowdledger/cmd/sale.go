package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/config"
	"github.com/bitfsorg/libcrowdsale-go/sale"
)

func configCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write a default configuration file to the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ConfigPath(opts.dataDir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			}
			cfg := config.DefaultConfig()
			cfg.DataDir = opts.dataDir
			if err := config.SaveConfig(path, cfg); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"config": path})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

func initCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Validate the sale configuration and commit the genesis state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			entry, err := s.Init()
			if err != nil {
				return err
			}
			return opts.write(cmd, entry)
		},
	}
}

type purchaseView struct {
	Sender      address.Address `json:"sender"`
	Beneficiary address.Address `json:"beneficiary"`
	Phase       int             `json:"phase"`
	Tokens      string          `json:"tokens"`
	Accepted    string          `json:"accepted"`
	Returned    string          `json:"returned"`
}

func buyCommand(opts *rootOptions) *cobra.Command {
	var from, to, value string
	var viaDesk bool
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Contribute to the sale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, err := parseAddress("from", from)
			if err != nil {
				return err
			}
			beneficiary := sender
			if to != "" {
				if beneficiary, err = parseAddress("to", to); err != nil {
					return err
				}
			}
			v, err := parseCoins("value", value)
			if err != nil {
				return err
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var p sale.Purchase
			if viaDesk {
				p, err = s.DeskBuy(cmd.Context(), sender, beneficiary, v)
			} else {
				p, err = s.Buy(cmd.Context(), sender, beneficiary, v)
			}
			if err != nil {
				return err
			}
			return opts.write(cmd, purchaseView{
				Sender:      p.Sender,
				Beneficiary: p.Beneficiary,
				Phase:       p.Phase,
				Tokens:      tokens(p.Tokens),
				Accepted:    coins(p.Accepted),
				Returned:    coins(p.Returned),
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Contributor address")
	cmd.Flags().StringVar(&to, "to", "", "Token beneficiary (defaults to --from)")
	cmd.Flags().StringVar(&value, "value", "", "Contribution in coins, e.g. 0.5")
	cmd.Flags().BoolVar(&viaDesk, "desk", false, "Route through the configured desk")
	return cmd
}

func mintCommand(opts *rootOptions) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "mint address=amount...",
		Short: "Batch-mint tokens as the owner or minter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseAddress("caller", caller)
			if err != nil {
				return err
			}
			recipients, amounts, err := parseAllocations(args)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			m, err := s.Mint(c, recipients, amounts)
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"total": tokens(m.Total), "refund_required": tokens(m.Excess)})
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "Owner or minter address")
	return cmd
}

func finalizeCommand(opts *rootOptions) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Close the sale once sold out or past the end time",
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
			outcome, err := s.Finalize(cmd.Context(), c)
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"outcome": outcome.String()})
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "Caller address")
	return cmd
}

func refundCommand(opts *rootOptions) *cobra.Command {
	var investor string
	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Claim an escrowed contribution after an unsuccessful sale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := parseAddress("investor", investor)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			amount, err := s.Refund(cmd.Context(), inv)
			if err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"investor": inv.Hex(), "refunded": coins(amount)})
		},
	}
	cmd.Flags().StringVar(&investor, "investor", "", "Contributor address")
	return cmd
}

func setEndCommand(opts *rootOptions) *cobra.Command {
	var caller, end string
	cmd := &cobra.Command{
		Use:   "set-end",
		Short: "Extend the sale end time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseAddress("caller", caller)
			if err != nil {
				return err
			}
			t, err := config.ParseTime(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.SetEndTime(c, t); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"end": t.Format(time.RFC3339)})
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "Owner address")
	cmd.Flags().StringVar(&end, "end", "", "New end time (RFC3339 or unix seconds)")
	return cmd
}

func setMinterCommand(opts *rootOptions) *cobra.Command {
	var caller, minter string
	cmd := &cobra.Command{
		Use:   "set-minter",
		Short: "Delegate administrative minting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseAddress("caller", caller)
			if err != nil {
				return err
			}
			m, err := parseAddress("minter", minter)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			if err := s.SetMinter(c, m); err != nil {
				return err
			}
			return opts.write(cmd, map[string]string{"minter": m.Hex()})
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "Owner address")
	cmd.Flags().StringVar(&minter, "minter", "", "Minter address")
	return cmd
}
