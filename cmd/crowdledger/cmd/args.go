package cmd

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

func parseAddress(flag, s string) (address.Address, error) {
	if s == "" {
		return address.Zero, fmt.Errorf("--%s is required", flag)
	}
	a, err := address.Parse(s)
	if err != nil {
		return address.Zero, fmt.Errorf("--%s: %w", flag, err)
	}
	return a, nil
}

// parseCoins parses a base-asset amount such as "0.5" into satoshis.
func parseCoins(flag, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}
	v, err := units.ParseAmount(s, units.BaseDecimals)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return v, nil
}

// parseTokens parses a token amount such as "12.5" into base units.
func parseTokens(flag, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}
	v, err := units.ParseAmount(s, units.Decimals)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return v, nil
}

// parseAllocations parses address=amount pairs.
func parseAllocations(pairs []string) ([]address.Address, []*uint256.Int, error) {
	recipients := make([]address.Address, 0, len(pairs))
	amounts := make([]*uint256.Int, 0, len(pairs))
	for _, pair := range pairs {
		to, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, fmt.Errorf("mint entry %q: want address=amount", pair)
		}
		a, err := address.Parse(strings.TrimSpace(to))
		if err != nil {
			return nil, nil, fmt.Errorf("mint entry %q: %w", pair, err)
		}
		v, err := units.ParseAmount(amount, units.Decimals)
		if err != nil {
			return nil, nil, fmt.Errorf("mint entry %q: %w", pair, err)
		}
		recipients = append(recipients, a)
		amounts = append(amounts, v)
	}
	return recipients, amounts, nil
}

func tokens(v *uint256.Int) string { return units.FormatAmount(v, units.Decimals) }

func coins(v *uint256.Int) string { return units.FormatAmount(v, units.BaseDecimals) }
