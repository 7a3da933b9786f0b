// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cast"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/allocation"
	"github.com/bitfsorg/libcrowdsale-go/sale"
	"github.com/bitfsorg/libcrowdsale-go/units"
)

// SaleParams interprets the sale keys. self is the sale's own address.
//
// Token amounts (cap, minpurchase) take up to 18 decimals; base-asset
// amounts (goal, bonusthreshold) take up to 8. rate is token base units
// per satoshi. Times are RFC3339 or unix seconds; phases is a comma list
// of time@discount.
func SaleParams(cfg Config, self address.Address) (sale.Params, error) {
	p := sale.Params{Self: self}
	var err error

	if p.Owner, err = requireAddress("owner", cfg.Owner); err != nil {
		return p, err
	}
	if p.Start, err = requireTime("start", cfg.Start); err != nil {
		return p, err
	}
	if p.End, err = requireTime("end", cfg.End); err != nil {
		return p, err
	}
	if p.Phases, err = ParsePhases(cfg.Phases); err != nil {
		return p, err
	}
	if p.Rate, err = requireInteger("rate", cfg.Rate); err != nil {
		return p, err
	}
	if p.TokensSoldCap, err = requireAmount("cap", cfg.Cap, units.Decimals); err != nil {
		return p, err
	}
	if p.MinPurchase, err = optionalAmount("minpurchase", cfg.MinPurchase, units.Decimals); err != nil {
		return p, err
	}
	if p.Goal, err = requireAmount("goal", cfg.Goal, units.BaseDecimals); err != nil {
		return p, err
	}
	if p.BonusThreshold, err = optionalAmount("bonusthreshold", cfg.BonusThreshold, units.BaseDecimals); err != nil {
		return p, err
	}
	if p.BonusPercent, err = percent("bonus", cfg.Bonus); err != nil {
		return p, err
	}
	if p.Allocation, err = allocationPlan(cfg); err != nil {
		return p, err
	}
	return p, p.Validate()
}

// WalletAddress returns the escrow release wallet.
func WalletAddress(cfg Config) (address.Address, error) {
	return requireAddress("wallet", cfg.Wallet)
}

// DeskSettings returns the configured desk address and bonus. A desk is
// optional; ok is false when none is set.
func DeskSettings(cfg Config) (addr address.Address, bonus uint64, ok bool, err error) {
	if strings.TrimSpace(cfg.Desk) == "" {
		return address.Zero, 0, false, nil
	}
	if addr, err = requireAddress("desk", cfg.Desk); err != nil {
		return address.Zero, 0, false, err
	}
	if bonus, err = percent("deskbonus", cfg.DeskBonus); err != nil {
		return address.Zero, 0, false, err
	}
	return addr, bonus, true, nil
}

// ParseTime accepts RFC3339 or unix seconds and returns UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", ErrInvalidValue)
	}
	if digits, ok := decimal(s); ok {
		secs, err := cast.ToInt64E(digits)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidValue, s, err)
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidValue, s, err)
	}
	return t.UTC(), nil
}

// ParsePhases parses "time@discount,time@discount,...".
func ParsePhases(s string) ([]sale.Phase, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: phases", ErrMissingKey)
	}
	var out []sale.Phase
	for i, item := range strings.Split(s, ",") {
		at, disc, ok := strings.Cut(strings.TrimSpace(item), "@")
		if !ok {
			return nil, fmt.Errorf("%w: phase %d %q: want time@discount", ErrInvalidValue, i, item)
		}
		t, err := ParseTime(at)
		if err != nil {
			return nil, fmt.Errorf("phase %d: %w", i, err)
		}
		d, err := percent(fmt.Sprintf("phase %d discount", i), disc)
		if err != nil {
			return nil, err
		}
		out = append(out, sale.Phase{Activation: t, Discount: d})
	}
	return out, nil
}

// ParsePercents parses "ico/team/bounty/rnd".
func ParsePercents(s string) (allocation.Percents, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 4 {
		return allocation.Percents{}, fmt.Errorf("%w: allocation %q: want ico/team/bounty/rnd", ErrInvalidValue, s)
	}
	var v [4]uint64
	for i, part := range parts {
		n, err := percent("allocation", part)
		if err != nil {
			return allocation.Percents{}, err
		}
		v[i] = n
	}
	return allocation.Percents{ICO: v[0], Team: v[1], Bounty: v[2], RnD: v[3]}, nil
}

func allocationPlan(cfg Config) (allocation.Plan, error) {
	pct, err := ParsePercents(cfg.Allocation)
	if err != nil {
		return allocation.Plan{}, err
	}
	plan := allocation.Plan{Percents: pct}
	for _, r := range []struct {
		key, value string
		pct        uint64
		dst        *address.Address
	}{
		{"team", cfg.Team, pct.Team, &plan.Team},
		{"bounty", cfg.Bounty, pct.Bounty, &plan.Bounty},
		{"rnd", cfg.RnD, pct.RnD, &plan.RnD},
	} {
		if r.pct == 0 && strings.TrimSpace(r.value) == "" {
			continue
		}
		a, err := requireAddress(r.key, r.value)
		if err != nil {
			return allocation.Plan{}, err
		}
		*r.dst = a
	}
	return plan, nil
}

func requireAddress(key, s string) (address.Address, error) {
	if strings.TrimSpace(s) == "" {
		return address.Zero, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	a, err := address.Parse(strings.TrimSpace(s))
	if err != nil {
		return address.Zero, fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
	}
	return a, nil
}

func requireTime(key, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}

func requireInteger(key, s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %w", ErrInvalidValue, key, s, err)
	}
	return v, nil
}

func requireAmount(key, s string, decimals uint) (*uint256.Int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return optionalAmount(key, s, decimals)
}

func optionalAmount(key, s string, decimals uint) (*uint256.Int, error) {
	if strings.TrimSpace(s) == "" {
		return units.Zero(), nil
	}
	v, err := units.ParseAmount(s, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
	}
	return v, nil
}

func percent(key, s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	digits, ok := decimal(s)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q: not a decimal integer", ErrInvalidValue, key, s)
	}
	n, err := cast.ToUint64E(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidValue, key, s, err)
	}
	if n > 100 {
		return 0, fmt.Errorf("%w: %s %d above 100", ErrInvalidValue, key, n)
	}
	return n, nil
}

// decimal strips leading zeros from a string of ASCII digits. cast reads a
// leading zero as an octal prefix.
func decimal(s string) (string, bool) {
	if !isDigits(s) {
		return "", false
	}
	if t := strings.TrimLeft(s, "0"); t != "" {
		return t, true
	}
	return "0", true
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
