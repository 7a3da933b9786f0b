// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/sale"
)

func saleConfig() Config {
	cfg := DefaultConfig()
	cfg.Owner = address.Derive("owner").Hex()
	cfg.Wallet = address.Derive("wallet").Hex()
	cfg.Team = address.Derive("team").Hex()
	cfg.Bounty = address.Derive("bounty").Hex()
	cfg.RnD = address.Derive("rnd").Hex()
	cfg.Start = "2026-03-01T00:00:00Z"
	cfg.End = "1775001600" // 2026-04-01T00:00:00Z
	cfg.Phases = "2026-03-01T00:00:00Z@40, 2026-03-08T00:00:00Z@20,2026-03-15T00:00:00Z@0"
	cfg.Rate = "10000000000"
	cfg.Cap = "1000000.5"
	cfg.Goal = "12.5"
	cfg.MinPurchase = "0.1"
	cfg.Bonus = "10"
	cfg.BonusThreshold = "1"
	cfg.Allocation = "60/20/10/10"
	return cfg
}

func TestSaleParams(t *testing.T) {
	self := address.Derive("sale")
	p, err := SaleParams(saleConfig(), self)
	if err != nil {
		t.Fatalf("SaleParams: %v", err)
	}

	if p.Self != self {
		t.Errorf("Self = %s, want %s", p.Self, self)
	}
	if p.Owner != address.Derive("owner") {
		t.Errorf("Owner = %s", p.Owner)
	}
	if want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); !p.End.Equal(want) {
		t.Errorf("End = %s, want %s", p.End, want)
	}
	if len(p.Phases) != 3 || p.Phases[1].Discount != 20 {
		t.Errorf("Phases = %+v", p.Phases)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Rate", p.Rate.Dec(), "10000000000"},
		{"Cap", p.TokensSoldCap.Dec(), "1000000500000000000000000"},
		{"Goal", p.Goal.Dec(), "1250000000"},
		{"MinPurchase", p.MinPurchase.Dec(), "100000000000000000"},
		{"BonusThreshold", p.BonusThreshold.Dec(), "100000000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %s, want %s", tc.got, tc.want)
			}
		})
	}
	if p.BonusPercent != 10 || p.Allocation.Percents.Team != 20 || p.Allocation.RnD != address.Derive("rnd") {
		t.Errorf("bonus/allocation not applied: %+v", p)
	}
}

func TestSaleParamsErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"missing_owner", func(c *Config) { c.Owner = "" }, ErrMissingKey},
		{"bad_owner", func(c *Config) { c.Owner = "xyz" }, ErrInvalidValue},
		{"missing_start", func(c *Config) { c.Start = "" }, ErrMissingKey},
		{"bad_end", func(c *Config) { c.End = "tomorrow-ish" }, ErrInvalidValue},
		{"missing_phases", func(c *Config) { c.Phases = "" }, ErrMissingKey},
		{"phase_without_discount", func(c *Config) { c.Phases = "2026-03-01T00:00:00Z" }, ErrInvalidValue},
		{"phase_discount_over_100", func(c *Config) { c.Phases = "2026-03-01T00:00:00Z@101" }, ErrInvalidValue},
		{"missing_rate", func(c *Config) { c.Rate = "" }, ErrMissingKey},
		{"fractional_rate", func(c *Config) { c.Rate = "1.5" }, ErrInvalidValue},
		{"missing_cap", func(c *Config) { c.Cap = "" }, ErrMissingKey},
		{"goal_too_precise", func(c *Config) { c.Goal = "0.000000001" }, ErrInvalidValue},
		{"missing_goal", func(c *Config) { c.Goal = "" }, ErrMissingKey},
		{"zero_goal", func(c *Config) { c.Goal = "0.0" }, sale.ErrInvalidParams},
		{"bad_bonus", func(c *Config) { c.Bonus = "ten" }, ErrInvalidValue},
		{"hex_bonus", func(c *Config) { c.Bonus = "0x10" }, ErrInvalidValue},
		{"signed_bonus", func(c *Config) { c.Bonus = "+5" }, ErrInvalidValue},
		{"padded_bonus_over_100", func(c *Config) { c.Bonus = "0101" }, ErrInvalidValue},
		{"short_allocation", func(c *Config) { c.Allocation = "60/40" }, ErrInvalidValue},
		{"missing_team", func(c *Config) { c.Team = "" }, ErrMissingKey},
		{"phase_zero_off_start", func(c *Config) { c.Start = "2026-02-28T00:00:00Z" }, sale.ErrInvalidPhases},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := saleConfig()
			tc.modify(&cfg)
			_, err := SaleParams(cfg, address.Derive("sale"))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("SaleParams: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSaleParamsUnusedRecipientOptional(t *testing.T) {
	cfg := saleConfig()
	cfg.Allocation = "80/20/0/0"
	cfg.Bounty = ""
	cfg.RnD = ""
	if _, err := SaleParams(cfg, address.Derive("sale")); err != nil {
		t.Fatalf("SaleParams: %v", err)
	}
}

func TestDeskSettings(t *testing.T) {
	cfg := saleConfig()
	if _, _, ok, err := DeskSettings(cfg); ok || err != nil {
		t.Fatalf("DeskSettings without desk: ok=%v err=%v", ok, err)
	}

	cfg.Desk = address.Derive("desk").Hex()
	cfg.DeskBonus = "5"
	addr, bonus, ok, err := DeskSettings(cfg)
	if err != nil || !ok {
		t.Fatalf("DeskSettings: ok=%v err=%v", ok, err)
	}
	if addr != address.Derive("desk") || bonus != 5 {
		t.Errorf("DeskSettings = %s, %d", addr, bonus)
	}

	cfg.DeskBonus = "500"
	if _, _, _, err := DeskSettings(cfg); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("DeskSettings bonus 500: got %v, want ErrInvalidValue", err)
	}
}

func TestLeadingZerosAreDecimal(t *testing.T) {
	cfg := saleConfig()
	cfg.Bonus = "010"
	cfg.Phases = "2026-03-01T00:00:00Z@030,2026-03-08T00:00:00Z@00"
	cfg.Allocation = "060/020/010/010"
	p, err := SaleParams(cfg, address.Derive("sale"))
	if err != nil {
		t.Fatalf("SaleParams: %v", err)
	}

	tests := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"Bonus", p.BonusPercent, 10},
		{"Phase0Discount", p.Phases[0].Discount, 30},
		{"Phase1Discount", p.Phases[1].Discount, 0},
		{"ICO", p.Allocation.Percents.ICO, 60},
		{"Team", p.Allocation.Percents.Team, 20},
		{"Bounty", p.Allocation.Percents.Bounty, 10},
		{"RnD", p.Allocation.Percents.RnD, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %d, want %d", tc.got, tc.want)
			}
		})
	}

	cfg.Desk = address.Derive("desk").Hex()
	cfg.DeskBonus = "005"
	if _, bonus, _, err := DeskSettings(cfg); err != nil || bonus != 5 {
		t.Errorf("DeskSettings deskbonus 005 = %d, %v; want 5", bonus, err)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"0", time.Unix(0, 0).UTC()},
		{"000", time.Unix(0, 0).UTC()},
		{"0123", time.Unix(123, 0).UTC()},
		{"1772323200", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-03-01T02:00:00+02:00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTime(tc.in)
			if err != nil {
				t.Fatalf("ParseTime: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}
