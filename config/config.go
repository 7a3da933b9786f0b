// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the crowdledger key=value configuration
// file and converts it into sale parameters.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds every recognized key. Sale values stay as text until
// SaleParams interprets them.
type Config struct {
	DataDir  string
	Network  string
	LogLevel string
	LogFile  string

	Owner  string
	Wallet string
	Team   string
	Bounty string
	RnD    string

	Start  string
	End    string
	Phases string

	Rate           string
	Cap            string
	Goal           string
	MinPurchase    string
	Bonus          string
	BonusThreshold string
	Allocation     string

	Desk      string
	DeskBonus string
}

// DefaultDataDir returns ~/.crowdledger, or .crowdledger in the working
// directory when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crowdledger"
	}
	return filepath.Join(home, ".crowdledger")
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// DefaultConfig returns a configuration with defaults for every key that
// has one. Sale addresses, times, cap and goal have no default.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		Network:     "mainnet",
		LogLevel:    "info",
		MinPurchase: "0",
		Bonus:       "0",
		DeskBonus:   "0",
		Allocation:  "100/0/0/0",
	}
}

// Mainnet reports whether addresses are encoded for mainnet.
func (c Config) Mainnet() bool { return c.Network == "mainnet" }

// Level returns the zerolog level for LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.NoLevel, ErrInvalidLogLevel
	}
	return lvl, nil
}

// field binds a file key to its Config field, in file order.
type field struct {
	key string
	ptr func(*Config) *string
}

var fields = []field{
	{"datadir", func(c *Config) *string { return &c.DataDir }},
	{"network", func(c *Config) *string { return &c.Network }},
	{"loglevel", func(c *Config) *string { return &c.LogLevel }},
	{"logfile", func(c *Config) *string { return &c.LogFile }},
	{"owner", func(c *Config) *string { return &c.Owner }},
	{"wallet", func(c *Config) *string { return &c.Wallet }},
	{"team", func(c *Config) *string { return &c.Team }},
	{"bounty", func(c *Config) *string { return &c.Bounty }},
	{"rnd", func(c *Config) *string { return &c.RnD }},
	{"start", func(c *Config) *string { return &c.Start }},
	{"end", func(c *Config) *string { return &c.End }},
	{"phases", func(c *Config) *string { return &c.Phases }},
	{"rate", func(c *Config) *string { return &c.Rate }},
	{"cap", func(c *Config) *string { return &c.Cap }},
	{"goal", func(c *Config) *string { return &c.Goal }},
	{"minpurchase", func(c *Config) *string { return &c.MinPurchase }},
	{"bonus", func(c *Config) *string { return &c.Bonus }},
	{"bonusthreshold", func(c *Config) *string { return &c.BonusThreshold }},
	{"allocation", func(c *Config) *string { return &c.Allocation }},
	{"desk", func(c *Config) *string { return &c.Desk }},
	{"deskbonus", func(c *Config) *string { return &c.DeskBonus }},
}

func lookup(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// LoadConfig reads path on top of DefaultConfig. Blank lines and lines
// starting with '#' are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", err, lineNo, line)
		}
		if fd, ok := lookup(key); ok {
			*fd.ptr(&cfg) = value
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Crowdledger Configuration\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "%s = %s\n", f.key, *f.ptr(&cfg))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
