// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

// ValidateConfig checks the node-level values and returns the first error
// encountered, or nil if valid. Sale values are checked by SaleParams.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if _, err := cfg.Level(); err != nil {
		return err
	}

	return nil
}
