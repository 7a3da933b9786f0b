package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcrowdsale-go/address"
	"github.com/bitfsorg/libcrowdsale-go/config"
)

var (
	t0     = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	owner  = address.Derive("owner")
	alice  = address.Derive("alice")
	bob    = address.Derive("bob")
	wallet = address.Derive("wallet")
)

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.Network = "testnet"
	cfg.Owner = owner.Hex()
	cfg.Wallet = wallet.Hex()
	cfg.Team = address.Derive("team").Hex()
	cfg.Start = t0.Format(time.RFC3339)
	cfg.End = t0.Add(72 * time.Hour).Format(time.RFC3339)
	cfg.Phases = t0.Format(time.RFC3339) + "@0"
	cfg.Rate = "10000000000" // one token per coin
	cfg.Cap = "1000"
	cfg.Goal = "1"
	cfg.Allocation = "80/20/0/0"
	require.NoError(t, config.SaveConfig(config.ConfigPath(dir), cfg))
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, logs bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--datadir", dir, "--pretty=false"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, args...)
	require.NoError(t, err, "crowdledger %s", strings.Join(args, " "))
	return out
}

func at(d time.Duration) string {
	return "--at=" + t0.Add(d).Format(time.RFC3339)
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "config")
	_, err := execute(t, dir, "config")
	assert.ErrorContains(t, err, "exists")
	mustExecute(t, dir, "config", "--force")

	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestStatusBeforeInit(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	out := mustExecute(t, dir, "status")
	assert.Contains(t, out, `"initialized":false`)
}

func TestSaleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)

	mustExecute(t, dir, "init", at(0))
	_, err := execute(t, dir, "init", at(0))
	assert.Error(t, err)

	out := mustExecute(t, dir, "buy", "--from", alice.Hex(), "--value", "1.5", at(time.Hour))
	var p purchaseView
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "1.5", p.Tokens)
	assert.Equal(t, "1.5", p.Accepted)
	assert.Equal(t, "0", p.Returned)

	_, err = execute(t, dir, "buy", "--from", alice.Hex(), "--value", "1", at(-time.Hour))
	assert.ErrorContains(t, err, "has not started")

	mustExecute(t, dir, "mint", "--caller", owner.Hex(), bob.Hex()+"=2.5", at(2*time.Hour))
	_, err = execute(t, dir, "mint", "--caller", bob.Hex(), bob.Hex()+"=1", at(2*time.Hour))
	assert.ErrorContains(t, err, "unauthorized")

	_, err = execute(t, dir, "finalize", "--caller", bob.Hex(), at(3*time.Hour))
	assert.ErrorContains(t, err, "too early")
	out = mustExecute(t, dir, "finalize", "--caller", bob.Hex(), at(73*time.Hour))
	assert.Contains(t, out, `"outcome":"successful"`)

	mustExecute(t, dir, "transfer", "--from", bob.Hex(), "--to", alice.Hex(), "--amount", "0.5", at(74*time.Hour))
	mustExecute(t, dir, "deposit", "--from", owner.Hex(), "--amount", "0.01", at(75*time.Hour))
	mustExecute(t, dir, "withdraw", "--holder", alice.Hex(), at(76*time.Hour))

	out = mustExecute(t, dir, "holding", "--address", alice.Hex(), at(76*time.Hour))
	var h map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, "2", h["balance"])
	assert.Equal(t, "0", h["claimable"])
	assert.Equal(t, "1.5", h["escrowed"])

	out = mustExecute(t, dir, "status", at(76*time.Hour))
	var st statusView
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "closed", st.Stage)
	assert.Equal(t, "successful", st.Outcome)
	assert.True(t, st.MintingFinished)
	assert.Equal(t, "5", st.Supply)
	assert.Equal(t, 2, st.PendingPayments)

	out = mustExecute(t, dir, "settle", "--caller", owner.Hex(), at(77*time.Hour))
	assert.Contains(t, out, `"tx":"`)
	_, err = execute(t, dir, "settle", "--caller", owner.Hex(), at(77*time.Hour))
	assert.ErrorContains(t, err, "no payments")

	out = mustExecute(t, dir, "journal", "--verify")
	assert.Contains(t, out, `"verified":8`)
	out = mustExecute(t, dir, "journal", "--from", "4", "--limit", "1")
	assert.Contains(t, out, `"op":"finalize"`)
}

func TestFlagValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"buy without sender", []string{"buy", "--value", "1"}, "--from is required"},
		{"buy bad value", []string{"buy", "--from", alice.Hex(), "--value", "0.123456789"}, "--value"},
		{"mint bad pair", []string{"mint", "--caller", owner.Hex(), "nope"}, "want address=amount"},
		{"set-end bad time", []string{"set-end", "--caller", owner.Hex(), "--end", "soon"}, "--end"},
		{"bad at", []string{"status", "--at", "yesterday"}, "--at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dir, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
