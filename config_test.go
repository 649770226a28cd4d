package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	require.Equal(t, "lnd", cfg.Node)
	require.Equal(t, "localhost:10009", cfg.LndNode.RpcServer)
	require.Equal(t, "admin.macaroon", cfg.LndNode.MacaroonPath)
	require.Equal(t, int64(1000), cfg.LndNode.BaseFeeMsat)
	require.Equal(t, uint32(80), cfg.LndNode.TimeLockDelta)
	require.Equal(t, 2*time.Minute, cfg.Retry.Interval)
	require.Equal(t, 360, cfg.Retry.Attempts)
	require.Equal(t, 8, cfg.Concurrency)
	require.Empty(t, cfg.To)
	require.False(t, cfg.feeRateSet)
}

func TestLoadConfigFeeRate(t *testing.T) {
	cfg, err := loadConfig([]string{"--to", "bob", "--to", "carol", "--feerate", "0"})
	require.NoError(t, err)

	require.Equal(t, []string{"bob", "carol"}, cfg.To)
	require.True(t, cfg.feeRateSet)
	require.Zero(t, cfg.FeeRate)
}

func TestLoadConfigNamespaces(t *testing.T) {
	cfg, err := loadConfig([]string{
		"--lnd.rpcserver", "node:10010",
		"--retry.interval", "30s",
		"--retry.attempts", "4",
	})
	require.NoError(t, err)

	require.Equal(t, "node:10010", cfg.LndNode.RpcServer)
	require.Equal(t, 30*time.Second, cfg.Retry.Interval)
	require.Equal(t, 4, cfg.Retry.Attempts)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeadjust.conf")
	require.NoError(t, os.WriteFile(path, []byte("[Application Options]\nfeerate=250\nconcurrency=2\n"), 0o600))

	cfg, err := loadConfig([]string{"--configfile", path, "--concurrency", "3"})
	require.NoError(t, err)

	require.Equal(t, uint32(250), cfg.FeeRate)
	require.Equal(t, 3, cfg.Concurrency)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig([]string{"--retry.attempts", "0"})
	require.Error(t, err)

	_, err = loadConfig([]string{"--node", "eclair"})
	require.Error(t, err)

	_, err = loadConfig([]string{"--configfile", filepath.Join(t.TempDir(), "missing.conf")})
	require.Error(t, err)
}
