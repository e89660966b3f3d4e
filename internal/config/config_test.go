package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("rpc", "", "")
	flags.Uint64("from", 0, "")
	flags.Uint64("to", 0, "")
	flags.StringSlice("key", nil, "")
	flags.Uint64("batch-size", 1000, "")
	flags.String("sink", SinkJSONL, "")
	flags.String("pg-dsn", "", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", runFlags(t, "--db", "node.sqlite"))
	require.NoError(t, err)

	assert.Equal(t, "node.sqlite", cfg.DBPath)
	assert.Equal(t, uint64(1000), cfg.BatchSize)
	assert.Equal(t, SinkJSONL, cfg.Sink)
	assert.Equal(t, "./data/transfers.jsonl", cfg.Out)
	assert.True(t, cfg.CheckpointEnabled)
	assert.Equal(t, "transfers", cfg.StateName)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Keys)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("TRANSFERSCOPE_MAX_RETRIES", "9")
	t.Setenv("TRANSFERSCOPE_PG_DSN", "postgres://localhost/transfers")

	cfg, err := Load("", runFlags(t,
		"--db", "node.sqlite",
		"--from", "10",
		"--to", "20",
		"--key", "transfer, 0x1",
		"--sink", "Postgres",
	))
	require.NoError(t, err)

	assert.Equal(t, uint64(10), cfg.FromBlock)
	assert.Equal(t, uint64(20), cfg.ToBlock)
	assert.Equal(t, []string{"transfer", "0x1"}, cfg.Keys)
	assert.Equal(t, SinkPostgres, cfg.Sink)
	assert.Equal(t, "postgres://localhost/transfers", cfg.PGDSN)
	assert.Equal(t, 9, cfg.MaxRetries)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /var/lib/pathfinder/mainnet.sqlite
batch-size: 50
key:
  - transfer
  - "0x2"
`), 0o644))

	cfg, err := Load(path, runFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pathfinder/mainnet.sqlite", cfg.DBPath)
	assert.Equal(t, uint64(50), cfg.BatchSize)
	assert.Equal(t, []string{"transfer", "0x2"}, cfg.Keys)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), runFlags(t))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load("", runFlags(t))
	assert.ErrorContains(t, err, "event log path")

	_, err = Load("", runFlags(t, "--db", "x", "--sink", "postgres"))
	assert.ErrorContains(t, err, "pg dsn")

	_, err = Load("", runFlags(t, "--db", "x", "--sink", "kafka"))
	assert.ErrorContains(t, err, "unknown sink")

	_, err = Load("", runFlags(t, "--db", "x", "--from", "9", "--to", "3"))
	assert.Error(t, err)
}

func extractFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.Uint64("from", 0, "")
	flags.Uint64("to", 0, "")
	flags.StringSlice("key", nil, "")
	flags.String("out", "-", "")
	flags.Int("max-events", 0, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadExtractOpenBounds(t *testing.T) {
	cfg, err := LoadExtract("", extractFlags(t, "--db", "node.sqlite"))
	require.NoError(t, err)
	assert.Nil(t, cfg.FromBlock)
	assert.Nil(t, cfg.ToBlock)
	assert.Equal(t, "-", cfg.Out)

	cfg, err = LoadExtract("", extractFlags(t, "--db", "node.sqlite", "--from", "0", "--max-events", "100"))
	require.NoError(t, err)
	require.NotNil(t, cfg.FromBlock)
	assert.Equal(t, uint64(0), *cfg.FromBlock)
	assert.Nil(t, cfg.ToBlock)
	assert.Equal(t, 100, cfg.MaxEvents)

	_, err = LoadExtract("", extractFlags(t))
	assert.Error(t, err)
}

func TestLoadABI(t *testing.T) {
	flags := pflag.NewFlagSet("abi", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("address", "", "")
	require.NoError(t, flags.Parse([]string{"--db", "node.sqlite", "--address", "0x111"}))

	cfg, err := LoadABI("", flags)
	require.NoError(t, err)
	assert.Equal(t, "0x111", cfg.Address)
	assert.True(t, cfg.Indent)

	_, err = LoadABI("", pflag.NewFlagSet("empty", pflag.ContinueOnError))
	assert.Error(t, err)
}
