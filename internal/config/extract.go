package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ExtractConfig holds configuration for the one-shot extract command.
// FromBlock and ToBlock are nil when left open.
type ExtractConfig struct {
	DBPath    string
	FromBlock *uint64
	ToBlock   *uint64
	Keys      []string
	Out       string
	MaxEvents int
	Skipped   string
	LogLevel  string
}

// LoadExtract merges config file, environment variables, and flags into ExtractConfig.
func LoadExtract(cfgFile string, flags *pflag.FlagSet) (ExtractConfig, error) {
	v := newViper()

	v.SetDefault("out", "-")
	v.SetDefault("log-level", "info")

	if err := readConfig(v, cfgFile, flags); err != nil {
		return ExtractConfig{}, err
	}

	cfg := ExtractConfig{
		DBPath:    v.GetString("db"),
		Keys:      getStringSlice(v, "key"),
		Out:       v.GetString("out"),
		MaxEvents: v.GetInt("max-events"),
		Skipped:   v.GetString("skipped"),
		LogLevel:  v.GetString("log-level"),
	}
	if v.IsSet("from") {
		from := v.GetUint64("from")
		cfg.FromBlock = &from
	}
	if v.IsSet("to") {
		to := v.GetUint64("to")
		cfg.ToBlock = &to
	}

	if cfg.DBPath == "" {
		return ExtractConfig{}, fmt.Errorf("event log path is required")
	}
	if cfg.Out == "" {
		return ExtractConfig{}, fmt.Errorf("output path is required")
	}
	return cfg, nil
}
