package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ABIConfig holds configuration for the abi command.
type ABIConfig struct {
	DBPath   string
	Address  string
	Indent   bool
	LogLevel string
}

// LoadABI merges config file, environment variables, and flags into ABIConfig.
func LoadABI(cfgFile string, flags *pflag.FlagSet) (ABIConfig, error) {
	v := newViper()

	v.SetDefault("indent", true)
	v.SetDefault("log-level", "info")

	if err := readConfig(v, cfgFile, flags); err != nil {
		return ABIConfig{}, err
	}

	cfg := ABIConfig{
		DBPath:   v.GetString("db"),
		Address:  v.GetString("address"),
		Indent:   v.GetBool("indent"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.DBPath == "" {
		return ABIConfig{}, fmt.Errorf("event log path is required")
	}
	if cfg.Address == "" {
		return ABIConfig{}, fmt.Errorf("contract address is required")
	}
	return cfg, nil
}
