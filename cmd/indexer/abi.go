package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transferScope/internal/class"
	"transferScope/internal/config"
	"transferScope/internal/eventlog"
	"transferScope/internal/indexer"
)

func runABI(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadABI(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	address, err := indexer.ParseAddress(cfg.Address)
	if err != nil {
		return err
	}

	ctx := context.Background()
	log, err := eventlog.Open(ctx, eventlog.Config{Path: cfg.DBPath, MaxOpenConns: 1}, logger)
	if err != nil {
		return err
	}
	defer log.Close()

	blob, err := log.ClassDefinition(ctx, address)
	if err != nil {
		return err
	}
	doc, err := class.Decompress(blob)
	if err != nil {
		return err
	}
	contractClass, err := class.ParseClass(doc)
	if err != nil {
		return err
	}
	if !contractClass.HasABI() {
		return fmt.Errorf("contract %s has no parsable abi", address)
	}

	logger.Info("abi loaded", zap.Stringer("contract_address", address), zap.Int("entries", len(contractClass.ABI)))

	encoder := json.NewEncoder(os.Stdout)
	if cfg.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(contractClass.ABI)
}
