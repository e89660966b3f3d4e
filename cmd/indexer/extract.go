package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transferScope/internal/config"
	"transferScope/internal/eventlog"
	"transferScope/internal/events"
	"transferScope/internal/indexer"
	"transferScope/internal/model"
	"transferScope/internal/storage"
)

func runExtract(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExtract(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	keys, err := indexer.ParseKeys(cfg.Keys)
	if err != nil {
		return err
	}

	filter := model.EventFilter{Keys: keys}
	if cfg.FromBlock != nil {
		from := model.BlockNumber(*cfg.FromBlock)
		filter.FromBlock = &from
	}
	if cfg.ToBlock != nil {
		to := model.BlockNumber(*cfg.ToBlock)
		filter.ToBlock = &to
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := eventlog.Open(ctx, eventlog.Config{Path: cfg.DBPath, MaxOpenConns: 1}, logger)
	if err != nil {
		return err
	}
	defer log.Close()

	var skipped []model.SkippedEvent
	extractorCfg := events.ExtractorConfig{}
	if cfg.Skipped != "" {
		extractorCfg.OnSkip = func(s model.SkippedEvent) { skipped = append(skipped, s) }
	}
	extractor := events.NewExtractor(extractorCfg, logger)

	logger.Info("extract start",
		zap.String("db", cfg.DBPath),
		zap.Any("from", cfg.FromBlock),
		zap.Any("to", cfg.ToBlock),
		zap.Int("keys", len(keys)),
		zap.String("out", cfg.Out),
	)

	var emitted []model.EmittedEvent
	err = log.ReadTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		emitted, err = extractor.GetEvents(ctx, tx, filter)
		return err
	})
	if err != nil {
		return err
	}
	if err := events.CheckPageSize(len(emitted), cfg.MaxEvents); err != nil {
		return err
	}

	var sink storage.Storage
	if cfg.Out == storage.StdoutPath {
		sink = storage.NewJsonlStorage(storage.StdoutPath)
	} else {
		out, err := createFile(cfg.Out)
		if err != nil {
			return err
		}
		defer out.Close()
		sink = storage.NewJsonlWriter(out)
	}
	if err := sink.PutTransferBatch(ctx, emitted); err != nil {
		return err
	}

	if cfg.Skipped != "" {
		if err := writeSkipped(cfg.Skipped, skipped); err != nil {
			return err
		}
	}

	logger.Info("extract complete",
		zap.Int("transfers", len(emitted)),
		zap.Int("skipped", len(skipped)),
	)
	return nil
}

func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

func writeSkipped(path string, skipped []model.SkippedEvent) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, s := range skipped {
		line, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal skipped event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write skipped event: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush skipped events: %w", err)
	}
	return nil
}
