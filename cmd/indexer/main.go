package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"transferScope/internal/aggregate"
	"transferScope/internal/chain"
	"transferScope/internal/config"
	"transferScope/internal/eventlog"
	"transferScope/internal/events"
	"transferScope/internal/indexer"
	"transferScope/internal/model"
	"transferScope/internal/storage"
	"transferScope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Starknet NFT transfer indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Extract transfers from a node event log batch by batch",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("db", "", "path to the node SQLite database")
	runCmd.Flags().String("rpc", "", "Starknet RPC URL used to resolve the head block")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("key", nil, "event keys, hex or \"transfer\" (comma-separated)")
	runCmd.Flags().Uint64("batch-size", 1000, "blocks per batch")
	runCmd.Flags().Int("max-events", 0, "fail when a batch yields more transfers, 0 disables")
	runCmd.Flags().String("sink", config.SinkJSONL, "output sink (jsonl, postgres)")
	runCmd.Flags().String("out", "./data/transfers.jsonl", "output JSONL path, - for stdout")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for the postgres sink")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().String("state-name", "transfers", "indexer_state row used by the postgres sink")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract transfers for one filter in a single query",
		RunE:  runExtract,
	}

	extractCmd.Flags().String("db", "", "path to the node SQLite database")
	extractCmd.Flags().Uint64("from", 0, "start block (inclusive), open when unset")
	extractCmd.Flags().Uint64("to", 0, "end block (inclusive), open when unset")
	extractCmd.Flags().StringSlice("key", nil, "event keys, hex or \"transfer\" (comma-separated)")
	extractCmd.Flags().String("out", "-", "output JSONL path, - for stdout")
	extractCmd.Flags().Int("max-events", 0, "fail when the query yields more transfers, 0 disables")
	extractCmd.Flags().String("skipped", "", "optional JSONL path for rows that yielded no transfer")
	extractCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(extractCmd)

	abiCmd := &cobra.Command{
		Use:   "abi",
		Short: "Print the parsed ABI of a deployed contract",
		RunE:  runABI,
	}

	abiCmd.Flags().String("db", "", "path to the node SQLite database")
	abiCmd.Flags().String("address", "", "contract address (hex)")
	abiCmd.Flags().Bool("indent", true, "indent the JSON output")
	abiCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(abiCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := eventlog.Open(ctx, eventlog.Config{Path: cfg.DBPath}, logger)
	if err != nil {
		return err
	}
	defer log.Close()

	deps := indexer.Dependencies{
		EventLog:   log,
		Extractor:  events.NewExtractor(events.ExtractorConfig{}, logger),
		Aggregator: aggregate.NewAggregator(logger),
	}

	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		chainID, err := chainClient.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		logger.Info("rpc connected", zap.String("rpc", cfg.RPCURL), zap.Stringer("chain_id", chainID))
		deps.Head = chainClient
	}

	switch cfg.Sink {
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		deps.Storage = store
		deps.StatsSink = store
		if cfg.CheckpointEnabled {
			deps.Checkpoint = &indexer.DBCheckpointStore{Store: store, Name: cfg.StateName}
		}
	default:
		deps.Storage = storage.NewJsonlStorage(cfg.Out)
		if cfg.CheckpointEnabled {
			deps.Checkpoint = indexer.NewFileCheckpointStore(cfg.Checkpoint)
		}
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    model.BlockNumber(cfg.FromBlock),
		ToBlock:      model.BlockNumber(cfg.ToBlock),
		Keys:         keys,
		BatchSize:    cfg.BatchSize,
		MaxEvents:    cfg.MaxEvents,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, deps, logger)

	logger.Info("indexer start",
		zap.String("db", cfg.DBPath),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("keys", len(keys)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("sink", cfg.Sink),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	runErr := runner.Run(ctx)
	deps.Aggregator.Log()
	return runErr
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
