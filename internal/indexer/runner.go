package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"transferScope/internal/aggregate"
	"transferScope/internal/class"
	"transferScope/internal/events"
	"transferScope/internal/felt"
	"transferScope/internal/model"
	"transferScope/internal/storage"
)

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    model.BlockNumber
	ToBlock      model.BlockNumber
	Keys         []model.EventKey
	BatchSize    uint64
	MaxEvents    int
	MaxRetries   int
	RetryBackoff time.Duration
}

// EventLog is the read side of the node database. *eventlog.Log satisfies it.
type EventLog interface {
	ReadTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	LatestBlock(ctx context.Context) (model.BlockNumber, bool, error)
}

// HeadSource reports the chain head. *chain.Client satisfies it.
type HeadSource interface {
	BlockNumber(ctx context.Context) (model.BlockNumber, error)
}

// Dependencies are the collaborators of a Runner. Head, Checkpoint,
// Aggregator and StatsSink are optional. StatsSink is only used together
// with Aggregator.
type Dependencies struct {
	EventLog   EventLog
	Extractor  *events.Extractor
	Storage    storage.Storage
	Head       HeadSource
	Checkpoint CheckpointStore
	Aggregator *aggregate.Aggregator
	StatsSink  aggregate.StatsSink
}

// Runner extracts transfers from the event log batch by batch and writes
// them to storage.
type Runner struct {
	cfg    RunConfig
	deps   Dependencies
	logger *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, deps Dependencies, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, deps: deps, logger: logger}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.deps.EventLog == nil {
		return fmt.Errorf("event log is nil")
	}
	if r.deps.Extractor == nil {
		return fmt.Errorf("extractor is nil")
	}
	if r.deps.Storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		head, ok, err := r.resolveHead(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		if !ok {
			r.logger.Info("event log is empty")
			return nil
		}
		to = head
	}

	if r.deps.Checkpoint != nil {
		last, ok, err := r.deps.Checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", uint64(last)), zap.Uint64("from", uint64(from)))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", uint64(from)), zap.Uint64("to", uint64(to)))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	var total int
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("extract events", zap.Uint64("from", uint64(blockRange.From)), zap.Uint64("to", uint64(blockRange.To)))

		emitted, err := r.extractWithRetry(ctx, blockRange.Filter(r.cfg.Keys))
		if err != nil {
			return fmt.Errorf("extract events %d-%d: %w", blockRange.From, blockRange.To, err)
		}
		if err := events.CheckPageSize(len(emitted), r.cfg.MaxEvents); err != nil {
			return fmt.Errorf("blocks %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		if err := r.storeWithRetry(ctx, emitted); err != nil {
			return fmt.Errorf("store transfers: %w", err)
		}
		if r.deps.Aggregator != nil {
			r.deps.Aggregator.Add(emitted)
			// counts must be stored before the checkpoint moves past them
			if err := r.flushWithRetry(ctx); err != nil {
				return fmt.Errorf("flush contract stats: %w", err)
			}
		}

		if r.deps.Checkpoint != nil {
			if err := r.deps.Checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		total += len(emitted)
		r.logger.Info("batch complete", zap.Int("transfers", len(emitted)), zap.Uint64("from", uint64(blockRange.From)), zap.Uint64("to", uint64(blockRange.To)))
	}

	r.logger.Info("sync complete", zap.Int("transfers", total), zap.Int("batches", len(ranges)))
	return nil
}

func (r *Runner) resolveHead(ctx context.Context) (model.BlockNumber, bool, error) {
	if r.deps.Head != nil {
		var head model.BlockNumber
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			head, err = r.deps.Head.BlockNumber(ctx)
			if err != nil {
				r.logger.Warn("head lookup failed", zap.Error(err))
			}
			return err
		})
		return head, err == nil, err
	}
	return r.deps.EventLog.LatestBlock(ctx)
}

func (r *Runner) extractWithRetry(ctx context.Context, filter model.EventFilter) ([]model.EmittedEvent, error) {
	var emitted []model.EmittedEvent
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.deps.EventLog.ReadTx(ctx, func(tx *sqlx.Tx) error {
			var err error
			emitted, err = r.deps.Extractor.GetEvents(ctx, tx, filter)
			return err
		})
		if err == nil {
			return nil
		}
		if isCorrupt(err) {
			return permanent(err)
		}
		r.logger.Warn("extract events failed", zap.Error(err))
		return err
	})
	return emitted, err
}

func (r *Runner) storeWithRetry(ctx context.Context, emitted []model.EmittedEvent) error {
	return withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.deps.Storage.PutTransferBatch(ctx, emitted)
		if err != nil {
			r.logger.Warn("store transfers failed", zap.Error(err), zap.Int("transfers", len(emitted)))
		}
		return err
	})
}

func (r *Runner) flushWithRetry(ctx context.Context) error {
	if r.deps.StatsSink == nil {
		return nil
	}
	return withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.deps.Aggregator.Flush(ctx, r.deps.StatsSink)
		if err != nil {
			r.logger.Warn("flush contract stats failed", zap.Error(err))
		}
		return err
	})
}

// isCorrupt reports errors caused by the stored data itself. Reading the
// same rows again fails the same way.
func isCorrupt(err error) bool {
	return errors.Is(err, class.ErrDecompression) ||
		errors.Is(err, class.ErrInvalidClassDefinition) ||
		errors.Is(err, felt.ErrMalformedValue) ||
		errors.Is(err, felt.ErrMalformedKey)
}
