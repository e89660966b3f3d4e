package aggregate

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"transferScope/internal/model"
)

// StatsSink persists per-contract counters. *postgres.Store satisfies it.
type StatsSink interface {
	UpsertContractStats(ctx context.Context, stats []model.ContractStats) error
}

// Aggregator folds classified events into per-contract statistics.
type Aggregator struct {
	logger *zap.Logger

	mu           sync.Mutex
	accumulators map[model.ContractAddress]*Accumulator
	// pending holds the counters added since the last successful Flush.
	pending map[model.ContractAddress]*Accumulator
	failed  int
}

func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		logger:       logger,
		accumulators: make(map[model.ContractAddress]*Accumulator),
		pending:      make(map[model.ContractAddress]*Accumulator),
	}
}

// Add folds a batch of events into the running counters. Events that cannot
// be counted are logged and dropped.
func (a *Aggregator) Add(events []model.EmittedEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, event := range events {
		if err := fold(a.accumulators, event); err != nil {
			a.failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.Stringer("contract_address", event.ContractAddress))
			continue
		}
		_ = fold(a.pending, event)
	}
}

func fold(accumulators map[model.ContractAddress]*Accumulator, event model.EmittedEvent) error {
	acc := accumulators[event.ContractAddress]
	if acc == nil {
		acc = NewAccumulator(event)
		accumulators[event.ContractAddress] = acc
	}
	return acc.AddEvent(event)
}

// Snapshot returns the counters of every contract seen so far, ordered by
// address.
func (a *Aggregator) Snapshot() []model.ContractStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedStats(a.accumulators)
}

// Pending returns the counters added since the last successful Flush.
func (a *Aggregator) Pending() []model.ContractStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedStats(a.pending)
}

func sortedStats(accumulators map[model.ContractAddress]*Accumulator) []model.ContractStats {
	out := make([]model.ContractStats, 0, len(accumulators))
	for _, acc := range accumulators {
		out = append(out, acc.Stats())
	}
	sort.Slice(out, func(i, j int) bool {
		left := out[i].ContractAddress.Felt().Bytes()
		right := out[j].ContractAddress.Felt().Bytes()
		return bytes.Compare(left[:], right[:]) < 0
	})
	return out
}

// Reset drops all counters.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accumulators = make(map[model.ContractAddress]*Accumulator)
	a.pending = make(map[model.ContractAddress]*Accumulator)
	a.failed = 0
}

// Flush writes the pending counters to sink and clears them, so repeated
// flushes never count an event twice. The running totals are kept. On error
// the pending counters stay for the next attempt. Flush and Add must not run
// concurrently.
func (a *Aggregator) Flush(ctx context.Context, sink StatsSink) error {
	stats := a.Pending()
	if sink != nil && len(stats) > 0 {
		if err := sink.UpsertContractStats(ctx, stats); err != nil {
			return fmt.Errorf("upsert contract stats: %w", err)
		}
	}
	a.mu.Lock()
	a.pending = make(map[model.ContractAddress]*Accumulator)
	a.mu.Unlock()
	return nil
}

// Log writes one summary line per contract and a total line.
func (a *Aggregator) Log() {
	stats := a.Snapshot()
	var mints, burns, transfers uint64
	for _, st := range stats {
		mints += st.Mints
		burns += st.Burns
		transfers += st.Transfers
		a.logger.Info("contract transfers",
			zap.Stringer("contract_address", st.ContractAddress),
			zap.Uint64("mints", st.Mints),
			zap.Uint64("burns", st.Burns),
			zap.Uint64("transfers", st.Transfers),
			zap.Uint64("first_block", uint64(st.FirstBlock)),
			zap.Uint64("last_block", uint64(st.LastBlock)),
		)
	}

	a.mu.Lock()
	failed := a.failed
	a.mu.Unlock()

	a.logger.Info("aggregate complete",
		zap.Int("contracts", len(stats)),
		zap.Uint64("mints", mints),
		zap.Uint64("burns", burns),
		zap.Uint64("transfers", transfers),
		zap.Int("failed", failed),
	)
}
