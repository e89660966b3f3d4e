package events

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"transferScope/internal/class"
	"transferScope/internal/felt"
	"transferScope/internal/model"
)

// BaseQuery selects every event together with its emitting contract's
// compressed class definition.
const BaseQuery = `SELECT
    starknet_events.block_number AS block_number,
    starknet_events.idx AS idx,
    starknet_events.transaction_hash AS transaction_hash,
    starknet_events.from_address AS from_address,
    cc.definition AS definition,
    starknet_events.data AS data,
    starknet_events.keys AS keys
FROM starknet_events
    INNER JOIN contracts AS c ON (starknet_events.from_address = c.address)
    INNER JOIN contract_code AS cc ON (c.hash = cc.hash)`

// Querier runs a read query. *sqlx.Tx and *sqlx.DB both satisfy it.
type Querier interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// ExtractorConfig configures the extractor.
type ExtractorConfig struct {
	// OnSkip, if set, is called for every row that yields no event.
	OnSkip func(model.SkippedEvent)
}

// Extractor turns event table rows into classified transfer events.
type Extractor struct {
	cfg    ExtractorConfig
	logger *zap.Logger
}

// NewExtractor builds an Extractor.
func NewExtractor(cfg ExtractorConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

type eventRow struct {
	BlockNumber     int64  `db:"block_number"`
	EventIndex      int64  `db:"idx"`
	TransactionHash []byte `db:"transaction_hash"`
	FromAddress     []byte `db:"from_address"`
	Definition      []byte `db:"definition"`
	Data            []byte `db:"data"`
	Keys            string `db:"keys"`
}

// GetEvents runs the filtered event query on q and classifies every row
// whose contract declares an ERC721 style Transfer event. Rows of other
// contracts are skipped; corrupt blobs abort the call.
func (e *Extractor) GetEvents(ctx context.Context, q Querier, filter model.EventFilter) ([]model.EmittedEvent, error) {
	query, args := BuildEventQuery(BaseQuery, filter.FromBlock, filter.ToBlock, filter.Keys)

	params := make([]interface{}, 0, len(args))
	for _, arg := range args {
		params = append(params, arg)
	}

	rows, err := q.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("execute event query: %w", err)
	}
	defer rows.Close()

	var scanned, skipped int
	emitted := make([]model.EmittedEvent, 0)
	for rows.Next() {
		var row eventRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		scanned++

		event, reason, err := e.decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", row.BlockNumber, err)
		}
		if reason != "" {
			skipped++
			e.skip(row, reason)
			continue
		}
		emitted = append(emitted, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch event rows: %w", err)
	}

	e.logger.Debug("events extracted",
		zap.Int("rows", scanned),
		zap.Int("emitted", len(emitted)),
		zap.Int("skipped", skipped),
	)
	return emitted, nil
}

func (e *Extractor) decodeRow(row eventRow) (model.EmittedEvent, model.SkipReason, error) {
	doc, err := class.Decompress(row.Definition)
	if err != nil {
		return model.EmittedEvent{}, "", err
	}
	contractClass, err := class.ParseClass(doc)
	if err != nil {
		return model.EmittedEvent{}, "", err
	}
	if !contractClass.HasABI() {
		return model.EmittedEvent{}, model.SkipNoABI, nil
	}
	transfer, ok := contractClass.Event(transferEventName)
	if !ok {
		return model.EmittedEvent{}, model.SkipNoTransfer, nil
	}

	// keys are decoded only to reject a corrupt key column
	if _, err := felt.DecodeKeyList(row.Keys); err != nil {
		return model.EmittedEvent{}, "", fmt.Errorf("decode keys: %w", err)
	}
	data, err := felt.DecodeChunks(row.Data)
	if err != nil {
		return model.EmittedEvent{}, "", fmt.Errorf("decode data: %w", err)
	}

	if reason := transferLayout(transfer); reason != "" {
		return model.EmittedEvent{}, reason, nil
	}
	if len(data) < transferDataLen {
		return model.EmittedEvent{}, model.SkipShortData, nil
	}

	address, err := felt.DecodeBE(row.FromAddress)
	if err != nil {
		return model.EmittedEvent{}, "", fmt.Errorf("decode from_address: %w", err)
	}
	txHash, err := felt.DecodeBE(row.TransactionHash)
	if err != nil {
		return model.EmittedEvent{}, "", fmt.Errorf("decode transaction_hash: %w", err)
	}

	event := buildTransfer(
		model.ContractAddress(address),
		model.BlockNumber(row.BlockNumber),
		uint64(row.EventIndex),
		model.TransactionHash(txHash),
		data,
	)
	return event, "", nil
}

func (e *Extractor) skip(row eventRow, reason model.SkipReason) {
	e.logger.Debug("event skipped",
		zap.Int64("block_number", row.BlockNumber),
		zap.String("reason", string(reason)),
	)
	if e.cfg.OnSkip == nil {
		return
	}
	skipped := model.SkippedEvent{
		BlockNumber: model.BlockNumber(row.BlockNumber),
		Reason:      reason,
	}
	if address, err := felt.DecodeBE(row.FromAddress); err == nil {
		skipped.ContractAddress = model.ContractAddress(address)
	}
	if txHash, err := felt.DecodeBE(row.TransactionHash); err == nil {
		skipped.TransactionHash = model.TransactionHash(txHash)
	}
	e.cfg.OnSkip(skipped)
}
