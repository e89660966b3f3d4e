package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transferScope/internal/model"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS transfer_events (
	block_number     BIGINT NOT NULL,
	event_index      BIGINT NOT NULL,
	transaction_hash TEXT NOT NULL,
	contract_address TEXT NOT NULL,
	token_id         TEXT NOT NULL,
	from_address     TEXT NOT NULL,
	to_address       TEXT NOT NULL,
	event_type       TEXT NOT NULL,
	contract_type    TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (block_number, transaction_hash, event_index)
);
CREATE TABLE IF NOT EXISTS contract_transfer_stats (
	contract_address TEXT PRIMARY KEY,
	mint_count       BIGINT NOT NULL,
	burn_count       BIGINT NOT NULL,
	transfer_count   BIGINT NOT NULL,
	first_block      BIGINT NOT NULL,
	last_block       BIGINT NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS indexer_state (
	name                 TEXT PRIMARY KEY,
	last_processed_block BIGINT NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Store provides Postgres persistence for transfer events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// upsertTransferSQL keys a row on the event position inside its block and
// transaction. One transaction may move the same token more than once.
const upsertTransferSQL = `
	INSERT INTO transfer_events (
		block_number, event_index, transaction_hash, contract_address, token_id,
		from_address, to_address, event_type, contract_type, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (block_number, transaction_hash, event_index)
	DO UPDATE SET
		contract_address = EXCLUDED.contract_address,
		token_id = EXCLUDED.token_id,
		from_address = EXCLUDED.from_address,
		to_address = EXCLUDED.to_address,
		event_type = EXCLUDED.event_type,
		contract_type = EXCLUDED.contract_type
`

// PutTransferBatch upserts classified events. Replaying a block range
// overwrites the rows it wrote before.
func (s *Store) PutTransferBatch(ctx context.Context, events []model.EmittedEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(upsertTransferSQL,
			int64(event.BlockNumber),
			int64(event.EventIndex),
			event.TransactionHash.String(),
			event.ContractAddress.String(),
			event.TokenID,
			event.From,
			event.To,
			string(event.Classification),
			string(event.ContractKind),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertContractStats merges per-contract counters into the stored totals.
func (s *Store) UpsertContractStats(ctx context.Context, stats []model.ContractStats) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO contract_transfer_stats (
				contract_address, mint_count, burn_count, transfer_count, first_block, last_block, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (contract_address)
			DO UPDATE SET
				mint_count = contract_transfer_stats.mint_count + EXCLUDED.mint_count,
				burn_count = contract_transfer_stats.burn_count + EXCLUDED.burn_count,
				transfer_count = contract_transfer_stats.transfer_count + EXCLUDED.transfer_count,
				first_block = LEAST(contract_transfer_stats.first_block, EXCLUDED.first_block),
				last_block = GREATEST(contract_transfer_stats.last_block, EXCLUDED.last_block),
				updated_at = now()
		`,
			st.ContractAddress.String(),
			int64(st.Mints),
			int64(st.Burns),
			int64(st.Transfers),
			int64(st.FirstBlock),
			int64(st.LastBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range stats {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (model.BlockNumber, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return model.BlockNumber(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block model.BlockNumber) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}
