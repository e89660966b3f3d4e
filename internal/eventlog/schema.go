package eventlog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the subset of the pathfinder database the indexer reads. It is
// owned by the node; the indexer only applies it to build fixture databases.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS contract_code (
		hash       BLOB PRIMARY KEY,
		bytecode   BLOB,
		abi        BLOB,
		definition BLOB
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		address BLOB PRIMARY KEY,
		hash    BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS starknet_events (
		block_number     INTEGER NOT NULL,
		idx              INTEGER NOT NULL,
		transaction_hash BLOB NOT NULL,
		from_address     BLOB NOT NULL,
		keys             TEXT NOT NULL,
		data             BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS starknet_events_block_number ON starknet_events(block_number)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS starknet_events_keys USING fts5(
		keys,
		content='starknet_events',
		content_rowid='rowid',
		tokenize='ascii'
	)`,
	`CREATE TRIGGER IF NOT EXISTS starknet_events_fts_insert AFTER INSERT ON starknet_events
	BEGIN
		INSERT INTO starknet_events_keys(rowid, keys) VALUES (new.rowid, new.keys);
	END`,
}

// ApplySchema creates the event log tables on db.
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
