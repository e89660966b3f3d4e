// Package eventlogtest builds in-memory event log databases for tests.
package eventlogtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"transferScope/internal/class"
	"transferScope/internal/eventlog"
	"transferScope/internal/felt"
)

// NewDB opens an in-memory SQLite database with the event log schema.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open(eventlog.DriverName, ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, eventlog.ApplySchema(context.Background(), db))
	return db
}

// AddContract deploys a class with the given JSON definition at address.
func AddContract(t testing.TB, db *sqlx.DB, address, classHash felt.Felt, definition string) {
	t.Helper()
	blob, err := class.Compress([]byte(definition))
	require.NoError(t, err)
	AddContractBlob(t, db, address, classHash, blob)
}

// AddContractBlob deploys a class whose stored definition is blob as is.
func AddContractBlob(t testing.TB, db *sqlx.DB, address, classHash felt.Felt, blob []byte) {
	t.Helper()
	hash := classHash.Bytes()
	addr := address.Bytes()
	_, err := db.Exec(`INSERT OR IGNORE INTO contract_code (hash, definition) VALUES (?, ?)`, hash[:], blob)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO contracts (address, hash) VALUES (?, ?)`, addr[:], hash[:])
	require.NoError(t, err)
}

// Event is a fixture row of the starknet_events table.
type Event struct {
	BlockNumber uint64
	Index       uint64
	TxHash      felt.Felt
	From        felt.Felt
	Keys        []felt.Felt
	Data        []felt.Felt
	// RawData replaces the encoded Data when set.
	RawData []byte
}

// AddEvent inserts an event row, encoding keys and data the way the node does.
func AddEvent(t testing.TB, db *sqlx.DB, ev Event) {
	t.Helper()
	data := ev.RawData
	if data == nil {
		data = make([]byte, 0, len(ev.Data)*felt.Size)
		for _, word := range ev.Data {
			b := word.Bytes()
			data = append(data, b[:]...)
		}
	}
	tx := ev.TxHash.Bytes()
	from := ev.From.Bytes()
	_, err := db.Exec(
		`INSERT INTO starknet_events (block_number, idx, transaction_hash, from_address, keys, data) VALUES (?, ?, ?, ?, ?, ?)`,
		int64(ev.BlockNumber), int64(ev.Index), tx[:], from[:], felt.JoinKeys(ev.Keys), data,
	)
	require.NoError(t, err)
}
