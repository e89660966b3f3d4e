package eventlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transferScope/internal/class"
	"transferScope/internal/eventlog"
	"transferScope/internal/eventlog/eventlogtest"
	"transferScope/internal/felt"
	"transferScope/internal/model"
)

func TestLatestBlock(t *testing.T) {
	db := eventlogtest.NewDB(t)
	log := eventlog.New(db, nil)
	ctx := context.Background()

	_, ok, err := log.LatestBlock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, block := range []uint64{4, 12, 7} {
		eventlogtest.AddEvent(t, db, eventlogtest.Event{BlockNumber: block, Data: []felt.Felt{felt.Zero}})
	}

	latest, ok, err := log.LatestBlock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.BlockNumber(12), latest)
}

func TestClassDefinition(t *testing.T) {
	db := eventlogtest.NewDB(t)
	log := eventlog.New(db, nil)
	address := felt.FromUint64(0xabc)
	eventlogtest.AddContract(t, db, address, felt.FromUint64(1), `{"abi": []}`)

	blob, err := log.ClassDefinition(context.Background(), model.ContractAddress(address))
	require.NoError(t, err)
	doc, err := class.Decompress(blob)
	require.NoError(t, err)
	assert.JSONEq(t, `{"abi": []}`, string(doc))

	_, err = log.ClassDefinition(context.Background(), model.ContractAddress(felt.FromUint64(1)))
	assert.ErrorIs(t, err, eventlog.ErrContractNotFound)
}

func TestReadTxRollsBack(t *testing.T) {
	db := eventlogtest.NewDB(t)
	log := eventlog.New(db, nil)
	ctx := context.Background()

	err := log.ReadTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO contracts (address, hash) VALUES (x'01', x'02')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM contracts`))
	assert.Zero(t, count)

	boom := errors.New("boom")
	err = log.ReadTx(ctx, func(*sqlx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := eventlog.Open(context.Background(), eventlog.Config{}, nil)
	assert.Error(t, err)
}

func TestOpenReadOnly(t *testing.T) {
	path := t.TempDir() + "/events.sqlite"
	seed, err := sqlx.Open(eventlog.DriverName, path)
	require.NoError(t, err)
	require.NoError(t, eventlog.ApplySchema(context.Background(), seed))
	require.NoError(t, seed.Close())

	log, err := eventlog.Open(context.Background(), eventlog.Config{Path: path}, nil)
	require.NoError(t, err)
	defer log.Close()

	_, err = log.DB().Exec(`INSERT INTO contracts (address, hash) VALUES (x'01', x'02')`)
	assert.Error(t, err)
}
