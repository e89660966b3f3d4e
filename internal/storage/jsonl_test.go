package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

func sampleEvents() []model.EmittedEvent {
	return []model.EmittedEvent{
		{
			ContractAddress: model.ContractAddress(felt.FromUint64(0x111)),
			From:            "0",
			To:              "10",
			TokenID:         "1",
			BlockNumber:     1,
			TransactionHash: model.TransactionHash(felt.FromUint64(0x101)),
			Classification:  model.Mint,
			ContractKind:    model.ERC721,
		},
		{
			ContractAddress: model.ContractAddress(felt.FromUint64(0x111)),
			From:            "10",
			To:              "0",
			TokenID:         "1",
			BlockNumber:     3,
			TransactionHash: model.TransactionHash(felt.FromUint64(0x103)),
			Classification:  model.Burn,
			ContractKind:    model.ERC721,
		},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transfers.jsonl")
	store := NewJsonlStorage(path)
	events := sampleEvents()

	require.NoError(t, store.PutTransferBatch(context.Background(), events[:1]))
	require.NoError(t, store.PutTransferBatch(context.Background(), events[1:]))
	require.NoError(t, store.PutTransferBatch(context.Background(), nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var got []model.EmittedEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event model.EmittedEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		got = append(got, event)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, events, got)
}

func TestJsonlWriter(t *testing.T) {
	var buf bytes.Buffer
	store := NewJsonlWriter(&buf)

	require.NoError(t, store.PutTransferBatch(context.Background(), sampleEvents()))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"event_type":"Mint"`)
	assert.Contains(t, string(lines[1]), `"transaction_hash":"0x103"`)
}

func TestNewJsonlStorageStdout(t *testing.T) {
	store := NewJsonlStorage(StdoutPath)
	assert.Equal(t, os.Stdout, store.out)
}
