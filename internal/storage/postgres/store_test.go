package postgres

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferKeyIsEventPosition(t *testing.T) {
	conflict := regexp.MustCompile(`ON CONFLICT \(([^)]*)\)`).FindStringSubmatch(upsertTransferSQL)
	require.Len(t, conflict, 2)
	assert.Equal(t, "block_number, transaction_hash, event_index", conflict[1])
	assert.NotContains(t, conflict[1], "token_id")
	assert.Contains(t, Schema, "PRIMARY KEY (block_number, transaction_hash, event_index)")
}

func TestTransferUpsertPlaceholders(t *testing.T) {
	columns := regexp.MustCompile(`(?s)INSERT INTO transfer_events \((.*?)\)`).FindStringSubmatch(upsertTransferSQL)
	require.Len(t, columns, 2)
	// created_at takes now() rather than a parameter
	params := len(strings.Split(columns[1], ",")) - 1
	assert.Equal(t, 9, params)
	assert.Contains(t, upsertTransferSQL, "$9, now())")
	assert.NotContains(t, upsertTransferSQL, "$10")
}
