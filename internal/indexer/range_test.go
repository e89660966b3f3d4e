package indexer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transferScope/internal/model"
)

func TestSplitRange(t *testing.T) {
	got, err := SplitRange(100, 105, 2)
	require.NoError(t, err)
	assert.Equal(t, []BlockRange{
		{From: 100, To: 101},
		{From: 102, To: 103},
		{From: 104, To: 105},
	}, got)
}

func TestSplitRangeSingle(t *testing.T) {
	got, err := SplitRange(5, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []BlockRange{{From: 5, To: 5}}, got)
}

func TestSplitRangeUneven(t *testing.T) {
	got, err := SplitRange(0, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []BlockRange{{From: 0, To: 2}, {From: 3, To: 4}}, got)
}

func TestSplitRangeTopOfRange(t *testing.T) {
	got, err := SplitRange(math.MaxUint64-1, math.MaxUint64, 1)
	require.NoError(t, err)
	assert.Equal(t, []BlockRange{
		{From: math.MaxUint64 - 1, To: math.MaxUint64 - 1},
		{From: math.MaxUint64, To: math.MaxUint64},
	}, got)
}

func TestSplitRangeInvalid(t *testing.T) {
	_, err := SplitRange(10, 9, 1)
	assert.Error(t, err)
	_, err = SplitRange(1, 10, 0)
	assert.Error(t, err)
}

func TestBlockRangeFilter(t *testing.T) {
	keys := []model.EventKey{TransferKey}
	filter := BlockRange{From: 3, To: 8}.Filter(keys)
	require.NotNil(t, filter.FromBlock)
	require.NotNil(t, filter.ToBlock)
	assert.Equal(t, model.BlockNumber(3), *filter.FromBlock)
	assert.Equal(t, model.BlockNumber(8), *filter.ToBlock)
	assert.Equal(t, keys, filter.Keys)
}
