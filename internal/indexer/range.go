package indexer

import (
	"fmt"

	"transferScope/internal/model"
)

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From model.BlockNumber
	To   model.BlockNumber
}

// Filter selects the events of the range carrying one of keys.
func (r BlockRange) Filter(keys []model.EventKey) model.EventFilter {
	return model.BlockRangeFilter(r.From, r.To, keys)
}

// SplitRange splits a block range into batches of at most batchSize blocks.
func SplitRange(from, to model.BlockNumber, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (uint64(to-from)/batchSize)+1)
	start := from
	for {
		end := to
		if uint64(to-start) >= batchSize {
			end = start + model.BlockNumber(batchSize) - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}
