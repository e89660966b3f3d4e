package aggregate

import (
	"fmt"

	"transferScope/internal/model"
)

// Accumulator holds the running counters of one contract.
type Accumulator struct {
	ContractAddress model.ContractAddress
	Mints           uint64
	Burns           uint64
	Transfers       uint64
	FirstBlock      model.BlockNumber
	LastBlock       model.BlockNumber
}

func NewAccumulator(event model.EmittedEvent) *Accumulator {
	return &Accumulator{
		ContractAddress: event.ContractAddress,
		FirstBlock:      event.BlockNumber,
		LastBlock:       event.BlockNumber,
	}
}

func (a *Accumulator) AddEvent(event model.EmittedEvent) error {
	if event.ContractAddress != a.ContractAddress {
		return fmt.Errorf("event of %s added to accumulator of %s", event.ContractAddress, a.ContractAddress)
	}
	if event.BlockNumber < a.FirstBlock {
		a.FirstBlock = event.BlockNumber
	}
	if event.BlockNumber > a.LastBlock {
		a.LastBlock = event.BlockNumber
	}

	switch event.Classification {
	case model.Mint:
		a.Mints++
	case model.Burn:
		a.Burns++
	case model.Transfer:
		a.Transfers++
	default:
		return fmt.Errorf("unknown classification %q", event.Classification)
	}
	return nil
}

func (a *Accumulator) Stats() model.ContractStats {
	return model.ContractStats{
		ContractAddress: a.ContractAddress,
		Mints:           a.Mints,
		Burns:           a.Burns,
		Transfers:       a.Transfers,
		FirstBlock:      a.FirstBlock,
		LastBlock:       a.LastBlock,
	}
}
