package model

// ContractStats counts the transfers one contract emitted over a run.
type ContractStats struct {
	ContractAddress ContractAddress `json:"contract_address"`
	Mints           uint64          `json:"mints"`
	Burns           uint64          `json:"burns"`
	Transfers       uint64          `json:"transfers"`
	FirstBlock      BlockNumber     `json:"first_block"`
	LastBlock       BlockNumber     `json:"last_block"`
}

// Total is the number of events of any classification.
func (s ContractStats) Total() uint64 {
	return s.Mints + s.Burns + s.Transfers
}
