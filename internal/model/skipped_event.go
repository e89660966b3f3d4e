package model

// SkipReason explains why an event row produced no EmittedEvent.
type SkipReason string

const (
	SkipNoABI          SkipReason = "no_abi"
	SkipNoTransfer     SkipReason = "no_transfer_event"
	SkipShortParams    SkipReason = "short_data_params"
	SkipShortData      SkipReason = "short_data"
	SkipTokenIDMissing SkipReason = "token_id_param_mismatch"
)

// SkippedEvent records an event row that was not classified.
type SkippedEvent struct {
	BlockNumber     BlockNumber     `json:"block_number"`
	TransactionHash TransactionHash `json:"transaction_hash"`
	ContractAddress ContractAddress `json:"contract_address"`
	Reason          SkipReason      `json:"reason"`
}
