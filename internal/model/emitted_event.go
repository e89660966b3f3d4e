package model

// Classification is the transfer semantics of an emitted event.
type Classification string

const (
	Mint     Classification = "Mint"
	Burn     Classification = "Burn"
	Transfer Classification = "Transfer"
)

// ContractKind is the token standard an event was decoded under.
type ContractKind string

const (
	ERC721  ContractKind = "ERC721"
	ERC1155 ContractKind = "ERC1155"
)

// EmittedEvent is a classified token transfer ready for storage.
// From, To and TokenID are base 10 renderings of the underlying felts.
// BlockNumber, TransactionHash and EventIndex identify the event.
type EmittedEvent struct {
	ContractAddress ContractAddress `json:"contract_address"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	TokenID         string          `json:"token_id"`
	BlockNumber     BlockNumber     `json:"block_number"`
	EventIndex      uint64          `json:"event_index"`
	TransactionHash TransactionHash `json:"transaction_hash"`
	Classification  Classification  `json:"event_type"`
	ContractKind    ContractKind    `json:"contract_type"`
}
