package model

import "transferScope/internal/felt"

// BlockNumber is a Starknet block height.
type BlockNumber uint64

// EventKey is one entry of an event's key list. The first key is the
// event selector.
type EventKey felt.Felt

// EventData is one 32-byte word of an event's data blob.
type EventData felt.Felt

// ContractAddress identifies the contract that emitted an event.
type ContractAddress felt.Felt

// TransactionHash identifies the transaction that emitted an event.
type TransactionHash felt.Felt

func (k EventKey) Felt() felt.Felt { return felt.Felt(k) }

func (k EventKey) String() string { return felt.Felt(k).Hex() }

func (d EventData) Felt() felt.Felt { return felt.Felt(d) }

func (a ContractAddress) Felt() felt.Felt { return felt.Felt(a) }

func (a ContractAddress) String() string { return felt.Felt(a).Hex() }

func (a ContractAddress) MarshalText() ([]byte, error) { return felt.Felt(a).MarshalText() }

func (a *ContractAddress) UnmarshalText(text []byte) error {
	return (*felt.Felt)(a).UnmarshalText(text)
}

func (h TransactionHash) String() string { return felt.Felt(h).Hex() }

func (h TransactionHash) MarshalText() ([]byte, error) { return felt.Felt(h).MarshalText() }

func (h *TransactionHash) UnmarshalText(text []byte) error {
	return (*felt.Felt)(h).UnmarshalText(text)
}
