package events

import (
	"transferScope/internal/class"
	"transferScope/internal/felt"
	"transferScope/internal/model"
)

const (
	transferEventName = "Transfer"
	tokenIDParamName  = "_tokenId"
	transferDataLen   = 3
)

// Classify maps sender and receiver onto mint, burn or transfer. The zero
// address stands for "nobody".
func Classify(from, to felt.Felt) model.Classification {
	switch {
	case from.IsZero():
		return model.Mint
	case to.IsZero():
		return model.Burn
	default:
		return model.Transfer
	}
}

// transferLayout checks that a Transfer definition has the ERC721 data
// layout [from, to, _tokenId]. Only the parameter at index 2 is checked by name.
func transferLayout(event *class.EventEntry) model.SkipReason {
	if len(event.Data) < transferDataLen {
		return model.SkipShortParams
	}
	if event.Data[2].Name != tokenIDParamName {
		return model.SkipTokenIDMissing
	}
	return ""
}

// buildTransfer reads data positionally as [from, to, token_id].
func buildTransfer(address model.ContractAddress, block model.BlockNumber, index uint64, tx model.TransactionHash, data []felt.Felt) model.EmittedEvent {
	from, to, tokenID := data[0], data[1], data[2]
	return model.EmittedEvent{
		ContractAddress: address,
		From:            from.Dec(),
		To:              to.Dec(),
		TokenID:         tokenID.Dec(),
		BlockNumber:     block,
		EventIndex:      index,
		TransactionHash: tx,
		Classification:  Classify(from, to),
		ContractKind:    model.ERC721,
	}
}
