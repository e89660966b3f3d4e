package indexer

import (
	"fmt"
	"strings"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

// TransferKey is the selector of events named Transfer.
var TransferKey = model.EventKey(felt.MustParseHex("0x0099cd8bde557814842a3121e8ddfd433a539b8c9f14bf31ebf108d12e6196e9"))

var knownKeys = map[string]model.EventKey{
	"transfer": TransferKey,
}

// ParseKeys converts hex felts or known event names into event keys.
func ParseKeys(inputs []string) ([]model.EventKey, error) {
	keys := make([]model.EventKey, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if key, ok := knownKeys[strings.ToLower(input)]; ok {
			keys = append(keys, key)
			continue
		}
		f, err := felt.ParseHex(input)
		if err != nil {
			return nil, fmt.Errorf("invalid key: %s: %w", input, err)
		}
		keys = append(keys, model.EventKey(f))
	}
	return keys, nil
}

// ParseAddress converts a hex string into a contract address.
func ParseAddress(input string) (model.ContractAddress, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.ContractAddress{}, fmt.Errorf("address is required")
	}
	f, err := felt.ParseHex(input)
	if err != nil {
		return model.ContractAddress{}, fmt.Errorf("invalid address: %s: %w", input, err)
	}
	return model.ContractAddress(f), nil
}
