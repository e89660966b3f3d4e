package felt

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// keyTokenLen is the length of one padded base64 encoded felt.
const keyTokenLen = 44

// DecodeChunks splits b into consecutive 32-byte big-endian values.
func DecodeChunks(b []byte) ([]Felt, error) {
	if len(b)%Size != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedValue, len(b), Size)
	}
	out := make([]Felt, 0, len(b)/Size)
	for offset := 0; offset < len(b); offset += Size {
		f, err := DecodeBE(b[offset : offset+Size])
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", offset/Size, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// DecodeKeyList decodes the space separated base64 key column of the event table.
func DecodeKeyList(text string) ([]Felt, error) {
	if text == "" {
		return []Felt{}, nil
	}

	var scratch [keyTokenLen / 4 * 3]byte
	tokens := strings.Split(text, " ")
	out := make([]Felt, 0, len(tokens))
	for i, token := range tokens {
		if token == "" || len(token) > keyTokenLen {
			return nil, fmt.Errorf("%w: token %d has invalid length %d", ErrMalformedKey, i, len(token))
		}
		n, err := base64.StdEncoding.Decode(scratch[:], []byte(token))
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %v", ErrMalformedKey, i, err)
		}
		f, err := FromBESlice(scratch[:n])
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %v", ErrMalformedKey, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// EncodeKeyBase64 encodes a key the same way the event table stores it.
func EncodeKeyBase64(f Felt) string {
	return base64.StdEncoding.EncodeToString(f.b[:])
}

// JoinKeys renders keys as the event table's key column.
func JoinKeys(keys []Felt) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, EncodeKeyBase64(k))
	}
	return strings.Join(parts, " ")
}
