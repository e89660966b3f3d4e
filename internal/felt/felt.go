package felt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Size is the byte length of a big-endian encoded field element.
const Size = 32

// modulus is the Starknet field prime 2^251 + 17*2^192 + 1.
var modulus = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")

var (
	// ErrMalformedValue reports a binary value that is not a valid field element.
	ErrMalformedValue = errors.New("malformed value")
	// ErrMalformedKey reports an event key token that cannot be decoded.
	ErrMalformedKey = errors.New("malformed key")
)

// Felt is an immutable Starknet field element stored as 32 big-endian bytes.
// The zero value is the zero element.
type Felt struct {
	b [Size]byte
}

// Zero is the zero field element, used as the null address.
var Zero Felt

// DecodeBE decodes exactly 32 big-endian bytes.
func DecodeBE(b []byte) (Felt, error) {
	if len(b) != Size {
		return Felt{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedValue, Size, len(b))
	}
	return FromBESlice(b)
}

// FromBESlice decodes up to 32 big-endian bytes, left padding shorter input.
func FromBESlice(b []byte) (Felt, error) {
	if len(b) > Size {
		return Felt{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrMalformedValue, len(b), Size)
	}
	var f Felt
	copy(f.b[Size-len(b):], b)
	if !f.toInt().Lt(modulus) {
		return Felt{}, fmt.Errorf("%w: value exceeds field modulus", ErrMalformedValue)
	}
	return f, nil
}

// FromUint64 builds a field element from a small integer.
func FromUint64(v uint64) Felt {
	var f Felt
	u := uint256.NewInt(v)
	f.b = u.Bytes32()
	return f
}

// ParseHex parses a hex string with or without 0x prefix. Odd digit counts
// are accepted.
func ParseHex(s string) (Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if digits == "" {
		return Felt{}, fmt.Errorf("%w: empty hex string", ErrMalformedValue)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return Felt{}, fmt.Errorf("%w: %s: %v", ErrMalformedValue, s, err)
	}
	return FromBESlice(data)
}

// MustParseHex is like ParseHex but panics on error.
func MustParseHex(s string) Felt {
	f, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Bytes returns the big-endian encoding.
func (f Felt) Bytes() [Size]byte {
	return f.b
}

func (f Felt) IsZero() bool {
	return f == Zero
}

// Dec renders the value in base 10.
func (f Felt) Dec() string {
	return f.toInt().Dec()
}

// Hex renders the value as 0x-prefixed hex without leading zeros.
func (f Felt) Hex() string {
	return f.toInt().Hex()
}

func (f Felt) String() string {
	return f.Hex()
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Felt) toInt() *uint256.Int {
	return new(uint256.Int).SetBytes32(f.b[:])
}
