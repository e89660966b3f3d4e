package class

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrDecompression reports a class definition blob that is not valid zstd.
var ErrDecompression = errors.New("decompression error")

var (
	zstdDecoder     *zstd.Decoder
	zstdDecoderOnce sync.Once
	zstdDecoderErr  error

	zstdEncoder     *zstd.Encoder
	zstdEncoderOnce sync.Once
	zstdEncoderErr  error
)

// Decompress inflates a zstd compressed class definition.
func Decompress(blob []byte) ([]byte, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	if zstdDecoderErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, zstdDecoderErr)
	}
	out, err := zstdDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out, nil
}

// Compress produces the blob format stored in contract_code.definition.
func Compress(doc []byte) ([]byte, error) {
	zstdEncoderOnce.Do(func() {
		zstdEncoder, zstdEncoderErr = zstd.NewWriter(nil)
	})
	if zstdEncoderErr != nil {
		return nil, zstdEncoderErr
	}
	return zstdEncoder.EncodeAll(doc, nil), nil
}
