package blobs

import (
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

// Compress returns data compressed with zstd.
func Compress(data []byte) []byte {
	encoderOnce.Do(func() {
		// A nil writer with default options never fails.
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	})
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil)
	})
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to decompress blob")
	}
	return out, nil
}
