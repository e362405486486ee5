package serialize

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Compressor wraps a zstd encoder. EncodeAll is goroutine-safe, so one
// instance serves every request.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a compressor at the default level.
// Caller must call Close() when done to release resources.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Compressor{encoder: encoder}, nil
}

func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (c *Compressor) Close() error {
	return c.encoder.Close()
}

// Decompressor wraps a zstd decoder.
type Decompressor struct {
	decoder *zstd.Decoder
}

func NewDecompressor() (*Decompressor, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Decompressor{decoder: decoder}, nil
}

func (d *Decompressor) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}
	out, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

func (d *Decompressor) Close() {
	d.decoder.Close()
}

var (
	sharedCompressor   = sync.OnceValues(NewCompressor)
	sharedDecompressor = sync.OnceValues(NewDecompressor)
)

// CompressCatalog compresses a serialized listing with a process-wide
// compressor.
func CompressCatalog(data []byte) ([]byte, error) {
	c, err := sharedCompressor()
	if err != nil {
		return nil, err
	}
	return c.Compress(data)
}

// DecompressCatalog reverses CompressCatalog.
func DecompressCatalog(data []byte) ([]byte, error) {
	d, err := sharedDecompressor()
	if err != nil {
		return nil, err
	}
	return d.Decompress(data)
}
