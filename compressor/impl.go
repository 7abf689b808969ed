package compressor

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"
)

// flateCompressor measures raw DEFLATE output (no zlib/gzip container) at
// best compression.
type flateCompressor struct {
	overhead int
}

// NewFlate returns the deflate-family compressor.
func NewFlate() (Compressor, error) {
	overhead, err := flateSize(nil)
	if err != nil {
		return nil, fmt.Errorf("calibrate flate overhead: %w", err)
	}
	return &flateCompressor{overhead: overhead}, nil
}

func (c *flateCompressor) Name() string { return AlgorithmFlate.String() }

func (c *flateCompressor) CompressedSize(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyInput
	}
	raw, err := flateSize(b)
	if err != nil {
		return 0, err
	}
	return clampPayload(raw, c.overhead), nil
}

func (c *flateCompressor) rawSize(b []byte) (int, error) {
	return flateSize(b)
}

func flateSize(b []byte) (int, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(b); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// lzmaCompressor measures LZMA output with the container header subtracted.
type lzmaCompressor struct {
	overhead int
}

// NewLZMA returns the LZMA-family compressor.
func NewLZMA() (Compressor, error) {
	overhead, err := lzmaSize(nil)
	if err != nil {
		return nil, fmt.Errorf("calibrate lzma overhead: %w", err)
	}
	return &lzmaCompressor{overhead: overhead}, nil
}

func (c *lzmaCompressor) Name() string { return AlgorithmLZMA.String() }

func (c *lzmaCompressor) CompressedSize(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyInput
	}
	raw, err := lzmaSize(b)
	if err != nil {
		return 0, err
	}
	return clampPayload(raw, c.overhead), nil
}

func (c *lzmaCompressor) rawSize(b []byte) (int, error) {
	return lzmaSize(b)
}

func lzmaSize(b []byte) (int, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(b); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// zstdCompressor measures zstd frames at best compression. The encoder is
// created once; EncodeAll is safe for concurrent use.
type zstdCompressor struct {
	enc      *zstd.Encoder
	overhead int
}

// NewZstd returns the zstd compressor.
func NewZstd() (Compressor, error) {
	// WithZeroFrames makes empty input produce a full frame, so the
	// overhead calibration sees the real container cost.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	overhead := len(enc.EncodeAll(nil, nil))
	return &zstdCompressor{enc: enc, overhead: overhead}, nil
}

func (c *zstdCompressor) Name() string { return AlgorithmZstd.String() }

func (c *zstdCompressor) CompressedSize(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyInput
	}
	raw := len(c.enc.EncodeAll(b, nil))
	return clampPayload(raw, c.overhead), nil
}

func (c *zstdCompressor) rawSize(b []byte) (int, error) {
	return len(c.enc.EncodeAll(b, nil)), nil
}

// lz4Compressor measures high-compression LZ4 blocks. Blocks carry no
// container overhead; incompressible input is counted at its raw length,
// matching block storage semantics.
type lz4Compressor struct{}

// NewLZ4 returns the lz4 compressor.
func NewLZ4() Compressor {
	return lz4Compressor{}
}

func (lz4Compressor) Name() string { return AlgorithmLZ4.String() }

func (lz4Compressor) CompressedSize(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyInput
	}

	dst := make([]byte, lz4.CompressBlockBound(len(b)))
	var c lz4.CompressorHC
	n, err := c.CompressBlock(b, dst)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Incompressible, stored raw
		return len(b), nil
	}
	return n, nil
}

func (c lz4Compressor) rawSize(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	return c.CompressedSize(b)
}
