// Package compressor measures how small a lossless compressor can make a
// byte stream.
//
// Ratios use payload sizes: each implementation subtracts the size its codec
// produces for empty input, so fixed container overhead (headers, end
// markers, checksums) does not leak into them. NCD works on raw compressed
// lengths instead, where normalization spans arbitrary stream pairs.
package compressor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm is returned for an unrecognized Algorithm value or
	// name.
	ErrUnknownAlgorithm = errors.New("unknown compression algorithm")

	// ErrEmptyInput is returned by CompressedSize for zero-length input.
	// Callers computing ratios must special-case empty input as ratio 1.0
	// instead (see Ratio).
	ErrEmptyInput = errors.New("byte stream is empty")
)

// Algorithm identifies a selectable compression algorithm.
type Algorithm int

const (
	// AlgorithmFlate is raw DEFLATE at best compression.
	AlgorithmFlate Algorithm = iota
	// AlgorithmLZMA is the LZMA coder.
	AlgorithmLZMA
	// AlgorithmZstd is zstandard at best compression.
	AlgorithmZstd
	// AlgorithmLZ4 is LZ4 block compression at high-compression settings.
	AlgorithmLZ4
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmFlate:
		return "flate"
	case AlgorithmLZMA:
		return "lzma"
	case AlgorithmZstd:
		return "zstd"
	case AlgorithmLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ParseAlgorithm converts a name produced by Algorithm.String back to its
// value.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "flate":
		return AlgorithmFlate, nil
	case "lzma":
		return AlgorithmLZMA, nil
	case "zstd":
		return AlgorithmZstd, nil
	case "lz4":
		return AlgorithmLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Compressor reports the compressed payload size of a byte stream. It never
// retains the compressed output.
//
// Implementations must be safe for concurrent use: sweep points may run in
// parallel workers sharing one Compressor.
type Compressor interface {
	// Name identifies the algorithm (matches Algorithm.String()).
	Name() string

	// CompressedSize returns the compressed payload size of b in bytes,
	// with the codec's empty-input overhead subtracted and clamped to a
	// minimum of 1. Returns ErrEmptyInput for len(b) == 0.
	CompressedSize(b []byte) (int, error)
}

// For returns a Compressor for the given algorithm.
func For(a Algorithm) (Compressor, error) {
	switch a {
	case AlgorithmFlate:
		return NewFlate()
	case AlgorithmLZMA:
		return NewLZMA()
	case AlgorithmZstd:
		return NewZstd()
	case AlgorithmLZ4:
		return NewLZ4(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
}

// Ratio returns len(b) divided by the compressed size of b. A ratio above 1
// means the stream compressed. Empty input is defined as exactly 1.0, the
// degenerate case, rather than a division error.
func Ratio(c Compressor, b []byte) (float64, error) {
	if len(b) == 0 {
		return 1.0, nil
	}

	size, err := c.CompressedSize(b)
	if err != nil {
		return 0, err
	}
	return float64(len(b)) / float64(size), nil
}

// rawSizer exposes the compressed length without overhead calibration.
// NCD needs the raw lengths: subtracting the container overhead shrinks the
// denominator and inflates the distance for highly compressible streams.
type rawSizer interface {
	rawSize(b []byte) (int, error)
}

// NCD computes the normalized compression distance between a and b:
// (C(ab) - min(C(a), C(b))) / max(C(a), C(b)). Values near 0 indicate the
// two streams share most of their structure. Sizes are raw compressed
// lengths, not the calibrated payload sizes CompressedSize reports.
func NCD(c Compressor, a, b []byte) (float64, error) {
	za, err := ncdSize(c, a)
	if err != nil {
		return 0, fmt.Errorf("compress a: %w", err)
	}
	zb, err := ncdSize(c, b)
	if err != nil {
		return 0, fmt.Errorf("compress b: %w", err)
	}

	joined := make([]byte, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	zab, err := ncdSize(c, joined)
	if err != nil {
		return 0, fmt.Errorf("compress ab: %w", err)
	}

	lo, hi := za, zb
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(zab-lo) / float64(hi), nil
}

func ncdSize(c Compressor, b []byte) (int, error) {
	if rs, ok := c.(rawSizer); ok {
		return rs.rawSize(b)
	}
	return c.CompressedSize(b)
}

// clampPayload subtracts the empty-input overhead from a raw compressed
// size, keeping at least one byte so ratios stay finite.
func clampPayload(raw, overhead int) int {
	size := raw - overhead
	if size < 1 {
		size = 1
	}
	return size
}
