// Package codec maps symbol sequences to the byte streams handed to the
// compressors.
//
// The encoding is fixed-width: one byte per symbol for alphabets up to 256,
// two little-endian bytes per symbol up to 65536. Variable-width codes are
// deliberately avoided here; they would pre-compress the stream and distort
// what the compression ratio is meant to measure.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxAlphabet is the largest supported alphabet size.
const MaxAlphabet = 1 << 16

// ErrAlphabetTooLarge is returned for alphabets beyond MaxAlphabet.
var ErrAlphabetTooLarge = errors.New("alphabet size exceeds 65536")

// Width returns the number of bytes used per symbol for an alphabet of size
// k.
func Width(k int) (int, error) {
	switch {
	case k < 1:
		return 0, fmt.Errorf("alphabet size must be at least 1, got %d", k)
	case k <= 256:
		return 1, nil
	case k <= MaxAlphabet:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: k=%d", ErrAlphabetTooLarge, k)
	}
}

// Encode converts a symbol sequence over an alphabet of size k to a byte
// stream, one fixed-width code per symbol. Symbols must lie in [0,k).
func Encode(symbols []int, k int) ([]byte, error) {
	width, err := Width(k)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(symbols)*width)
	for i, s := range symbols {
		if s < 0 || s >= k {
			return nil, fmt.Errorf("symbol %d at index %d out of range [0,%d)", s, i, k)
		}
		if width == 1 {
			out[i] = byte(s)
		} else {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
		}
	}
	return out, nil
}

// Decode is the exact inverse of Encode for the same k.
func Decode(b []byte, k int) ([]int, error) {
	width, err := Width(k)
	if err != nil {
		return nil, err
	}
	if len(b)%width != 0 {
		return nil, fmt.Errorf("byte stream length %d is not a multiple of symbol width %d", len(b), width)
	}

	out := make([]int, len(b)/width)
	for i := range out {
		var s int
		if width == 1 {
			s = int(b[i])
		} else {
			s = int(binary.LittleEndian.Uint16(b[i*2:]))
		}
		if s >= k {
			return nil, fmt.Errorf("decoded symbol %d at index %d out of range [0,%d)", s, i, k)
		}
		out[i] = s
	}
	return out, nil
}
