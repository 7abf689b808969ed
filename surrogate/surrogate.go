// Package surrogate estimates the compressibility floor of a byte stream.
//
// A surrogate is a uniformly random permutation of the stream: it keeps the
// symbol histogram but destroys all temporal structure. The mean compressed
// size over m surrogates is the baseline attributable to the alphabet alone,
// used to normalize the real compression ratio.
package surrogate

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/johnhw/compression-curves/compressor"
)

// ErrInvalidRepeats is returned when the surrogate count is below 1.
var ErrInvalidRepeats = errors.New("surrogate count must be at least 1")

// Ratio compresses m independent random permutations of b and returns
// len(b) divided by their mean compressed size. Larger m reduces the
// variance of the baseline at linear cost.
//
// rng is the source for the shuffles; pass a seeded source for reproducible
// baselines. A nil rng draws a fresh seed, never the global generator.
// Empty input returns 1.0, consistent with compressor.Ratio.
func Ratio(b []byte, m int, c compressor.Compressor, rng *rand.Rand) (float64, error) {
	if m < 1 {
		return 0, fmt.Errorf("%w: m=%d", ErrInvalidRepeats, m)
	}
	if len(b) == 0 {
		return 1.0, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	buf := make([]byte, len(b))
	var total int
	for i := 0; i < m; i++ {
		copy(buf, b)
		rng.Shuffle(len(buf), func(x, y int) {
			buf[x], buf[y] = buf[y], buf[x]
		})

		size, err := c.CompressedSize(buf)
		if err != nil {
			return 0, fmt.Errorf("compress surrogate %d: %w", i, err)
		}
		total += size
	}

	mean := float64(total) / float64(m)
	return float64(len(b)) / mean, nil
}
