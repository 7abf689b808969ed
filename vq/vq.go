// Package vq quantizes a preprocessed series to a discrete symbol sequence.
//
// A Backend fits a codebook of k centers and assigns every sample to its
// nearest center under squared Euclidean distance. The default backend is an
// exact Lloyd's k-means; Subsampled wraps any backend to fit on a random
// subsample while still classifying the full series.
package vq

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrInsufficientData is returned when the series has fewer distinct
	// samples than the requested number of clusters.
	ErrInsufficientData = errors.New("not enough distinct samples for requested k")
)

// Result is the outcome of quantizing one series.
type Result struct {
	// Symbols holds one cluster index in [0,k) per input sample.
	Symbols []int
	// Distortion is the mean squared distance between each sample and its
	// assigned center, over the full series.
	Distortion float64
	// Codebook holds the k fitted centers, flattened (k * dim).
	Codebook []float64
	// Dim is the dimension of each center.
	Dim int
	// K is the number of centers.
	K int
}

type options struct {
	backend Backend
	rng     *rand.Rand
}

// Option configures Quantize.
type Option func(*options)

// WithBackend selects the clustering backend. Defaults to NewKMeans().
func WithBackend(b Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithRand injects the random source used for codebook seeding and
// subsampling. Defaults to an unseeded source; inject one for reproducible
// codebooks.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// Quantize fits a codebook of k centers on data and assigns every sample to
// its nearest center. data is row-major with dim values per sample.
//
// The codebook may be fit on a subsample (see Subsampled), but assignment
// always runs over the full series so the symbol sequence length matches the
// series length.
func Quantize(data []float64, dim, k int, optFns ...Option) (*Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidK, k)
	}
	if dim < 1 {
		return nil, fmt.Errorf("dimension must be at least 1, got %d", dim)
	}
	if len(data) == 0 || len(data)%dim != 0 {
		return nil, fmt.Errorf("data length %d is not a positive multiple of dim %d", len(data), dim)
	}

	if distinct := distinctSamples(data, dim, k); distinct < k {
		return nil, fmt.Errorf("%w: k=%d, distinct=%d", ErrInsufficientData, k, distinct)
	}

	o := options{
		backend: NewKMeans(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	centroids, err := o.backend.Fit(data, dim, k, o.rng)
	if err != nil {
		return nil, fmt.Errorf("fit codebook: %w", err)
	}

	symbols := o.backend.Assign(data, dim, centroids)

	n := len(data) / dim
	var total float64
	for i := 0; i < n; i++ {
		center := centroids[symbols[i]*dim : (symbols[i]+1)*dim]
		total += sqDist(data[i*dim:(i+1)*dim], center)
	}

	return &Result{
		Symbols:    symbols,
		Distortion: total / float64(n),
		Codebook:   centroids,
		Dim:        dim,
		K:          k,
	}, nil
}

// distinctSamples counts distinct rows, stopping early once limit is
// reached.
func distinctSamples(data []float64, dim, limit int) int {
	n := len(data) / dim
	seen := make(map[string]struct{}, min(n, limit))
	buf := make([]byte, dim*8)

	for i := 0; i < n; i++ {
		row := data[i*dim : (i+1)*dim]
		for d, v := range row {
			bits := math.Float64bits(v)
			for b := 0; b < 8; b++ {
				buf[d*8+b] = byte(bits >> (8 * b))
			}
		}
		seen[string(buf)] = struct{}{}
		if len(seen) >= limit {
			return len(seen)
		}
	}
	return len(seen)
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
