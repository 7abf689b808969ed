package vq

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultMaxIter bounds Lloyd iterations so fitting never hangs on
// non-converging inputs; the best centers found so far are returned at the
// cap.
const DefaultMaxIter = 64

// Backend fits a codebook and assigns samples to centers. Implementations
// must be deterministic given the same rng, up to tie-breaking on exactly
// equidistant centers.
type Backend interface {
	// Fit trains k centers on data (row-major, dim values per sample) and
	// returns them flattened (k * dim).
	Fit(data []float64, dim, k int, rng *rand.Rand) ([]float64, error)

	// Assign returns the index of the nearest center for every sample.
	Assign(data []float64, dim int, centroids []float64) []int
}

// KMeans is the exact Lloyd's-algorithm backend with k-means++ seeding.
type KMeans struct {
	// MaxIter caps the number of Lloyd iterations.
	MaxIter int
}

// NewKMeans returns a KMeans backend with the default iteration cap.
func NewKMeans() *KMeans {
	return &KMeans{MaxIter: DefaultMaxIter}
}

// Fit trains k centroids using Lloyd's algorithm.
func (km *KMeans) Fit(data []float64, dim, k int, rng *rand.Rand) ([]float64, error) {
	n := len(data) / dim
	if n < k {
		return nil, fmt.Errorf("%w: k=%d, samples=%d", ErrInsufficientData, k, n)
	}

	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	centroids := seedPlusPlus(data, dim, k, rng)

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float64, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			best := nearestCentroid(data[i*dim:(i+1)*dim], centroids, dim)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			c := assignments[i]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += data[i*dim+d]
			}
			counts[c]++
		}

		for j := 0; j < k; j++ {
			if counts[j] > 0 {
				inv := 1 / float64(counts[j])
				for d := 0; d < dim; d++ {
					centroids[j*dim+d] = sums[j*dim+d] * inv
				}
			} else {
				// Reseed empty cluster with a random point
				idx := rng.Intn(n)
				copy(centroids[j*dim:(j+1)*dim], data[idx*dim:(idx+1)*dim])
			}
		}
	}

	return centroids, nil
}

// Assign maps every sample to its nearest centroid.
func (km *KMeans) Assign(data []float64, dim int, centroids []float64) []int {
	n := len(data) / dim
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = nearestCentroid(data[i*dim:(i+1)*dim], centroids, dim)
	}
	return out
}

// seedPlusPlus picks k initial centroids with k-means++: the first uniformly
// at random, each next proportional to squared distance from the nearest
// already-chosen centroid.
func seedPlusPlus(data []float64, dim, k int, rng *rand.Rand) []float64 {
	n := len(data) / dim
	centroids := make([]float64, k*dim)

	first := rng.Intn(n)
	copy(centroids[:dim], data[first*dim:(first+1)*dim])

	minDistSq := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		d := sqDist(data[i*dim:(i+1)*dim], centroids[:dim])
		minDistSq[i] = d
		sum += d
	}

	for c := 1; c < k; c++ {
		if sum == 0 {
			idx := rng.Intn(n)
			copy(centroids[c*dim:(c+1)*dim], data[idx*dim:(idx+1)*dim])
			continue
		}

		target := rng.Float64() * sum
		var cumsum float64
		chosen := 0
		for i, d := range minDistSq {
			cumsum += d
			if cumsum >= target {
				chosen = i
				break
			}
		}
		copy(centroids[c*dim:(c+1)*dim], data[chosen*dim:(chosen+1)*dim])

		sum = 0
		for i := 0; i < n; i++ {
			d := sqDist(data[i*dim:(i+1)*dim], centroids[c*dim:(c+1)*dim])
			if d < minDistSq[i] {
				minDistSq[i] = d
			}
			sum += minDistSq[i]
		}
	}

	return centroids
}

func nearestCentroid(vec, centroids []float64, dim int) int {
	k := len(centroids) / dim
	best := 0
	minDist := math.MaxFloat64

	for j := 0; j < k; j++ {
		d := sqDist(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}
