package vq

import (
	"fmt"
	"math/rand"
)

// Subsampled wraps a backend so the codebook is fit on a uniform random
// subsample of the series. Assignment still runs over the full series: the
// symbol sequence must cover every sample or the compression curve would be
// biased toward the subsample size.
type Subsampled struct {
	// Inner is the backend used for fitting and assignment.
	Inner Backend
	// Fraction of samples to retain for fitting, in (0,1]. At least k
	// samples are always retained.
	Fraction float64
}

// NewSubsampled wraps inner so it fits on the given fraction of the series.
func NewSubsampled(inner Backend, fraction float64) (*Subsampled, error) {
	if inner == nil {
		inner = NewKMeans()
	}
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("subsample fraction must be in (0,1], got %g", fraction)
	}
	return &Subsampled{Inner: inner, Fraction: fraction}, nil
}

// Fit draws the subsample and delegates to the inner backend.
func (s *Subsampled) Fit(data []float64, dim, k int, rng *rand.Rand) ([]float64, error) {
	n := len(data) / dim

	m := int(s.Fraction * float64(n))
	if m < k {
		m = k
	}
	if m >= n {
		return s.Inner.Fit(data, dim, k, rng)
	}

	perm := rng.Perm(n)
	sub := make([]float64, 0, m*dim)
	for _, idx := range perm[:m] {
		sub = append(sub, data[idx*dim:(idx+1)*dim]...)
	}

	return s.Inner.Fit(sub, dim, k, rng)
}

// Assign delegates to the inner backend over the full series.
func (s *Subsampled) Assign(data []float64, dim int, centroids []float64) []int {
	return s.Inner.Assign(data, dim, centroids)
}
