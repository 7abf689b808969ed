// Package preprocess prepares a raw time series for vector quantization.
//
// The pipeline is downsample -> normalize -> optional PCA projection. All
// steps are deterministic and stateless per call: the fitted statistics
// (means, covariance factors) are recomputed from the input every time and
// never cached.
package preprocess

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrSingularCovariance is returned when whitening or PCA encounters a
	// covariance matrix with a non-positive eigenvalue among the kept
	// components.
	ErrSingularCovariance = errors.New("covariance matrix is singular")

	// ErrTooManyComponents is returned when the requested PCA dimension
	// exceeds the dimension of the input series.
	ErrTooManyComponents = errors.New("pca components exceed series dimension")

	// ErrInvalidFactor is returned for downsample factors below 1.
	ErrInvalidFactor = errors.New("downsample factor must be at least 1")
)

// Eigenvalues at or below this fraction of the largest eigenvalue are
// treated as zero.
const eigenTol = 1e-10

// NormMode selects the normalization applied before quantization.
type NormMode int

const (
	// NormNone leaves the series unscaled.
	NormNone NormMode = iota
	// NormStandard subtracts the per-dimension mean and divides by the
	// per-dimension standard deviation.
	NormStandard
	// NormWhiten rotates into the eigenbasis of the covariance matrix and
	// scales to identity covariance.
	NormWhiten
	// NormMinMax maps each dimension affinely onto [0,1] using the observed
	// minimum and maximum.
	NormMinMax
)

func (m NormMode) String() string {
	switch m {
	case NormNone:
		return "none"
	case NormStandard:
		return "standard"
	case NormWhiten:
		return "whiten"
	case NormMinMax:
		return "minmax"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Config bundles the preprocessing parameters for Run.
type Config struct {
	// Q is the decimation factor. 1 means no downsampling.
	Q int
	// Mode is the normalization mode.
	Mode NormMode
	// PCADims, when > 0, projects onto that many principal components.
	// PCA implies whitening of the kept components.
	PCADims int
}

// Run applies downsample, normalize and optional PCA in order.
// data is row-major with dim values per sample. It returns the transformed
// data and its (possibly reduced) dimension.
func Run(data []float64, dim int, cfg Config) ([]float64, int, error) {
	out, err := Downsample(data, dim, cfg.Q)
	if err != nil {
		return nil, 0, err
	}

	out, err = Normalize(out, dim, cfg.Mode)
	if err != nil {
		return nil, 0, err
	}

	if cfg.PCADims > 0 {
		out, err = PCA(out, dim, cfg.PCADims)
		if err != nil {
			return nil, 0, err
		}
		return out, cfg.PCADims, nil
	}

	return out, dim, nil
}

// Downsample low-pass filters the series with a Gaussian kernel and keeps
// every q-th sample. The kernel bandwidth is sigma = sqrt(q^2-1), truncated
// at 4 sigma with reflected boundaries, so each pyramid level stays below
// its own Nyquist rate. q=1 returns a copy of the input.
func Downsample(data []float64, dim, q int) ([]float64, error) {
	if q < 1 {
		return nil, fmt.Errorf("%w: q=%d", ErrInvalidFactor, q)
	}

	if q == 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	}

	n := len(data) / dim
	sigma := math.Sqrt(float64(q*q - 1))
	smoothed := gaussianFilter(data, dim, sigma)

	kept := (n + q - 1) / q
	out := make([]float64, 0, kept*dim)
	for i := 0; i < n; i += q {
		out = append(out, smoothed[i*dim:(i+1)*dim]...)
	}
	return out, nil
}

// Pyramid repeatedly blurs and decimates the series by factor until the
// coarsest level has at most minLen samples. It returns every level from
// full resolution down, the input included.
func Pyramid(data []float64, dim, factor, minLen int) ([][]float64, error) {
	if factor < 2 {
		return nil, fmt.Errorf("%w: pyramid factor must be at least 2, got %d", ErrInvalidFactor, factor)
	}
	if minLen < 1 {
		minLen = 1
	}

	level := make([]float64, len(data))
	copy(level, data)

	levels := [][]float64{level}
	for len(levels[len(levels)-1])/dim > minLen {
		next, err := Downsample(levels[len(levels)-1], dim, factor)
		if err != nil {
			return nil, err
		}
		levels = append(levels, next)
	}
	return levels, nil
}

// Normalize rescales the series according to mode. The input is not
// modified.
func Normalize(data []float64, dim int, mode NormMode) ([]float64, error) {
	switch mode {
	case NormNone:
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	case NormStandard:
		return standardize(data, dim), nil
	case NormWhiten:
		return pcaWhiten(data, dim, dim)
	case NormMinMax:
		return minMaxScale(data, dim), nil
	default:
		return nil, fmt.Errorf("unknown normalization mode %d", int(mode))
	}
}

// PCA projects the series onto its n leading principal components, sorted
// by descending eigenvalue, and whitens the result. n must be in [1, dim].
func PCA(data []float64, dim, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("pca components must be at least 1, got %d", n)
	}
	if n > dim {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyComponents, n, dim)
	}
	return pcaWhiten(data, dim, n)
}

func standardize(data []float64, dim int) []float64 {
	n := len(data) / dim
	out := make([]float64, len(data))

	for d := 0; d < dim; d++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += data[i*dim+d]
		}
		mean := sum / float64(n)

		var sqsum float64
		for i := 0; i < n; i++ {
			diff := data[i*dim+d] - mean
			sqsum += diff * diff
		}
		std := math.Sqrt(sqsum / float64(n))
		if std == 0 {
			std = 1 // constant dimension, just center it
		}

		inv := 1 / std
		for i := 0; i < n; i++ {
			out[i*dim+d] = (data[i*dim+d] - mean) * inv
		}
	}
	return out
}

func minMaxScale(data []float64, dim int) []float64 {
	n := len(data) / dim
	out := make([]float64, len(data))

	for d := 0; d < dim; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			v := data[i*dim+d]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		span := hi - lo
		if span == 0 {
			for i := 0; i < n; i++ {
				out[i*dim+d] = 0
			}
			continue
		}

		inv := 1 / span
		for i := 0; i < n; i++ {
			out[i*dim+d] = (data[i*dim+d] - lo) * inv
		}
	}
	return out
}

// pcaWhiten centers the data, factorizes its covariance and projects onto
// the keep leading eigenvectors, scaling each component by 1/sqrt(lambda).
// keep == dim is full whitening.
func pcaWhiten(data []float64, dim, keep int) ([]float64, error) {
	n := len(data) / dim
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrSingularCovariance, n)
	}

	centered := make([]float64, len(data))
	for d := 0; d < dim; d++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += data[i*dim+d]
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			centered[i*dim+d] = data[i*dim+d] - mean
		}
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, mat.NewDense(n, dim, centered), nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition failed", ErrSingularCovariance)
	}

	// Eigenvalues come back in ascending order; the kept components are the
	// last keep columns, reversed.
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	maxVal := vals[dim-1]
	scales := make([]float64, keep)
	for j := 0; j < keep; j++ {
		v := vals[dim-1-j]
		if v <= 0 || v <= eigenTol*maxVal {
			return nil, fmt.Errorf("%w: component %d has eigenvalue %g", ErrSingularCovariance, j, v)
		}
		scales[j] = 1 / math.Sqrt(v)
	}

	out := make([]float64, n*keep)
	for i := 0; i < n; i++ {
		row := centered[i*dim : (i+1)*dim]
		for j := 0; j < keep; j++ {
			var dot float64
			for d := 0; d < dim; d++ {
				dot += row[d] * vecs.At(d, dim-1-j)
			}
			out[i*keep+j] = dot * scales[j]
		}
	}
	return out, nil
}

// gaussianFilter convolves each dimension with a normalized Gaussian kernel
// along the time axis, reflecting the signal at the boundaries.
func gaussianFilter(data []float64, dim int, sigma float64) []float64 {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	if radius == 0 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	n := len(data) / dim
	out := make([]float64, len(data))
	for i := 0; i < n; i++ {
		for j := -radius; j <= radius; j++ {
			idx := reflectIndex(i+j, n)
			w := kernel[j+radius]
			for d := 0; d < dim; d++ {
				out[i*dim+d] += w * data[idx*dim+d]
			}
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(4 * sigma))
	if radius < 1 {
		return []float64{1}
	}

	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps an out-of-range index back into [0,n) by mirroring at
// the edges (d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}
