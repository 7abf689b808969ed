package compcurve

import "fmt"

// Series is an ordered sequence of fixed-dimension samples, stored row-major.
// It is read-only once a sweep starts and may be shared by any number of
// concurrent sweep points.
type Series struct {
	data []float64
	dim  int
}

// NewSeries wraps row-major data with dim values per sample. The slice is
// not copied; callers must not mutate it while sweeps run.
func NewSeries(data []float64, dim int) (*Series, error) {
	if dim < 1 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	if len(data)%dim != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of dimension %d", len(data), dim)
	}
	return &Series{data: data, dim: dim}, nil
}

// FromRows builds a Series by flattening rows. All rows must share the same
// length.
func FromRows(rows [][]float64) (*Series, error) {
	if len(rows) == 0 {
		return &Series{dim: 1}, nil
	}

	dim := len(rows[0])
	if dim < 1 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}

	data := make([]float64, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(row), cause: fmt.Errorf("row %d", i)}
		}
		data = append(data, row...)
	}
	return &Series{data: data, dim: dim}, nil
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.data) / s.dim
}

// Dim returns the dimension of each sample.
func (s *Series) Dim() int {
	return s.dim
}

// At returns a view of the i-th sample. The returned slice aliases the
// series; do not modify it.
func (s *Series) At(i int) []float64 {
	return s.data[i*s.dim : (i+1)*s.dim]
}

// Data returns the underlying row-major storage.
func (s *Series) Data() []float64 {
	return s.data
}
