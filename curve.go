package compcurve

import (
	"fmt"
	"math"
)

// Axis selects which pipeline parameter a sweep varies. Exactly one axis
// varies per sweep; the others are held at their configured values.
type Axis int

const (
	// AxisK sweeps the quantization level (number of codebook centers).
	AxisK Axis = iota
	// AxisPCA sweeps the number of retained principal components.
	AxisPCA
	// AxisDownsample sweeps the decimation factor.
	AxisDownsample
)

func (a Axis) String() string {
	switch a {
	case AxisK:
		return "k"
	case AxisPCA:
		return "pca"
	case AxisDownsample:
		return "downsample"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// SkippedPoint records a sweep point omitted from the curve and why.
type SkippedPoint struct {
	Value int
	Err   error
}

// Curve holds the result of one sweep: parallel slices with one entry per
// successfully computed point, in sweep order. It is immutable once the
// sweep returns and is what an external plotter consumes.
type Curve struct {
	// Axis is the swept parameter.
	Axis Axis
	// Values holds the axis values actually computed (skipped points leave
	// gaps).
	Values []float64
	// Ratio is the raw compression ratio at each point.
	Ratio []float64
	// SurrogateRatio is the shuffled-baseline ratio at each point.
	SurrogateRatio []float64
	// AdjustedRatio is Ratio / SurrogateRatio, the headline normalized
	// complexity measure.
	AdjustedRatio []float64
	// Distortion is the mean squared quantization error at each point.
	Distortion []float64
	// Skipped lists points omitted by the graceful-degradation rule.
	Skipped []SkippedPoint
}

// Points returns the number of computed points.
func (c *Curve) Points() int {
	return len(c.Values)
}

// MaxAdjustedRatio returns the largest adjusted ratio on the curve, or NaN
// for an empty curve.
func (c *Curve) MaxAdjustedRatio() float64 {
	if len(c.AdjustedRatio) == 0 {
		return math.NaN()
	}
	best := c.AdjustedRatio[0]
	for _, v := range c.AdjustedRatio[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

// DefaultKRange returns the default geometric sweep of quantization levels:
// the unique integer parts of 2^x for x evenly spaced over [1, 7.99],
// spanning 2 through 254.
func DefaultKRange() []int {
	const steps = 65
	seen := make(map[int]bool)
	out := make([]int, 0, steps)

	for i := 0; i < steps; i++ {
		exp := 1 + (7.99-1)*float64(i)/float64(steps-1)
		k := int(math.Pow(2, exp))
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// PCARange returns a descending sequence of component counts starting at n:
// halving while above 3, then decrementing, so 1 and 2 always appear for
// n > 1.
func PCARange(n int) []int {
	out := []int{n}
	for n > 1 {
		if n > 3 {
			n = n / 2
		} else {
			n = n - 1
		}
		out = append(out, n)
	}
	return out
}
