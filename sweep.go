package compcurve

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnhw/compression-curves/codec"
	"github.com/johnhw/compression-curves/compressor"
	"github.com/johnhw/compression-curves/preprocess"
	"github.com/johnhw/compression-curves/surrogate"
	"github.com/johnhw/compression-curves/vq"
)

// Mixing constant for deriving independent per-point seeds from the base
// seed.
const seedStride = 1000003

// CompressionCurve sweeps the quantization level over DefaultKRange and
// returns the resulting curve. It is the common entry point; Sweep exposes
// the other axes.
func CompressionCurve(ctx context.Context, s *Series, optFns ...Option) (*Curve, error) {
	return Sweep(ctx, s, AxisK, DefaultKRange(), optFns...)
}

// Sweep runs the full pipeline (preprocess, quantize, encode, compress,
// surrogate baseline) at every value of the chosen axis and assembles the
// curve. Exactly one axis varies; the remaining parameters come from the
// options.
//
// Individual points that fail recoverably (too few distinct samples for the
// requested k, singular covariance at one pyramid level) are skipped,
// logged at warn level and recorded in Curve.Skipped. Configuration errors
// fail the whole call before any point is computed.
func Sweep(ctx context.Context, s *Series, axis Axis, values []int, optFns ...Option) (*Curve, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if err := validateSweep(s, axis, values, &o); err != nil {
		return nil, err
	}

	comp, err := compressor.For(o.algorithm)
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend = vq.NewKMeans()
	}
	if o.subsampleFraction > 0 && o.subsampleFraction < 1 {
		backend, err = vq.NewSubsampled(backend, o.subsampleFraction)
		if err != nil {
			return nil, err
		}
	}

	baseSeed := o.seed
	if !o.hasSeed {
		baseSeed = time.Now().UnixNano()
	}

	logger := o.logger.WithAxis(axis).WithAlgorithm(comp.Name())

	// When the axis is k, preprocessing is identical at every point: run it
	// once and share the result read-only. This replaces any cross-call
	// memoization with state owned by this sweep.
	var shared []float64
	sharedDim := 0
	if axis == AxisK {
		cfg := preprocess.Config{Q: o.q, Mode: o.mode, PCADims: o.pcaDims}
		shared, sharedDim, err = preprocess.Run(s.Data(), s.Dim(), cfg)
		if err != nil {
			return nil, fmt.Errorf("preprocess series: %w", err)
		}
	}

	results := make([]pointResult, len(values))

	run := func(i int) error {
		start := time.Now()
		var pt pointResult

		rng := rand.New(rand.NewSource(baseSeed + seedStride*int64(i+1)))
		pdata, pdim := shared, sharedDim
		k := o.clusters

		var perr error
		switch axis {
		case AxisK:
			k = values[i]
		case AxisPCA:
			cfg := preprocess.Config{Q: o.q, Mode: o.mode, PCADims: values[i]}
			pdata, pdim, perr = preprocess.Run(s.Data(), s.Dim(), cfg)
		case AxisDownsample:
			cfg := preprocess.Config{Q: values[i], Mode: o.mode, PCADims: o.pcaDims}
			pdata, pdim, perr = preprocess.Run(s.Data(), s.Dim(), cfg)
		}

		if perr == nil {
			pt, perr = computePoint(pdata, pdim, k, comp, backend, o.surrogates, rng)
		}

		o.metrics.RecordPoint(axis, values[i], time.Since(start), perr)
		if perr != nil {
			perr = &SweepPointError{Axis: axis, Value: values[i], cause: perr}
			if !recoverable(perr) {
				return perr
			}
			logger.Warn("skipping sweep point", "value", values[i], "error", perr)
			results[i] = pointResult{err: perr}
			return nil
		}

		logger.Debug("sweep point computed",
			"value", values[i],
			"adjusted_ratio", pt.adj,
			"distortion", pt.dist,
		)
		results[i] = pt
		return nil
	}

	sweepStart := time.Now()
	if o.parallelism > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.parallelism)
		for i := range values {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range values {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(i); err != nil {
				return nil, err
			}
		}
	}

	curve := &Curve{Axis: axis}
	for i, pt := range results {
		if pt.err != nil {
			curve.Skipped = append(curve.Skipped, SkippedPoint{Value: values[i], Err: pt.err})
			continue
		}
		curve.Values = append(curve.Values, float64(values[i]))
		curve.Ratio = append(curve.Ratio, pt.ratio)
		curve.SurrogateRatio = append(curve.SurrogateRatio, pt.surr)
		curve.AdjustedRatio = append(curve.AdjustedRatio, pt.adj)
		curve.Distortion = append(curve.Distortion, pt.dist)
	}

	o.metrics.RecordSweep(axis, curve.Points(), len(curve.Skipped), time.Since(sweepStart))
	logger.Debug("sweep complete", "points", curve.Points(), "skipped", len(curve.Skipped))

	if curve.Points() == 0 {
		return nil, fmt.Errorf("%w: first failure: %w", ErrAllPointsFailed, curve.Skipped[0].Err)
	}
	return curve, nil
}

// pointResult carries the measurements of one sweep point, or the error
// that skipped it.
type pointResult struct {
	ratio, surr, adj, dist float64
	err                    error
}

// computePoint runs quantize -> encode -> compress -> surrogate for one
// fully resolved parameter set.
func computePoint(
	data []float64,
	dim, k int,
	comp compressor.Compressor,
	backend vq.Backend,
	surrogates int,
	rng *rand.Rand,
) (pointResult, error) {
	var pt pointResult

	res, err := vq.Quantize(data, dim, k, vq.WithBackend(backend), vq.WithRand(rng))
	if err != nil {
		return pt, err
	}

	stream, err := codec.Encode(res.Symbols, k)
	if err != nil {
		return pt, err
	}

	ratio, err := compressor.Ratio(comp, stream)
	if err != nil {
		return pt, err
	}

	surr, err := surrogate.Ratio(stream, surrogates, comp, rng)
	if err != nil {
		return pt, err
	}

	pt.ratio = ratio
	pt.surr = surr
	pt.adj = ratio / surr
	pt.dist = res.Distortion
	return pt, nil
}

// recoverable reports whether a point failure should skip the point rather
// than abort the sweep.
func recoverable(err error) bool {
	return errors.Is(err, vq.ErrInsufficientData) ||
		errors.Is(err, preprocess.ErrSingularCovariance)
}

func validateSweep(s *Series, axis Axis, values []int, o *options) error {
	if s == nil || s.Len() == 0 {
		return ErrEmptySeries
	}
	if len(values) == 0 {
		return ErrNoSweepValues
	}
	if o.surrogates < 1 {
		return fmt.Errorf("%w: m=%d", surrogate.ErrInvalidRepeats, o.surrogates)
	}
	if o.q < 1 {
		return fmt.Errorf("%w: q=%d", preprocess.ErrInvalidFactor, o.q)
	}
	if o.pcaDims < 0 || o.pcaDims > s.Dim() {
		return fmt.Errorf("%w: %d > %d", preprocess.ErrTooManyComponents, o.pcaDims, s.Dim())
	}

	switch axis {
	case AxisK:
		for _, v := range values {
			if v < 1 {
				return fmt.Errorf("%w: k=%d", vq.ErrInvalidK, v)
			}
			if v > codec.MaxAlphabet {
				return fmt.Errorf("%w: k=%d", codec.ErrAlphabetTooLarge, v)
			}
		}
	case AxisPCA:
		if err := validateClusters(o.clusters); err != nil {
			return err
		}
		for _, v := range values {
			if v < 1 || v > s.Dim() {
				return fmt.Errorf("%w: %d not in [1,%d]", preprocess.ErrTooManyComponents, v, s.Dim())
			}
		}
	case AxisDownsample:
		if err := validateClusters(o.clusters); err != nil {
			return err
		}
		for _, v := range values {
			if v < 1 {
				return fmt.Errorf("%w: q=%d", preprocess.ErrInvalidFactor, v)
			}
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidAxis, int(axis))
	}
	return nil
}

func validateClusters(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: k=%d", vq.ErrInvalidK, k)
	}
	if k > codec.MaxAlphabet {
		return fmt.Errorf("%w: k=%d", codec.ErrAlphabetTooLarge, k)
	}
	return nil
}
