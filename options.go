package compcurve

import (
	"github.com/johnhw/compression-curves/compressor"
	"github.com/johnhw/compression-curves/preprocess"
	"github.com/johnhw/compression-curves/vq"
)

const (
	// DefaultSurrogates is the default number of shuffled baselines per
	// sweep point.
	DefaultSurrogates = 10

	// DefaultClusters is the codebook size used when the sweep axis is not
	// k.
	DefaultClusters = 16
)

type options struct {
	q                 int
	mode              preprocess.NormMode
	pcaDims           int
	clusters          int
	surrogates        int
	algorithm         compressor.Algorithm
	subsampleFraction float64
	seed              int64
	hasSeed           bool
	parallelism       int
	backend           vq.Backend
	logger            *Logger
	metrics           MetricsCollector
}

func defaultOptions() options {
	return options{
		q:           1,
		mode:        preprocess.NormStandard,
		clusters:    DefaultClusters,
		surrogates:  DefaultSurrogates,
		algorithm:   compressor.AlgorithmFlate,
		parallelism: 1,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
	}
}

// Option configures a sweep.
type Option func(*options)

// WithDownsample sets the decimation factor applied before quantization
// (ignored as a fixed parameter when sweeping AxisDownsample). Default 1,
// no downsampling.
func WithDownsample(q int) Option {
	return func(o *options) {
		o.q = q
	}
}

// WithNormalization selects the normalization mode. Default
// preprocess.NormStandard.
func WithNormalization(mode preprocess.NormMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithPCADims projects onto n principal components before quantization
// (ignored as a fixed parameter when sweeping AxisPCA). PCA implies
// whitening. Default 0, no reduction.
func WithPCADims(n int) Option {
	return func(o *options) {
		o.pcaDims = n
	}
}

// WithClusters fixes the codebook size for sweeps over AxisPCA or
// AxisDownsample. Ignored when sweeping AxisK. Default DefaultClusters.
func WithClusters(k int) Option {
	return func(o *options) {
		o.clusters = k
	}
}

// WithSurrogates sets the number of shuffled baselines per point. Larger
// values reduce baseline variance at linear cost. Default
// DefaultSurrogates.
func WithSurrogates(m int) Option {
	return func(o *options) {
		o.surrogates = m
	}
}

// WithCompressor selects the compression algorithm. Default
// compressor.AlgorithmFlate.
func WithCompressor(a compressor.Algorithm) Option {
	return func(o *options) {
		o.algorithm = a
	}
}

// WithSubsampleFraction fits each codebook on a uniform random subsample of
// the given fraction for speed. Assignment always covers the full series.
func WithSubsampleFraction(f float64) Option {
	return func(o *options) {
		o.subsampleFraction = f
	}
}

// WithSeed makes the sweep reproducible: codebook seeding, subsampling and
// surrogate shuffles all derive from this seed. Each point derives its own
// stream, so results do not depend on worker scheduling.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithParallelism computes up to n sweep points concurrently. Points are
// pure functions of the read-only series and their own parameters, so the
// curve is identical to the serial one. Default 1, serial.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithBackend substitutes the clustering backend (see vq.Backend). Default
// vq.NewKMeans().
func WithBackend(b vq.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets the logger. Default NoopLogger().
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector. Default
// NoopMetricsCollector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}
