package compcurve

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnhw/compression-curves/codec"
	"github.com/johnhw/compression-curves/preprocess"
	"github.com/johnhw/compression-curves/vq"
)

func sineSeries(t *testing.T, n int, cycles float64) *Series {
	t.Helper()
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * cycles * float64(i) / float64(n))
	}
	s, err := NewSeries(data, 1)
	require.NoError(t, err)
	return s
}

func noiseSeries(t *testing.T, n int, seed int64) *Series {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	s, err := NewSeries(data, 1)
	require.NoError(t, err)
	return s
}

func TestSineSweepShape(t *testing.T) {
	s := sineSeries(t, 1000, 5)

	curve, err := Sweep(context.Background(), s, AxisK,
		[]int{2, 4, 8, 16, 32, 64, 128, 256},
		WithSeed(1), WithSurrogates(5),
	)
	require.NoError(t, err)
	require.Empty(t, curve.Skipped)
	require.Equal(t, 8, curve.Points())

	// Surrogate normalization strips alphabet-driven compressibility, so a
	// pure tone shows the most structure per byte at coarse quantization
	// and the adjusted ratio declines toward 1 as the codebook grows. It
	// stays above 1 at every level: the tone never looks random.
	last := curve.Points() - 1
	for i, adj := range curve.AdjustedRatio {
		assert.Greaterf(t, adj, 1.0, "k=%v", curve.Values[i])
		if curve.Values[i] <= 128 {
			assert.Greaterf(t, adj, 1.5, "k=%v", curve.Values[i])
		}
	}
	assert.Greater(t, curve.AdjustedRatio[0], curve.AdjustedRatio[last])
	assert.Greater(t, curve.MaxAdjustedRatio(), 2.5)

	// Distortion strictly decreases as the codebook grows.
	for i := 1; i < len(curve.Distortion); i++ {
		assert.Lessf(t, curve.Distortion[i], curve.Distortion[i-1],
			"distortion at k=%v", curve.Values[i])
	}
}

func TestPeriodicPatternDetectable(t *testing.T) {
	// A repeating 10-sample pattern tiled to 1000 samples must show clear
	// structure when quantized at k=4.
	rng := rand.New(rand.NewSource(7))
	pattern := make([]float64, 10)
	for i := range pattern {
		pattern[i] = rng.NormFloat64()
	}
	data := make([]float64, 1000)
	for i := range data {
		data[i] = pattern[i%10]
	}
	s, err := NewSeries(data, 1)
	require.NoError(t, err)

	curve, err := Sweep(context.Background(), s, AxisK, []int{4}, WithSeed(2))
	require.NoError(t, err)
	require.Equal(t, 1, curve.Points())

	assert.Greater(t, curve.AdjustedRatio[0], 1.5)
}

func TestNoiseCurveIsFlat(t *testing.T) {
	// I.i.d. noise is the canonical incompressible input: the adjusted
	// ratio must stay near 1.0 at every quantization level.
	s := noiseSeries(t, 2000, 3)

	curve, err := Sweep(context.Background(), s, AxisK,
		[]int{2, 4, 8, 16, 32, 64},
		WithSeed(4), WithSurrogates(10),
	)
	require.NoError(t, err)
	require.Empty(t, curve.Skipped)

	for i, adj := range curve.AdjustedRatio {
		assert.InDeltaf(t, 1.0, adj, 0.15, "k=%v", curve.Values[i])
	}
}

func TestSweepSkipsInsufficientData(t *testing.T) {
	// Ten distinct values: k=4 works, k=64 cannot.
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i % 10)
	}
	s, err := NewSeries(data, 1)
	require.NoError(t, err)

	curve, err := Sweep(context.Background(), s, AxisK, []int{4, 64}, WithSeed(5))
	require.NoError(t, err)

	require.Equal(t, 1, curve.Points())
	assert.Equal(t, []float64{4}, curve.Values)

	require.Len(t, curve.Skipped, 1)
	assert.Equal(t, 64, curve.Skipped[0].Value)
	assert.ErrorIs(t, curve.Skipped[0].Err, vq.ErrInsufficientData)

	var pointErr *SweepPointError
	require.ErrorAs(t, curve.Skipped[0].Err, &pointErr)
	assert.Equal(t, AxisK, pointErr.Axis)
	assert.Equal(t, 64, pointErr.Value)
}

func TestSweepAllPointsFailed(t *testing.T) {
	data := []float64{0, 1, 0, 1, 0, 1, 0, 1}
	s, err := NewSeries(data, 1)
	require.NoError(t, err)

	_, err = Sweep(context.Background(), s, AxisK, []int{16, 32}, WithSeed(6))
	assert.ErrorIs(t, err, ErrAllPointsFailed)
}

func TestPCASweepPlateau(t *testing.T) {
	// Dimensions 3 and 4 are linear combinations of 1 and 2 (plus a whisper
	// of noise to keep the covariance invertible): no new information
	// exists beyond two components, so the adjusted ratio must not rise
	// after n=2.
	rng := rand.New(rand.NewSource(8))
	const n = 800
	rows := make([][]float64, n)
	for i := range rows {
		t1 := float64(i) / n
		x1 := math.Sin(2 * math.Pi * 3 * t1)
		x2 := math.Cos(2 * math.Pi * 7 * t1)
		rows[i] = []float64{
			x1,
			x2,
			0.5*x1 - x2 + 1e-3*rng.NormFloat64(),
			x1 + x2 + 1e-3*rng.NormFloat64(),
		}
	}
	s, err := FromRows(rows)
	require.NoError(t, err)

	curve, err := Sweep(context.Background(), s, AxisPCA, []int{1, 2, 3, 4},
		WithClusters(8), WithSeed(9), WithSurrogates(5),
	)
	require.NoError(t, err)
	require.Equal(t, 4, curve.Points())

	atTwo := curve.AdjustedRatio[1]
	assert.Greater(t, atTwo, 1.5, "two real components carry the structure")
	assert.LessOrEqual(t, curve.AdjustedRatio[2], atTwo*1.15)
	assert.LessOrEqual(t, curve.AdjustedRatio[3], atTwo*1.15)
}

func TestDownsampleSweep(t *testing.T) {
	s := sineSeries(t, 1024, 4)

	curve, err := Sweep(context.Background(), s, AxisDownsample, []int{1, 2, 4},
		WithClusters(8), WithSeed(10), WithSurrogates(5),
	)
	require.NoError(t, err)
	require.Equal(t, 3, curve.Points())

	// Downsampling a smooth tone keeps it structured at every level.
	for i, adj := range curve.AdjustedRatio {
		assert.Greaterf(t, adj, 1.5, "q=%v", curve.Values[i])
	}
}

func TestCompressionCurveDefaults(t *testing.T) {
	s := sineSeries(t, 1000, 5)

	curve, err := CompressionCurve(context.Background(), s,
		WithSeed(11), WithSurrogates(3),
	)
	require.NoError(t, err)

	assert.Equal(t, AxisK, curve.Axis)
	assert.Greater(t, curve.Points(), 30)
	assert.Len(t, curve.Ratio, curve.Points())
	assert.Len(t, curve.SurrogateRatio, curve.Points())
	assert.Len(t, curve.AdjustedRatio, curve.Points())
	assert.Len(t, curve.Distortion, curve.Points())
}

func TestSweepParallelMatchesSerial(t *testing.T) {
	s := noiseSeries(t, 500, 12)
	values := []int{2, 4, 8, 16}

	serial, err := Sweep(context.Background(), s, AxisK, values,
		WithSeed(13), WithSurrogates(4),
	)
	require.NoError(t, err)

	parallel, err := Sweep(context.Background(), s, AxisK, values,
		WithSeed(13), WithSurrogates(4), WithParallelism(4),
	)
	require.NoError(t, err)

	assert.Equal(t, serial.Values, parallel.Values)
	assert.Equal(t, serial.Ratio, parallel.Ratio)
	assert.Equal(t, serial.SurrogateRatio, parallel.SurrogateRatio)
	assert.Equal(t, serial.AdjustedRatio, parallel.AdjustedRatio)
	assert.Equal(t, serial.Distortion, parallel.Distortion)
}

func TestSweepReproducibleWithSeed(t *testing.T) {
	s := noiseSeries(t, 400, 14)
	values := []int{2, 8}

	a, err := Sweep(context.Background(), s, AxisK, values, WithSeed(15))
	require.NoError(t, err)
	b, err := Sweep(context.Background(), s, AxisK, values, WithSeed(15))
	require.NoError(t, err)

	assert.Equal(t, a.AdjustedRatio, b.AdjustedRatio)
	assert.Equal(t, a.Distortion, b.Distortion)
}

func TestSweepSubsampledFit(t *testing.T) {
	s := sineSeries(t, 2000, 5)

	curve, err := Sweep(context.Background(), s, AxisK, []int{8, 16},
		WithSeed(16), WithSubsampleFraction(0.25), WithSurrogates(3),
	)
	require.NoError(t, err)
	require.Equal(t, 2, curve.Points())
	assert.Greater(t, curve.AdjustedRatio[0], 1.5)
}

func TestSweepConfigurationErrors(t *testing.T) {
	s := noiseSeries(t, 100, 17)

	_, err := Sweep(context.Background(), nil, AxisK, []int{2})
	assert.ErrorIs(t, err, ErrEmptySeries)

	empty, err2 := NewSeries(nil, 1)
	require.NoError(t, err2)
	_, err = Sweep(context.Background(), empty, AxisK, []int{2})
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = Sweep(context.Background(), s, AxisK, nil)
	assert.ErrorIs(t, err, ErrNoSweepValues)

	_, err = Sweep(context.Background(), s, Axis(99), []int{2})
	assert.ErrorIs(t, err, ErrInvalidAxis)

	_, err = Sweep(context.Background(), s, AxisK, []int{0})
	assert.ErrorIs(t, err, vq.ErrInvalidK)

	// Alphabets wider than the codec can encode are rejected before any
	// point runs, not discovered mid-sweep.
	_, err = Sweep(context.Background(), s, AxisK, []int{2, codec.MaxAlphabet + 1})
	assert.ErrorIs(t, err, codec.ErrAlphabetTooLarge)

	_, err = Sweep(context.Background(), s, AxisDownsample, []int{1, 2},
		WithClusters(codec.MaxAlphabet+1))
	assert.ErrorIs(t, err, codec.ErrAlphabetTooLarge)

	_, err = Sweep(context.Background(), s, AxisPCA, []int{2})
	assert.ErrorIs(t, err, preprocess.ErrTooManyComponents)

	_, err = Sweep(context.Background(), s, AxisK, []int{2}, WithSurrogates(0))
	assert.Error(t, err)

	_, err = Sweep(context.Background(), s, AxisK, []int{2}, WithDownsample(0))
	assert.ErrorIs(t, err, preprocess.ErrInvalidFactor)
}

func TestSweepContextCancelled(t *testing.T) {
	s := noiseSeries(t, 200, 18)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, s, AxisK, []int{2, 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepRecordsMetrics(t *testing.T) {
	s := noiseSeries(t, 300, 19)

	var mc BasicMetricsCollector
	_, err := Sweep(context.Background(), s, AxisK, []int{2, 4, 8},
		WithSeed(20), WithMetricsCollector(&mc),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(3), mc.PointCount.Load())
	assert.Equal(t, int64(0), mc.PointErrors.Load())
	assert.Equal(t, int64(1), mc.SweepCount.Load())
}
