package compcurve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKRange(t *testing.T) {
	ks := DefaultKRange()
	require.NotEmpty(t, ks)

	assert.Equal(t, 2, ks[0])
	assert.Equal(t, 254, ks[len(ks)-1])
	for i := 1; i < len(ks); i++ {
		assert.Greater(t, ks[i], ks[i-1], "range must be strictly increasing")
	}
}

func TestPCARange(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{1, []int{1}},
		{2, []int{2, 1}},
		{3, []int{3, 2, 1}},
		{5, []int{5, 2, 1}},
		{8, []int{8, 4, 2, 1}},
		{16, []int{16, 8, 4, 2, 1}},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, PCARange(tt.n), "n=%d", tt.n)
	}
}

func TestCurveMaxAdjustedRatio(t *testing.T) {
	c := &Curve{AdjustedRatio: []float64{1.1, 3.5, 2.2}}
	assert.Equal(t, 3.5, c.MaxAdjustedRatio())

	empty := &Curve{}
	assert.True(t, math.IsNaN(empty.MaxAdjustedRatio()))
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "k", AxisK.String())
	assert.Equal(t, "pca", AxisPCA.String())
	assert.Equal(t, "downsample", AxisDownsample.String())
}
