package catboost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFeatureBorders(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		maxBorders int
		want       []float64
	}{
		{"empty", nil, 10, nil},
		{"constant", []float64{3, 3, 3}, 10, []float64{}},
		{"few uniques", []float64{2, 1, 3, 1}, 10, []float64{1.5, 2.5}},
		{"capped", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 1, []float64{4.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := featureBorders(append([]float64(nil), tt.values...), tt.maxBorders)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeatureBordersSortedAndBounded(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i % 97)
	}
	borders := featureBorders(values, 16)

	assert.LessOrEqual(t, len(borders), 16)
	for i := 1; i < len(borders); i++ {
		assert.Greater(t, borders[i], borders[i-1])
	}
}

func TestBinOfMatchesThresholdCondition(t *testing.T) {
	borders := []float64{0.5, 1.5, 2.5}
	for _, v := range []float64{-1, 0.5, 0.7, 1.5, 2, 2.5, 3, 100} {
		bin := int(binOf(borders, v))
		for k, b := range borders {
			assert.Equal(t, v > b, bin > k, "v=%v k=%d", v, k)
		}
	}
	assert.Equal(t, uint16(0), binOf(borders, math.NaN()))
}

func TestQuantize(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 10,
		1, 20,
		2, math.NaN(),
		3, 20,
	})
	borders := computeBorders(X, 254, 2)
	require.Len(t, borders, 2)
	assert.Equal(t, []float64{0.5, 1.5, 2.5}, borders[0])
	assert.Equal(t, []float64{15}, borders[1])

	q := quantize(X, borders, 2)
	assert.Equal(t, 4, q.rows)
	assert.Equal(t, []uint16{0, 1, 2, 3}, q.bins[0])
	assert.Equal(t, []uint16{0, 1, 0, 1}, q.bins[1])
}
