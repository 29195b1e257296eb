package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

func TestAUCScore(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		score []float64
		want  float64
	}{
		{"separable", []float64{0, 0, 0, 1, 1, 1}, []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9}, 1},
		{"reversed", []float64{0, 0, 0, 1, 1, 1}, []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1}, 0},
		{"constant score", []float64{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"one swapped pair", []float64{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		// 正例 {0.3, 0.9, 0.3} と負例 {0.3, 0.1} の6ペアのうち、勝ち4・引き分け2
		{"ties count half", []float64{0, 1, 0, 1, 1}, []float64{0.3, 0.3, 0.1, 0.9, 0.3}, 5.0 / 6.0},
		{"raw log-odds", []float64{0, 0, 1, 1}, []float64{-2.2, 0.4, -0.6, 1.4}, 0.75},
		{"only positives", []float64{1, 1, 1}, []float64{0.1, 0.4, 0.35}, 0.5},
		{"only negatives", []float64{0, 0, 0}, []float64{0.1, 0.4, 0.35}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUCScore(tt.yTrue, tt.score)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAUCScoreRejectsBadInput(t *testing.T) {
	_, err := AUCScore(nil, nil)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr), "empty input: %v", err)

	_, err = AUCScore([]float64{0, 1}, []float64{0.5})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr), "length mismatch: %v", err)
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 1, dimErr.Got)

	_, err = AUCScore([]float64{0, 0.5, 1}, []float64{0.1, 0.5, 0.9})
	assert.Error(t, err, "non-binary labels")
}

// 単調変換（シグモイド）でAUCは変わらない
func TestAUCInvariantUnderSigmoid(t *testing.T) {
	y := []float64{0, 1, 0, 1, 1, 0, 0, 1, 0, 1}
	raw := []float64{-1.3, 0.2, -0.1, 2.5, -0.4, -2.0, 0.3, 1.1, -0.7, 0.9}
	prob := make([]float64, len(raw))
	for i, v := range raw {
		prob[i] = errors.Sigmoid(v)
	}

	aucRaw, err := AUCScore(y, raw)
	require.NoError(t, err)
	aucProb, err := AUCScore(y, prob)
	require.NoError(t, err)
	assert.InDelta(t, aucRaw, aucProb, 1e-12)
}

func TestAUCVecAndMatrix(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	s := []float64{0.1, 0.4, 0.35, 0.8}

	got, err := AUC(mat.NewVecDense(4, y), mat.NewVecDense(4, s))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)

	_, err = AUC(nil, mat.NewVecDense(4, s))
	assert.Error(t, err)

	tests := []struct {
		name    string
		yTrue   mat.Matrix
		yScore  mat.Matrix
		wantErr bool
	}{
		{"column", mat.NewDense(4, 1, y), mat.NewDense(4, 1, s), false},
		{"first column only", mat.NewDense(4, 2, []float64{0, 9, 0, 9, 1, 9, 1, 9}),
			mat.NewDense(4, 2, []float64{0.1, 9, 0.4, 9, 0.35, 9, 0.8, 9}), false},
		{"nil", nil, mat.NewDense(1, 1, []float64{0.5}), true},
		{"row mismatch", mat.NewDense(4, 1, y), mat.NewDense(2, 1, []float64{0.1, 0.2}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUCMatrix(tt.yTrue, tt.yScore)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 0.75, got, 1e-12)
		})
	}
}

func TestLogLossScore(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		prob  []float64
		want  float64
		delta float64
	}{
		// -(ln 0.9 + ln 0.8 + ln 0.8 + ln 0.9) / 4
		{"confident and right", []float64{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 0.164252, 1e-6},
		{"confident and wrong", []float64{0, 0, 1, 1}, []float64{0.9, 0.9, 0.1, 0.1}, math.Log(10), 1e-9},
		{"coin flip", []float64{0, 1}, []float64{0.5, 0.5}, math.Ln2, 1e-12},
		// 0と1はクリップされるので損失は有限で0に近い
		{"clipped extremes", []float64{0, 1}, []float64{0, 1}, 0, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogLossScore(tt.yTrue, tt.prob)
			require.NoError(t, err)
			assert.False(t, math.IsInf(got, 0))
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}

	got, err := BinaryLogLoss(mat.NewVecDense(2, []float64{0, 1}), mat.NewVecDense(2, []float64{0.5, 0.5}))
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, got, 1e-12)

	_, err = LogLossScore(nil, nil)
	assert.Error(t, err)
	_, err = LogLossScore([]float64{0, 2}, []float64{0.1, 0.2})
	assert.Error(t, err)
}

func TestROCCurve(t *testing.T) {
	yTrue := []float64{0, 0, 1, 1}
	yScore := []float64{0.1, 0.4, 0.35, 0.8}

	points, err := ROCCurve(yTrue, yScore)
	require.NoError(t, err)

	want := []ROCPoint{
		{FPR: 0, TPR: 0},
		{FPR: 0, TPR: 0.5, Threshold: 0.8},
		{FPR: 0.5, TPR: 0.5, Threshold: 0.4},
		{FPR: 0.5, TPR: 1, Threshold: 0.35},
		{FPR: 1, TPR: 1, Threshold: 0.1},
	}
	require.Len(t, points, len(want))
	for i := range want {
		assert.Equal(t, want[i].FPR, points[i].FPR, "point %d", i)
		assert.Equal(t, want[i].TPR, points[i].TPR, "point %d", i)
		if i > 0 {
			assert.Equal(t, want[i].Threshold, points[i].Threshold, "point %d", i)
		}
	}

	// 台形則で面積を求めるとAUCと一致する
	var area float64
	for i := 1; i < len(points); i++ {
		area += (points[i].FPR - points[i-1].FPR) * (points[i].TPR + points[i-1].TPR) / 2
	}
	assert.InDelta(t, 0.75, area, 1e-12)

	_, err = ROCCurve([]float64{0, 2}, []float64{0.1, 0.2})
	assert.Error(t, err)
}

func BenchmarkAUCScore(b *testing.B) {
	n := 200000
	y := make([]float64, n)
	s := make([]float64, n)
	for i := range n {
		if i%10 == 0 {
			y[i] = 1
		}
		s[i] = math.Sin(float64(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AUCScore(y, s)
	}
}
