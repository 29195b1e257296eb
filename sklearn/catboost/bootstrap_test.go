package catboost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBayesianBootstrap(t *testing.T) {
	params := DefaultParams()
	params.RandomSeed = 6

	a := make([]float64, 1000)
	b := make([]float64, 1000)
	newBootstrapper(params).Sample(a)
	newBootstrapper(params).Sample(b)

	assert.Equal(t, a, b, "same seed must give the same weights")

	sum := 0.0
	for _, w := range a {
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	// Exp(1) has mean 1
	assert.InDelta(t, 1.0, sum/float64(len(a)), 0.15)
}

func TestBayesianBootstrapZeroTemperature(t *testing.T) {
	params := DefaultParams()
	params.BaggingTemperature = 0

	w := make([]float64, 10)
	newBootstrapper(params).Sample(w)
	for _, v := range w {
		assert.Equal(t, 1.0, v)
	}
}

func TestBernoulliBootstrap(t *testing.T) {
	params := DefaultParams()
	params.BootstrapType = BootstrapBernoulli
	params.Subsample = 0.5

	w := make([]float64, 2000)
	newBootstrapper(params).Sample(w)

	kept := 0.0
	for _, v := range w {
		assert.Contains(t, []float64{0, 1}, v)
		kept += v
	}
	assert.InDelta(t, 0.5, kept/float64(len(w)), 0.05)
}

func TestNoBootstrap(t *testing.T) {
	params := DefaultParams()
	params.BootstrapType = BootstrapNo

	w := []float64{0, 5, -1}
	newBootstrapper(params).Sample(w)
	assert.Equal(t, []float64{1, 1, 1}, w)
}
