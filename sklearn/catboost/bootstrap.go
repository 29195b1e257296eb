package catboost

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// bootstrapper draws one sample weight per training row before every tree.
type bootstrapper interface {
	Sample(weights []float64)
}

func newBootstrapper(params TrainingParams) bootstrapper {
	seed := uint64(params.RandomSeed)
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)

	switch params.BootstrapType {
	case BootstrapBayesian:
		return &bayesianBootstrap{
			temperature: params.BaggingTemperature,
			exp:         distuv.Exponential{Rate: 1, Src: src},
		}
	case BootstrapBernoulli:
		return &bernoulliBootstrap{
			rate: params.Subsample,
			rng:  rand.New(src),
		}
	default:
		return noBootstrap{}
	}
}

// bayesianBootstrap assigns w = (-log U)^T, i.e. an Exp(1) draw raised to the
// bagging temperature. T = 0 gives every row weight 1; T = 1 is the classic
// Bayesian bootstrap.
type bayesianBootstrap struct {
	temperature float64
	exp         distuv.Exponential
}

func (b *bayesianBootstrap) Sample(weights []float64) {
	if b.temperature == 0 {
		for i := range weights {
			weights[i] = 1
		}
		return
	}
	for i := range weights {
		weights[i] = math.Pow(b.exp.Rand(), b.temperature)
	}
}

// bernoulliBootstrap keeps each row with probability rate.
type bernoulliBootstrap struct {
	rate float64
	rng  *rand.Rand
}

func (b *bernoulliBootstrap) Sample(weights []float64) {
	for i := range weights {
		if b.rng.Float64() < b.rate {
			weights[i] = 1
		} else {
			weights[i] = 0
		}
	}
}

type noBootstrap struct{}

func (noBootstrap) Sample(weights []float64) {
	for i := range weights {
		weights[i] = 1
	}
}
