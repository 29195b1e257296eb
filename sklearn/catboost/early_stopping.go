package catboost

import (
	"math"
)

// EarlyStopping handles early stopping logic
type EarlyStopping struct {
	Rounds          int     // Number of rounds without improvement to stop
	BestScore       float64 // Best validation score so far
	BestIteration   int     // Iteration with best score
	RoundsNoImprove int     // Current rounds without improvement
	Metric          string  // Metric to use for early stopping
	Maximize        bool    // Whether a larger metric is better
	Enabled         bool    // Whether early stopping is enabled
}

// NewEarlyStopping creates a new early stopping handler. rounds <= 0 returns
// a disabled handler that still tracks the best iteration.
func NewEarlyStopping(rounds int, metric string) *EarlyStopping {
	maximize := maximizeMetric(metric)

	bestScore := math.Inf(1)
	if maximize {
		bestScore = math.Inf(-1)
	}

	return &EarlyStopping{
		Rounds:        rounds,
		BestScore:     bestScore,
		BestIteration: -1,
		Metric:        metric,
		Maximize:      maximize,
		Enabled:       rounds > 0,
	}
}

// Update records the score of iteration and returns true if training should
// stop. Ties do not count as an improvement, so the earliest best wins.
func (es *EarlyStopping) Update(iteration int, score float64) bool {
	improved := false
	if es.Maximize {
		improved = score > es.BestScore
	} else {
		improved = score < es.BestScore
	}

	if improved || es.BestIteration < 0 {
		es.BestScore = score
		es.BestIteration = iteration
		es.RoundsNoImprove = 0
	} else {
		es.RoundsNoImprove++
	}

	return es.ShouldStop()
}

// ShouldStop returns whether training should stop
func (es *EarlyStopping) ShouldStop() bool {
	if !es.Enabled {
		return false
	}
	return es.RoundsNoImprove >= es.Rounds
}

// GetBestIteration returns the best iteration, or -1 before the first update.
func (es *EarlyStopping) GetBestIteration() int {
	return es.BestIteration
}
