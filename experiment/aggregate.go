package experiment

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// Scores holds one sqrt(AUC) per fold for the train and validation parts.
type Scores struct {
	Train []float64 `json:"train"`
	Valid []float64 `json:"valid"`
}

// ScoreStats summarizes a score list. Std is the population standard
// deviation.
type ScoreStats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
	Std  float64 `json:"std"`
}

// Summary is the reported outcome of a cross-validation run.
type Summary struct {
	Rows     int        `json:"rows"`
	Features int        `json:"features"`
	NFolds   int        `json:"n_folds"`
	Train    ScoreStats `json:"train"`
	Valid    ScoreStats `json:"valid"`
	CVScore  float64    `json:"cv_score"`
}

// Describe computes mean, max, min and population std of scores.
func Describe(scores []float64) (ScoreStats, error) {
	var s ScoreStats
	var err error
	if s.Mean, err = stats.Mean(scores); err != nil {
		return s, errors.Wrap(err, "mean of fold scores")
	}
	if s.Max, err = stats.Max(scores); err != nil {
		return s, errors.Wrap(err, "max of fold scores")
	}
	if s.Min, err = stats.Min(scores); err != nil {
		return s, errors.Wrap(err, "min of fold scores")
	}
	if s.Std, err = stats.StandardDeviationPopulation(scores); err != nil {
		return s, errors.Wrap(err, "std of fold scores")
	}
	return s, nil
}

// Aggregate checks that every OOF slot was written and computes the fold
// statistics and the overall sqrt(AUC) of the pooled OOF vector.
func Aggregate(y, oof []float64, written []bool, scores Scores, rows, features int) (Summary, error) {
	if len(y) != len(oof) || len(oof) != len(written) {
		return Summary{}, errors.NewDimensionError("Aggregate", len(y), len(oof), 0)
	}
	for i, ok := range written {
		if !ok {
			return Summary{}, errors.NewValueError("Aggregate",
				fmt.Sprintf("out-of-fold prediction missing for training row %d", i))
		}
	}
	if len(scores.Valid) == 0 {
		return Summary{}, errors.NewValueError("Aggregate", "no fold scores")
	}

	s := Summary{Rows: rows, Features: features, NFolds: len(scores.Valid)}
	var err error
	if s.Valid, err = Describe(scores.Valid); err != nil {
		return s, err
	}
	if len(scores.Train) > 0 {
		if s.Train, err = Describe(scores.Train); err != nil {
			return s, err
		}
	}
	if s.CVScore, err = SqrtAUC(y, oof); err != nil {
		return s, errors.Wrap(err, "overall CV score")
	}
	return s, nil
}
