package catboost

import (
	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// Supported enumerations.
const (
	BoostingGBDT = "gbdt"

	BootstrapBayesian  = "Bayesian"
	BootstrapBernoulli = "Bernoulli"
	BootstrapNo        = "No"

	ObjectiveLogloss = "Logloss"

	MetricAUC     = "AUC"
	MetricLogloss = "Logloss"
)

// TrainingParams contains all training hyperparameters. JSON names follow
// the Python package so parameter dumps can be compared side by side.
type TrainingParams struct {
	Boosting   string `json:"boosting"`
	Objective  string `json:"objective"`
	EvalMetric string `json:"eval_metric"`

	Iterations   int     `json:"iterations"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	L2LeafReg    float64 `json:"l2_leaf_reg"`
	BorderCount  int     `json:"border_count"`

	// Sampling
	BootstrapType      string  `json:"bootstrap_type"`
	BaggingTemperature float64 `json:"bagging_temperature"` // Bayesian only
	Subsample          float64 `json:"subsample"`           // Bernoulli only

	// BoostFromAverage starts from the log-odds of the positive rate instead of 0.
	BoostFromAverage bool `json:"boost_from_average"`

	// Training control
	RandomSeed          int  `json:"random_seed"`
	ThreadCount         int  `json:"thread_count"` // <= 0 means all logical cores
	EarlyStoppingRounds int  `json:"early_stopping_rounds"`
	VerboseEval         int  `json:"verbose_eval"` // 0 disables periodic evaluation logs
	UseBestModel        bool `json:"use_best_model"`
}

// DefaultParams returns the library defaults.
func DefaultParams() TrainingParams {
	return TrainingParams{
		Boosting:           BoostingGBDT,
		Objective:          ObjectiveLogloss,
		EvalMetric:         MetricLogloss,
		Iterations:         1000,
		LearningRate:       0.03,
		MaxDepth:           6,
		L2LeafReg:          3,
		BorderCount:        254,
		BootstrapType:      BootstrapBayesian,
		BaggingTemperature: 1,
		Subsample:          0.66,
		BoostFromAverage:   true,
		UseBestModel:       true,
	}
}

// Validate checks ranges and enumerations.
func (p TrainingParams) Validate() error {
	switch {
	case p.Boosting != BoostingGBDT:
		return errors.NewValidationError("boosting", "only gbdt is supported", p.Boosting)
	case p.Objective != ObjectiveLogloss:
		return errors.NewValidationError("objective", "only Logloss is supported", p.Objective)
	case p.EvalMetric != MetricAUC && p.EvalMetric != MetricLogloss:
		return errors.NewValidationError("eval_metric", "must be AUC or Logloss", p.EvalMetric)
	case p.Iterations <= 0:
		return errors.NewValidationError("iterations", "must be positive", p.Iterations)
	case p.LearningRate <= 0:
		return errors.NewValidationError("learning_rate", "must be positive", p.LearningRate)
	case p.MaxDepth < 1 || p.MaxDepth > 16:
		return errors.NewValidationError("max_depth", "must be in [1, 16]", p.MaxDepth)
	case p.L2LeafReg < 0:
		return errors.NewValidationError("l2_leaf_reg", "must be non-negative", p.L2LeafReg)
	case p.BorderCount < 1 || p.BorderCount > 65535:
		return errors.NewValidationError("border_count", "must be in [1, 65535]", p.BorderCount)
	case p.EarlyStoppingRounds < 0:
		return errors.NewValidationError("early_stopping_rounds", "must be non-negative", p.EarlyStoppingRounds)
	case p.VerboseEval < 0:
		return errors.NewValidationError("verbose_eval", "must be non-negative", p.VerboseEval)
	}

	switch p.BootstrapType {
	case BootstrapBayesian:
		if p.BaggingTemperature < 0 {
			return errors.NewValidationError("bagging_temperature", "must be non-negative", p.BaggingTemperature)
		}
	case BootstrapBernoulli:
		if p.Subsample <= 0 || p.Subsample > 1 {
			return errors.NewValidationError("subsample", "must be in (0, 1]", p.Subsample)
		}
	case BootstrapNo:
	default:
		return errors.NewValidationError("bootstrap_type", "must be Bayesian, Bernoulli or No", p.BootstrapType)
	}
	return nil
}

// maximizeMetric reports whether a larger value of metric is better.
func maximizeMetric(metric string) bool {
	return metric == MetricAUC
}
