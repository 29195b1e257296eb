package catboost

import (
	"math"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// ObjectiveFunction defines the interface for different objective functions.
// prediction is always the raw (untransformed) ensemble score.
type ObjectiveFunction interface {
	// CalculateGradient calculates the gradient for a single sample
	CalculateGradient(prediction, target float64) float64

	// CalculateHessian calculates the hessian for a single sample
	CalculateHessian(prediction, target float64) float64

	// CalculateLoss calculates the loss for a single sample
	CalculateLoss(prediction, target float64) float64

	// GetInitScore returns the initial raw score for this objective
	GetInitScore(targets []float64) float64

	// Name returns the name of the objective
	Name() string
}

// minHessian keeps Newton steps finite when predictions saturate.
const minHessian = 1e-16

// LoglossObjective is binary cross-entropy on the sigmoid of the raw score.
type LoglossObjective struct{}

// NewLoglossObjective creates a new Logloss objective.
func NewLoglossObjective() *LoglossObjective {
	return &LoglossObjective{}
}

func (o *LoglossObjective) CalculateGradient(prediction, target float64) float64 {
	return errors.Sigmoid(prediction) - target
}

func (o *LoglossObjective) CalculateHessian(prediction, _ float64) float64 {
	p := errors.Sigmoid(prediction)
	return math.Max(p*(1-p), minHessian)
}

func (o *LoglossObjective) CalculateLoss(prediction, target float64) float64 {
	p := errors.ClipProbability(errors.Sigmoid(prediction), 1e-15)
	if target == 1 {
		return -math.Log(p)
	}
	return -math.Log(1 - p)
}

// GetInitScore returns the log-odds of the positive rate.
func (o *LoglossObjective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	var pos float64
	for _, t := range targets {
		pos += t
	}
	p := errors.ClipProbability(pos/float64(len(targets)), 1e-15)
	return math.Log(p / (1 - p))
}

func (o *LoglossObjective) Name() string {
	return ObjectiveLogloss
}

// CreateObjectiveFunction creates an objective function by name.
func CreateObjectiveFunction(name string) (ObjectiveFunction, error) {
	switch name {
	case ObjectiveLogloss, "binary", "logloss", "binary_logloss":
		return NewLoglossObjective(), nil
	default:
		return nil, errors.NewValidationError("objective", "unsupported objective", name)
	}
}
