package catboost

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/core/model"
	"github.com/YuminosukeSato/foldboost/core/parallel"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// Classifier is a gradient-boosted binary classifier with a
// scikit-learn style API.
type Classifier struct {
	Params TrainingParams

	mu        sync.RWMutex
	state     *model.StateManager
	model     *Model
	history   map[string][]float64
	logger    log.Logger
	callbacks []Callback
}

var _ model.BinaryClassifier = (*Classifier)(nil)

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used during training.
func WithLogger(logger log.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// WithCallbacks adds training callbacks.
func WithCallbacks(callbacks ...Callback) Option {
	return func(c *Classifier) {
		c.callbacks = append(c.callbacks, callbacks...)
	}
}

// NewClassifier creates an unfitted classifier.
func NewClassifier(params TrainingParams, opts ...Option) *Classifier {
	c := &Classifier{
		Params: params,
		state:  model.NewStateManager("CatBoostClassifier"),
		logger: log.GetLoggerWithName("catboost"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit trains on train, evaluating on evalSets after every iteration. The
// last labelled eval set drives early stopping and UseBestModel.
func (c *Classifier) Fit(ctx context.Context, train *Pool, evalSets ...*Pool) (err error) {
	defer errors.Recover(&err, "Classifier.Fit")

	if train == nil {
		return errors.NewValueError("Classifier.Fit", "nil training pool")
	}
	rows, cols := train.Dims()
	c.logger.Debug("Fitting",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.IterationsKey, c.Params.Iterations,
		log.LearningRateKey, c.Params.LearningRate,
		log.MaxDepthKey, c.Params.MaxDepth,
	)

	trainer := NewTrainer(c.Params).WithLogger(c.logger).WithCallbacks(c.callbacks...)
	m, err := trainer.Fit(ctx, train, evalSets...)
	if err != nil {
		return errors.NewModelError("Classifier.Fit", "training failed", err)
	}

	c.mu.Lock()
	c.model = m
	c.history = trainer.EvalHistory()
	c.mu.Unlock()
	c.state.SetFitted(cols, rows)
	return nil
}

// FitEval implements model.EvalFitter. Eval pools are named validation_i.
func (c *Classifier) FitEval(ctx context.Context, X mat.Matrix, y []float64, evalX []mat.Matrix, evalY [][]float64) error {
	if len(evalX) != len(evalY) {
		return errors.NewDimensionError("Classifier.FitEval", len(evalX), len(evalY), 0)
	}
	train, err := NewPool(X, y)
	if err != nil {
		return err
	}
	pools := make([]*Pool, len(evalX))
	for i := range evalX {
		p, err := NewPool(evalX[i], evalY[i])
		if err != nil {
			return errors.Wrapf(err, "eval set %d", i)
		}
		pools[i] = p.Named(fmt.Sprintf("validation_%d", i))
	}
	return c.Fit(ctx, train, pools...)
}

// PredictProba returns the positive-class probability for each row.
func (c *Classifier) PredictProba(X mat.Matrix) ([]float64, error) {
	m, err := c.fittedModel(X)
	if err != nil {
		return nil, err
	}
	return m.PredictProba(X, c.workers())
}

// PredictRaw returns the raw log-odds for each row.
func (c *Classifier) PredictRaw(X mat.Matrix) ([]float64, error) {
	m, err := c.fittedModel(X)
	if err != nil {
		return nil, err
	}
	return m.PredictRaw(X, c.workers())
}

func (c *Classifier) fittedModel(X mat.Matrix) (*Model, error) {
	rows, cols := X.Dims()
	if err := c.state.RequireFeatures(log.PhaseTesting, rows, cols); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.model == nil {
		return nil, errors.NewNotFittedError("CatBoostClassifier", "Predict")
	}
	return c.model, nil
}

func (c *Classifier) workers() int {
	if c.Params.ThreadCount > 0 {
		return c.Params.ThreadCount
	}
	return parallel.NumWorkers()
}

// Model returns the trained ensemble, or nil before Fit.
func (c *Classifier) Model() *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// BestIteration returns the 0-based best iteration, or -1.
func (c *Classifier) BestIteration() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.model == nil {
		return -1
	}
	return c.model.BestIteration
}

// EvalsResult returns the per-iteration evaluation history.
func (c *Classifier) EvalsResult() map[string][]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history
}

// Close releases the trained model. The classifier must be fitted again
// before it can predict.
func (c *Classifier) Close() error {
	c.mu.Lock()
	c.model = nil
	c.history = nil
	c.mu.Unlock()
	c.state.Reset()
	return nil
}
