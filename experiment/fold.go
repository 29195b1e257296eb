package experiment

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/core/model"
	"github.com/YuminosukeSato/foldboost/metrics"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
	"github.com/YuminosukeSato/foldboost/sklearn/catboost"
	"github.com/YuminosukeSato/foldboost/sklearn/model_selection"
)

// FoldState is the lifecycle of the classifier owned by one fold.
type FoldState int

const (
	FoldConstructed FoldState = iota
	FoldFitting
	FoldEvaluated
	FoldPredicted
	FoldDiscarded
)

func (s FoldState) String() string {
	switch s {
	case FoldConstructed:
		return "constructed"
	case FoldFitting:
		return "fitting"
	case FoldEvaluated:
		return "evaluated"
	case FoldPredicted:
		return "predicted"
	case FoldDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// FoldResult is what one fold contributes besides its OOF and test predictions.
type FoldResult struct {
	Index         int
	TrainRows     int
	ValidRows     int
	TrainScore    float64
	ValidScore    float64
	BestIteration int
	Trees         int
	Duration      time.Duration
	FeatureImp    []float64

	// ModelPath is set when the fold model was saved before release.
	ModelPath string
}

// foldData holds the inputs shared by every fold.
type foldData struct {
	X     *mat.Dense
	Y     []float64
	XTest *mat.Dense

	// modelDir receives fold_<i>.json when models are saved.
	modelDir string
}

// cvState is written by the running fold only; folds run sequentially.
type cvState struct {
	oof     []float64
	written []bool
	test    []float64
	nFolds  int
}

func newCVState(nTrain, nTest, nFolds int) *cvState {
	return &cvState{
		oof:     make([]float64, nTrain),
		written: make([]bool, nTrain),
		test:    make([]float64, nTest),
		nFolds:  nFolds,
	}
}

// WriteOOF stores predictions for the validation rows idx. Writing a row a
// second time is an error.
func WriteOOF(oof []float64, written []bool, idx []int, preds []float64) error {
	if len(idx) != len(preds) {
		return errors.NewDimensionError("WriteOOF", len(idx), len(preds), 0)
	}
	for i, row := range idx {
		if written[row] {
			return errors.NewValueError("WriteOOF", "out-of-fold row written twice")
		}
		oof[row] = preds[i]
		written[row] = true
	}
	return nil
}

// AddFoldPrediction adds pred / nFolds to the running test vector.
func AddFoldPrediction(test, pred []float64, nFolds int) error {
	if len(test) != len(pred) {
		return errors.NewDimensionError("AddFoldPrediction", len(test), len(pred), 0)
	}
	for i, p := range pred {
		test[i] += p / float64(nFolds)
	}
	return nil
}

// SqrtAUC is the fold and overall score: the square root of ROC AUC.
// AUC is undefined unless y holds both classes, which is an error here.
func SqrtAUC(y, pred []float64) (float64, error) {
	var pos int
	for _, v := range y {
		if v == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return 0, errors.NewValueError("SqrtAUC",
			fmt.Sprintf("only one class present in %d labels (%d positive)", len(y), pos))
	}
	auc, err := metrics.AUCScore(y, pred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(auc), nil
}

// trainFold runs one fold through Constructed -> Fitting -> Evaluated ->
// Predicted -> Discarded. The classifier is closed on every exit path.
func trainFold(ctx context.Context, cfg Config, data foldData, fold model_selection.Fold, st *cvState) (res FoldResult, err error) {
	start := time.Now()
	logger := cfg.logger().With(log.FoldKey, fold.Index)
	res = FoldResult{
		Index:     fold.Index,
		TrainRows: len(fold.TrainIndices),
		ValidRows: len(fold.ValidIndices),
	}

	XTrain := model_selection.TakeRows(data.X, fold.TrainIndices)
	yTrain := model_selection.TakeValues(data.Y, fold.TrainIndices)
	XValid := model_selection.TakeRows(data.X, fold.ValidIndices)
	yValid := model_selection.TakeValues(data.Y, fold.ValidIndices)

	clf := cfg.modelFactory()(cfg.Params, logger)
	transition(logger, FoldConstructed)
	defer func() {
		if cerr := clf.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to release model")
		}
		transition(logger, FoldDiscarded)
	}()

	transition(logger, FoldFitting)
	err = clf.FitEval(ctx, XTrain, yTrain,
		[]mat.Matrix{XTrain, XValid}, [][]float64{yTrain, yValid})
	if err != nil {
		return res, errors.Wrapf(err, "fold %d: fit", fold.Index)
	}

	validPred, err := predict(cfg, clf, XValid)
	if err != nil {
		return res, errors.Wrapf(err, "fold %d: predict validation", fold.Index)
	}
	if err := WriteOOF(st.oof, st.written, fold.ValidIndices, validPred); err != nil {
		return res, err
	}
	if res.ValidScore, err = SqrtAUC(yValid, validPred); err != nil {
		return res, errors.Wrapf(err, "fold %d: valid score", fold.Index)
	}

	trainPred, err := predict(cfg, clf, XTrain)
	if err != nil {
		return res, errors.Wrapf(err, "fold %d: predict train", fold.Index)
	}
	if res.TrainScore, err = SqrtAUC(yTrain, trainPred); err != nil {
		return res, errors.Wrapf(err, "fold %d: train score", fold.Index)
	}
	transition(logger, FoldEvaluated)

	testPred, err := predict(cfg, clf, data.XTest)
	if err != nil {
		return res, errors.Wrapf(err, "fold %d: predict test", fold.Index)
	}
	if err := AddFoldPrediction(st.test, testPred, st.nFolds); err != nil {
		return res, err
	}
	transition(logger, FoldPredicted)

	res.BestIteration = -1
	if cb, ok := clf.(*catboost.Classifier); ok {
		res.BestIteration = cb.BestIteration()
		if m := cb.Model(); m != nil {
			res.Trees = m.NumTrees()
			res.FeatureImp = m.FeatureImportance()
			if data.modelDir != "" {
				path := filepath.Join(data.modelDir, fmt.Sprintf("fold_%d.json", fold.Index))
				if err := m.SaveToJSON(path); err != nil {
					return res, errors.Wrapf(err, "fold %d: save model", fold.Index)
				}
				res.ModelPath = path
			}
		}
	}
	res.Duration = time.Since(start)

	logger.Info("Fold finished",
		log.TrainScoreKey, res.TrainScore,
		log.ValidScoreKey, res.ValidScore,
		log.BestIterationKey, res.BestIteration,
		log.TreesKey, res.Trees,
		log.DurationSecondsKey, res.Duration.Seconds(),
	)
	return res, nil
}

func predict(cfg Config, clf model.BinaryClassifier, X mat.Matrix) ([]float64, error) {
	if cfg.PredictionType == PredictRaw {
		if raw, ok := clf.(model.RawPredictor); ok {
			return raw.PredictRaw(X)
		}
		return nil, errors.NewValidationError("prediction_type", "model does not provide raw scores", cfg.PredictionType)
	}
	return clf.PredictProba(X)
}

func transition(logger log.Logger, state FoldState) {
	logger.Debug("Fold state", log.FoldStateKey, state.String())
}
