// Package experiment runs the stratified k-fold training loop: it trains one
// classifier per fold, collects out-of-fold and averaged test predictions,
// reports fold scores and writes the submission.
package experiment

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/foldboost/core/model"
	"github.com/YuminosukeSato/foldboost/core/parallel"
	"github.com/YuminosukeSato/foldboost/dataset"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
	"github.com/YuminosukeSato/foldboost/sklearn/catboost"
)

// Prediction types for OOF and test vectors.
const (
	PredictProbability = "Probability"
	PredictRaw         = "RawFormulaVal"
)

// ModelFactory builds a fresh classifier for one fold.
type ModelFactory func(params catboost.TrainingParams, logger log.Logger) model.BinaryClassifier

// Config holds everything a run needs. There is no package-level state:
// build one with DefaultConfig, adjust fields and pass it to Run.
type Config struct {
	DataDir      string
	IDColumn     string
	TargetColumn string

	// SubmissionPath is where the filled sample submission is written.
	SubmissionPath string
	// LogDir receives the dated, append-only summary log.
	LogDir string

	NFolds int
	Seed   int
	Params catboost.TrainingParams

	// FoldTimeLimit stops boosting in a fold once it has run this long.
	// Zero means no limit. Only the default model factory honours it.
	FoldTimeLimit time.Duration

	// PredictionType selects probabilities or raw log-odds for the OOF and
	// test vectors. AUC is the same either way.
	PredictionType string

	// Optional exports, written under OutputDir when enabled.
	OutputDir       string
	PlotROC         bool
	ExportWorkbook  bool
	DumpPredictions bool
	SaveModels      bool

	// HistoryDSN is a SQLite data source; empty disables run history.
	HistoryDSN string

	Stdout   io.Writer
	Logger   log.Logger
	NewModel ModelFactory
}

// DefaultConfig returns the experiment constants: 5 folds, seed 6, depth 6,
// learning rate 0.01, up to 100000 iterations with early stopping after 200
// rounds on validation AUC.
func DefaultConfig() Config {
	params := catboost.DefaultParams()
	params.Boosting = catboost.BoostingGBDT
	params.BootstrapType = catboost.BootstrapBayesian
	params.EvalMetric = catboost.MetricAUC
	params.Objective = catboost.ObjectiveLogloss
	params.Iterations = 100000
	params.MaxDepth = 6
	params.LearningRate = 0.01
	params.ThreadCount = parallel.NumWorkers()
	params.RandomSeed = 6
	params.EarlyStoppingRounds = 200
	params.VerboseEval = 500
	params.UseBestModel = true

	return Config{
		DataDir:        filepath.Join("..", "data"),
		IDColumn:       dataset.DefaultIDColumn,
		TargetColumn:   dataset.DefaultTargetColumn,
		SubmissionPath: filepath.Join("..", "submission", "catboost.csv"),
		LogDir:         "logs",
		NFolds:         5,
		Seed:           6,
		Params:         params,
		PredictionType: PredictProbability,
		OutputDir:      "output",
		Stdout:         os.Stdout,
	}
}

// Validate checks the configuration before any file is touched.
func (c Config) Validate() error {
	switch {
	case c.NFolds < 2:
		return errors.NewValidationError("n_folds", "must be at least 2", c.NFolds)
	case c.DataDir == "":
		return errors.NewValidationError("data_dir", "must not be empty", c.DataDir)
	case c.IDColumn == "" || c.TargetColumn == "":
		return errors.NewValidationError("columns", "id and target column names are required", c.IDColumn+","+c.TargetColumn)
	case c.IDColumn == c.TargetColumn:
		return errors.NewValidationError("columns", "id and target column must differ", c.IDColumn)
	case c.SubmissionPath == "":
		return errors.NewValidationError("submission_path", "must not be empty", c.SubmissionPath)
	case c.LogDir == "":
		return errors.NewValidationError("log_dir", "must not be empty", c.LogDir)
	case c.PredictionType != PredictProbability && c.PredictionType != PredictRaw:
		return errors.NewValidationError("prediction_type", "must be Probability or RawFormulaVal", c.PredictionType)
	case c.FoldTimeLimit < 0:
		return errors.NewValidationError("fold_time_limit", "must be non-negative", c.FoldTimeLimit)
	case c.exportsEnabled() && c.OutputDir == "":
		return errors.NewValidationError("output_dir", "required when exports are enabled", c.OutputDir)
	}
	return c.Params.Validate()
}

func (c Config) exportsEnabled() bool {
	return c.PlotROC || c.ExportWorkbook || c.DumpPredictions || c.SaveModels
}

func (c Config) logger() log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.GetLoggerWithName("experiment")
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c Config) modelFactory() ModelFactory {
	if c.NewModel != nil {
		return c.NewModel
	}
	limit := c.FoldTimeLimit
	return func(params catboost.TrainingParams, logger log.Logger) model.BinaryClassifier {
		opts := []catboost.Option{catboost.WithLogger(logger)}
		if limit > 0 {
			opts = append(opts, catboost.WithCallbacks(catboost.TimeLimit(limit)))
		}
		return catboost.NewClassifier(params, opts...)
	}
}
