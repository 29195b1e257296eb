package experiment

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/foldboost/dataset"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
	"github.com/YuminosukeSato/foldboost/sklearn/model_selection"
)

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Summary Summary
	Scores  Scores
	Folds   []FoldResult

	// OOF has one prediction per training row; Test is the fold average.
	OOF  []float64
	Test []float64

	// Exports lists optional files written under OutputDir.
	Exports []string

	Started  time.Time
	Finished time.Time

	y []float64
}

// Run loads the competition data from cfg.DataDir, cross-validates, reports
// the summary, writes optional exports, fills the sample submission and
// records the run in the history store when configured. Any error aborts the
// run; the submission is only written after every fold has completed.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	logger := cfg.logger().With(log.RunIDKey, runID)
	cfg.Logger = logger
	reporter := NewReporter(cfg.stdout(), cfg.LogDir, started)
	if err := reporter.RunStarted(runID, started); err != nil {
		return nil, err
	}

	logger.Info("Run started",
		log.PathKey, cfg.DataDir,
		log.NumFoldsKey, cfg.NFolds,
		log.RandomSeedKey, cfg.Seed,
		log.IterationsKey, cfg.Params.Iterations,
		log.LearningRateKey, cfg.Params.LearningRate,
		log.MaxDepthKey, cfg.Params.MaxDepth,
		log.ThreadCountKey, cfg.Params.ThreadCount,
	)

	data, err := dataset.LoadCompetition(cfg.DataDir, cfg.IDColumn, cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	res, err := crossValidate(ctx, cfg, runID, data, reporter)
	if err != nil {
		return nil, err
	}
	res.Started = started

	if cfg.exportsEnabled() {
		res.Exports, err = writeExports(cfg, res, data.IDs, data.TestIDs)
		if err != nil {
			return nil, err
		}
	}

	err = dataset.WriteSubmission(dataset.SubmissionOptions{
		TemplatePath: filepath.Join(cfg.DataDir, dataset.SampleFile),
		OutputPath:   cfg.SubmissionPath,
		IDColumn:     cfg.IDColumn,
		TargetColumn: cfg.TargetColumn,
	}, data.TestIDs, res.Test)
	if err != nil {
		return nil, err
	}
	logger.Info("Submission written", log.PathKey, cfg.SubmissionPath)

	res.Finished = time.Now()
	if cfg.HistoryDSN != "" {
		if err := recordHistory(ctx, cfg, res); err != nil {
			return nil, err
		}
	}

	elapsed := res.Finished.Sub(started)
	if err := reporter.RunFinished(runID, elapsed); err != nil {
		return nil, err
	}
	logger.Info("Run finished",
		log.ScoreKey, res.Summary.CVScore,
		log.DurationSecondsKey, elapsed.Seconds(),
	)
	return res, nil
}

// CrossValidate runs the fold loop and the summary on in-memory data
// without touching the submission. Fold models are still saved when
// cfg.SaveModels is set, since they are released when their fold ends.
func CrossValidate(ctx context.Context, cfg Config, data *dataset.Competition) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	cfg.Logger = cfg.logger().With(log.RunIDKey, runID)
	res, err := crossValidate(ctx, cfg, runID, data, NewReporter(cfg.stdout(), cfg.LogDir, time.Now()))
	if err != nil {
		return nil, err
	}
	res.Finished = time.Now()
	return res, nil
}

func crossValidate(ctx context.Context, cfg Config, runID string, data *dataset.Competition, reporter *Reporter) (*Result, error) {
	logger := cfg.logger()

	splitter := model_selection.NewStratifiedKFold(cfg.NFolds, true, cfg.Seed)
	splitter.Logger = logger
	folds, err := splitter.Split(data.Y)
	if err != nil {
		return nil, err
	}

	rows, features := data.Shape()
	testRows, _ := data.XTest.Dims()
	st := newCVState(rows, testRows, cfg.NFolds)
	fd := foldData{X: data.X, Y: data.Y, XTest: data.XTest}
	if cfg.SaveModels {
		fd.modelDir = filepath.Join(cfg.OutputDir, runID, "models")
	}

	res := &Result{RunID: runID, Started: time.Now(), y: data.Y}
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "run cancelled before fold %d", fold.Index)
		}
		reporter.Progress(fold.Index, cfg.NFolds)

		fr, err := trainFold(ctx, cfg, fd, fold, st)
		if err != nil {
			logger.Error("Fold failed", err, log.FoldKey, fold.Index)
			return nil, err
		}
		res.Folds = append(res.Folds, fr)
		res.Scores.Train = append(res.Scores.Train, fr.TrainScore)
		res.Scores.Valid = append(res.Scores.Valid, fr.ValidScore)
	}

	res.Summary, err = Aggregate(data.Y, st.oof, st.written, res.Scores, rows, features)
	if err != nil {
		return nil, err
	}
	res.OOF = st.oof
	res.Test = st.test

	if err := reporter.Summary(res.Summary); err != nil {
		return nil, err
	}
	return res, nil
}

func recordHistory(ctx context.Context, cfg Config, res *Result) error {
	store, err := OpenHistory(ctx, cfg.HistoryDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := newRunRecord(cfg, res)
	if err != nil {
		return err
	}
	return store.Record(ctx, rec)
}
