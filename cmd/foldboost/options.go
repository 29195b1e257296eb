package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/foldboost/experiment"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
	"github.com/YuminosukeSato/foldboost/sklearn/catboost"
)

const envPrefix = "FOLDBOOST_"

// options collects flag values. Defaults come from experiment.DefaultConfig,
// overridden by FOLDBOOST_* environment variables, overridden by flags.
type options struct {
	cfg        experiment.Config
	params     map[string]string
	historyDSN string

	logLevel string
	logJSON  bool

	envErr error
}

func newOptions() *options {
	o := &options{
		cfg:      experiment.DefaultConfig(),
		params:   map[string]string{},
		logLevel: "info",
	}
	o.applyEnv()
	o.historyDSN = o.cfg.HistoryDSN
	return o
}

func (o *options) applyEnv() {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil && o.envErr == nil {
				o.envErr = errors.NewValidationError(envPrefix+key, "not an integer", v)
			}
			*dst = n
		}
	}

	str("DATA_DIR", &o.cfg.DataDir)
	str("SUBMISSION", &o.cfg.SubmissionPath)
	str("LOG_DIR", &o.cfg.LogDir)
	str("OUTPUT_DIR", &o.cfg.OutputDir)
	str("HISTORY", &o.cfg.HistoryDSN)
	str("LOG_LEVEL", &o.logLevel)
	num("FOLDS", &o.cfg.NFolds)
	num("SEED", &o.cfg.Seed)
	num("THREADS", &o.cfg.Params.ThreadCount)
	o.cfg.Params.RandomSeed = o.cfg.Seed
}

func (o *options) bindLogging(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.logLevel, "log-level", o.logLevel, "debug, info, warn or error")
	f.BoolVar(&o.logJSON, "log-json", false, "write logs as JSON lines instead of console text")
}

func (o *options) bindRun(cmd *cobra.Command) {
	c := &o.cfg
	f := cmd.Flags()
	f.StringVar(&c.DataDir, "data-dir", c.DataDir, "directory with train.csv, test.csv and sample_submission.csv")
	f.StringVar(&c.SubmissionPath, "submission", c.SubmissionPath, "submission output path")
	f.StringVar(&c.LogDir, "log-dir", c.LogDir, "directory of the dated summary log")
	f.StringVar(&c.IDColumn, "id-column", c.IDColumn, "identifier column")
	f.StringVar(&c.TargetColumn, "target-column", c.TargetColumn, "binary target column")
	f.IntVar(&c.NFolds, "folds", c.NFolds, "number of stratified folds")
	f.IntVar(&c.Seed, "seed", c.Seed, "seed for fold assignment and bootstrap")
	f.StringVar(&c.PredictionType, "prediction-type", c.PredictionType, "Probability or RawFormulaVal")

	f.IntVar(&c.Params.Iterations, "iterations", c.Params.Iterations, "maximum boosting iterations")
	f.Float64Var(&c.Params.LearningRate, "learning-rate", c.Params.LearningRate, "shrinkage per tree")
	f.IntVar(&c.Params.MaxDepth, "depth", c.Params.MaxDepth, "oblivious tree depth")
	f.IntVar(&c.Params.EarlyStoppingRounds, "early-stopping", c.Params.EarlyStoppingRounds, "rounds without validation improvement before stopping (0 disables)")
	f.IntVar(&c.Params.VerboseEval, "verbose-eval", c.Params.VerboseEval, "log evaluation every N iterations (0 disables)")
	f.IntVar(&c.Params.ThreadCount, "threads", c.Params.ThreadCount, "worker goroutines")
	f.DurationVar(&c.FoldTimeLimit, "fold-time-limit", c.FoldTimeLimit, "stop boosting a fold after this long, e.g. 30m (0 disables)")
	f.StringToStringVar(&o.params, "param", o.params, "extra training parameter, e.g. --param l2_leaf_reg=5")

	f.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "directory for optional exports")
	f.BoolVar(&c.PlotROC, "plot", false, "save the out-of-fold ROC curve as PNG")
	f.BoolVar(&c.ExportWorkbook, "workbook", false, "save fold scores as an xlsx workbook")
	f.BoolVar(&c.DumpPredictions, "dump-predictions", false, "save OOF and test predictions as CSV")
	f.BoolVar(&c.SaveModels, "save-models", false, "save each fold model as JSON")
	f.StringVar(&o.historyDSN, "history", o.historyDSN, "SQLite database recording every run")
}

// config resolves the final experiment configuration.
func (o *options) config() (experiment.Config, error) {
	if o.envErr != nil {
		return experiment.Config{}, o.envErr
	}
	cfg := o.cfg
	cfg.HistoryDSN = o.historyDSN
	cfg.Params.RandomSeed = cfg.Seed

	params, err := catboost.ApplyParamOverrides(cfg.Params, o.params)
	if err != nil {
		return experiment.Config{}, err
	}
	cfg.Params = params
	cfg.Logger = log.GetLoggerWithName("experiment")
	return cfg, nil
}

func (o *options) setupLogging(w io.Writer) error {
	level, ok := log.ParseLevel(strings.ToLower(o.logLevel))
	if !ok {
		return errors.NewValidationError("log-level", "must be debug, info, warn or error", o.logLevel)
	}
	if o.logJSON {
		log.SetProvider(log.NewZerologProvider(w, level))
	} else {
		log.SetProvider(log.NewConsoleProvider(w, level))
	}
	return nil
}
