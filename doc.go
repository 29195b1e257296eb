// Package foldboost runs a stratified k-fold gradient boosting experiment for
// binary classification competitions.
//
// A run loads train.csv and test.csv, selects every column except the id and
// target as features, and trains one oblivious-tree boosting model per fold.
// Each model is early-stopped on its validation fold's AUC. The run collects
// out-of-fold predictions and the fold-averaged test predictions, reports the
// square root of AUC for every fold, and fills the sample submission.
//
// # Installation
//
//	go install github.com/YuminosukeSato/foldboost/cmd/foldboost@latest
//
// # Quick Start
//
// From the command line, with the competition files in ../data:
//
//	foldboost --data-dir ../data --submission ../submission/catboost.csv
//	foldboost history --last 5
//
// From Go:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/foldboost/experiment"
//	)
//
//	func main() {
//	    cfg := experiment.DefaultConfig()
//	    cfg.DataDir = "data"
//
//	    res, err := experiment.Run(context.Background(), cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("CV Score: %.5f\n", res.Summary.CVScore)
//	}
//
// # Packages
//
//   - experiment: fold loop, aggregation, reporter, exports and run history
//   - dataset: CSV loading, feature selection and submission writing
//   - sklearn/catboost: oblivious-tree gradient boosting classifier
//   - sklearn/model_selection: KFold and StratifiedKFold splitters
//   - metrics: AUC, ROC curve and log loss
//   - core/model: estimator interfaces and fit state
//   - core/parallel: CPU-aware parallel loops
//   - pkg/errors: typed errors and panic recovery
//   - pkg/log: structured logging on zerolog
//
// # Output
//
// Every run appends its summary to logs/log_YYYYMMDD and prints the same
// block to stdout:
//
//	# =============================================================================
//	# SUMMARY
//	# =============================================================================
//	Shape: (200000, 200)
//	Num folds: 5
//	Train Scores: mean 0.95421, max 0.95630, min 0.95207, std 0.00141
//	Valid Scores: mean 0.94802, max 0.95011, min 0.94533, std 0.00163
//	CV Score: 0.94810
//	# =============================================================================
//	# END
//	# =============================================================================
//
// # Performance
//
// Split search runs one goroutine per feature at each tree level, and
// prediction splits rows across workers. ThreadCount defaults to the number
// of logical cores reported by cpuid.
package foldboost
