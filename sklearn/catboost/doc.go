// Package catboost implements gradient boosting over oblivious (symmetric)
// decision trees for binary classification.
//
// Features are quantized once into at most BorderCount bins using borders
// learned on the training pool; evaluation pools reuse those borders. Each
// iteration draws Bayesian or Bernoulli bootstrap weights, fits one tree of
// depth MaxDepth to the weighted Logloss gradients, and evaluates every
// labelled eval pool. The last eval pool drives early stopping.
//
//	params := catboost.DefaultParams()
//	params.EvalMetric = catboost.MetricAUC
//	params.EarlyStoppingRounds = 200
//
//	clf := catboost.NewClassifier(params)
//	err := clf.FitEval(ctx, XTrain, yTrain,
//	    []mat.Matrix{XTrain, XValid}, [][]float64{yTrain, yValid})
//	proba, err := clf.PredictProba(XTest)
package catboost
