package catboost

import (
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// parameterAliases maps every accepted Python-style name to its canonical name.
var parameterAliases = map[string]string{
	"boosting":      "boosting",
	"boosting_type": "boosting",

	"objective":     "objective",
	"loss_function": "objective",

	"eval_metric": "eval_metric",

	"iterations":      "iterations",
	"num_boost_round": "iterations",
	"n_estimators":    "iterations",
	"num_trees":       "iterations",

	"learning_rate": "learning_rate",
	"eta":           "learning_rate",

	"max_depth": "max_depth",
	"depth":     "max_depth",

	"l2_leaf_reg": "l2_leaf_reg",
	"reg_lambda":  "l2_leaf_reg",

	"border_count": "border_count",
	"max_bin":      "border_count",

	"bootstrap_type":      "bootstrap_type",
	"bagging_temperature": "bagging_temperature",
	"subsample":           "subsample",
	"boost_from_average":  "boost_from_average",

	"random_seed":  "random_seed",
	"random_state": "random_seed",
	"seed":         "random_seed",

	"thread_count": "thread_count",
	"n_jobs":       "thread_count",
	"nthread":      "thread_count",

	"early_stopping_rounds": "early_stopping_rounds",
	"od_wait":               "early_stopping_rounds",

	"verbose_eval":   "verbose_eval",
	"metric_period":  "verbose_eval",
	"use_best_model": "use_best_model",
}

// CanonicalParamName resolves an alias; ok is false for unknown names.
func CanonicalParamName(name string) (string, bool) {
	canonical, ok := parameterAliases[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// ApplyParamOverrides returns a copy of base with the given string-valued
// overrides applied, e.g. {"depth": "8", "eta": "0.05"}. Keys are applied in
// sorted order so that conflicting aliases resolve deterministically.
func ApplyParamOverrides(base TrainingParams, overrides map[string]string) (TrainingParams, error) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := base
	for _, key := range keys {
		canonical, ok := CanonicalParamName(key)
		if !ok {
			return base, errors.NewValidationError(key, "unknown parameter", overrides[key])
		}
		if err := setParam(&p, canonical, strings.TrimSpace(overrides[key])); err != nil {
			return base, err
		}
	}
	return p, p.Validate()
}

func setParam(p *TrainingParams, name, raw string) error {
	var err error
	switch name {
	case "boosting":
		p.Boosting = raw
	case "objective":
		p.Objective = raw
	case "eval_metric":
		p.EvalMetric = raw
	case "bootstrap_type":
		p.BootstrapType = raw
	case "iterations":
		p.Iterations, err = strconv.Atoi(raw)
	case "max_depth":
		p.MaxDepth, err = strconv.Atoi(raw)
	case "border_count":
		p.BorderCount, err = strconv.Atoi(raw)
	case "random_seed":
		p.RandomSeed, err = strconv.Atoi(raw)
	case "thread_count":
		p.ThreadCount, err = strconv.Atoi(raw)
	case "early_stopping_rounds":
		p.EarlyStoppingRounds, err = strconv.Atoi(raw)
	case "verbose_eval":
		p.VerboseEval, err = strconv.Atoi(raw)
	case "learning_rate":
		p.LearningRate, err = strconv.ParseFloat(raw, 64)
	case "l2_leaf_reg":
		p.L2LeafReg, err = strconv.ParseFloat(raw, 64)
	case "bagging_temperature":
		p.BaggingTemperature, err = strconv.ParseFloat(raw, 64)
	case "subsample":
		p.Subsample, err = strconv.ParseFloat(raw, 64)
	case "boost_from_average":
		p.BoostFromAverage, err = strconv.ParseBool(raw)
	case "use_best_model":
		p.UseBestModel, err = strconv.ParseBool(raw)
	}
	if err != nil {
		return errors.NewValidationError(name, "cannot parse value", raw)
	}
	return nil
}
