package catboost

import (
	"sort"
	"time"

	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// CallbackEnv contains the environment for callbacks
type CallbackEnv struct {
	Iteration     int
	NumIterations int
	BeginTime     time.Time
	EvalResults   map[string]float64 // "<pool name>:<metric>" -> value
	BestIteration int
	StopTraining  bool
}

// Callback is a function that can be called after every boosting iteration
type Callback func(env *CallbackEnv) error

// PrintEvaluation logs evaluation results every period iterations and on
// the last iteration. Keys are logged in sorted order.
func PrintEvaluation(period int, logger log.Logger) Callback {
	return func(env *CallbackEnv) error {
		if period <= 0 {
			return nil
		}
		last := env.Iteration == env.NumIterations-1
		if env.Iteration%period != 0 && !last && !env.StopTraining {
			return nil
		}

		names := make([]string, 0, len(env.EvalResults))
		for name := range env.EvalResults {
			names = append(names, name)
		}
		sort.Strings(names)

		fields := make([]any, 0, 2*len(names)+4)
		fields = append(fields, log.IterationKey, env.Iteration)
		for _, name := range names {
			fields = append(fields, name, env.EvalResults[name])
		}
		fields = append(fields, log.BestIterationKey, env.BestIteration)
		logger.Info("Evaluation", fields...)
		return nil
	}
}

// RecordEvaluation records evaluation history
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// TimeLimit stops training once maxDuration has passed since the first iteration.
func TimeLimit(maxDuration time.Duration) Callback {
	return func(env *CallbackEnv) error {
		if time.Since(env.BeginTime) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}

// CallbackList manages multiple callbacks
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a new callback list
func NewCallbackList(numIterations int, callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env: &CallbackEnv{
			NumIterations: numIterations,
			BeginTime:     time.Now(),
			EvalResults:   make(map[string]float64),
		},
	}
}

// AfterIteration calls callbacks after each iteration. earlyStop tells them
// this is the last iteration because early stopping triggered.
func (cl *CallbackList) AfterIteration(iteration, bestIteration int, evalResults map[string]float64, earlyStop bool) error {
	cl.env.Iteration = iteration
	cl.env.BestIteration = bestIteration
	cl.env.EvalResults = evalResults
	cl.env.StopTraining = earlyStop

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop returns whether a callback asked training to stop
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}
