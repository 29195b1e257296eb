package catboost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/foldboost/pkg/log"
)

func TestPrintEvaluationLogsEarlyStopIteration(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	cl := NewCallbackList(1000, PrintEvaluation(100, logger))
	results := map[string]float64{"validation_1:AUC": 0.91, "validation_0:AUC": 0.97}

	require.NoError(t, cl.AfterIteration(0, 0, results, false))
	require.NoError(t, cl.AfterIteration(57, 40, results, false))
	require.NoError(t, cl.AfterIteration(58, 40, results, true))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(0), entries[0][log.IterationKey])
	assert.Equal(t, float64(58), entries[1][log.IterationKey])
	assert.Equal(t, float64(40), entries[1][log.BestIterationKey])
	assert.Equal(t, 0.91, entries[1]["validation_1:AUC"])
	assert.True(t, cl.ShouldStop())
}

func TestPrintEvaluationLastIteration(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	cl := NewCallbackList(10, PrintEvaluation(4, logger))
	for iter := 0; iter < 10; iter++ {
		require.NoError(t, cl.AfterIteration(iter, iter, map[string]float64{}, false))
	}

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	var logged []float64
	for _, e := range entries {
		logged = append(logged, e[log.IterationKey].(float64))
	}
	assert.Equal(t, []float64{0, 4, 8, 9}, logged)
	assert.False(t, cl.ShouldStop())
}

func TestTimeLimitStopsTraining(t *testing.T) {
	cl := NewCallbackList(10, TimeLimit(time.Hour))
	require.NoError(t, cl.AfterIteration(0, 0, nil, false))
	assert.False(t, cl.ShouldStop())

	X, y := makeClassification(200, 11)
	params := testParams()
	params.UseBestModel = false

	clf := NewClassifier(params, WithLogger(quietLogger(t)), WithCallbacks(TimeLimit(0)))
	require.NoError(t, clf.FitEval(context.Background(), X, y, nil, nil))
	assert.Equal(t, 1, clf.Model().NumTrees())
}
