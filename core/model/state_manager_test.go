package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager("Classifier")

	err := s.RequireFitted("PredictProba")
	var notFitted *errors.NotFittedError
	require.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "Classifier", notFitted.ModelName)
	assert.Equal(t, "PredictProba", notFitted.Method)

	s.SetFitted(200, 160000)
	assert.True(t, s.IsFitted())
	nFeatures, nSamples := s.GetDimensions()
	assert.Equal(t, 200, nFeatures)
	assert.Equal(t, 160000, nSamples)
	assert.NoError(t, s.RequireFeatures("prediction", 10, 200))

	err = s.RequireFeatures("prediction", 10, 199)
	var shapeErr *errors.InputShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{10, 200}, shapeErr.Expected)

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Error(t, s.RequireFitted("PredictProba"))
}
