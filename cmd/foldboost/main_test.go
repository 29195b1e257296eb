package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

func TestOptionsFromEnvironment(t *testing.T) {
	t.Setenv("FOLDBOOST_DATA_DIR", "/tmp/data")
	t.Setenv("FOLDBOOST_FOLDS", "3")
	t.Setenv("FOLDBOOST_SEED", "42")

	cfg, err := newOptions().config()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, 3, cfg.NFolds)
	assert.Equal(t, 42, cfg.Seed)
	assert.Equal(t, 42, cfg.Params.RandomSeed)
}

func TestOptionsBadEnvironment(t *testing.T) {
	t.Setenv("FOLDBOOST_FOLDS", "five")

	_, err := newOptions().config()
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestFlagsOverrideDefaults(t *testing.T) {
	opts := newOptions()
	cmd := newRootCmdFor(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--depth", "4",
		"--seed", "7",
		"--param", "l2_leaf_reg=5",
		"--param", "bootstrap_type=Bernoulli",
		"--fold-time-limit", "90s",
	}))

	cfg, err := opts.config()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Params.MaxDepth)
	assert.Equal(t, 7, cfg.Params.RandomSeed)
	assert.Equal(t, 5.0, cfg.Params.L2LeafReg)
	assert.Equal(t, "Bernoulli", cfg.Params.BootstrapType)
	assert.Equal(t, 90*time.Second, cfg.FoldTimeLimit)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"--folds", "1",
		"--log-dir", filepath.Join(t.TempDir(), "logs"),
		"--log-level", "error",
	})

	err := cmd.ExecuteContext(context.Background())
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "n_folds", verr.ParamName)
}

func TestUnknownParamOverride(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--param", "num_leaves=31", "--log-level", "error"})

	err := cmd.ExecuteContext(context.Background())
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestBadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--log-level", "loud"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
