package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("hidden")
	logger.Info("fold finished", FoldKey, 2, AUCKey, 0.9)
	logger.With(RunIDKey, "abc").Warn("small class", "class", 1)

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotContains(t, buffer.String(), "hidden")

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, float64(2), entries[0][FoldKey])
	assert.Equal(t, "abc", entries[1][RunIDKey])
	assert.True(t, logger.ContainsField("class", float64(1)))
	assert.True(t, logger.ContainsMessage("small class"))
}

func TestTestLoggerErrorField(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	logger.Error("fit failed", fmt.Errorf("boom"), FoldKey, 0)

	assert.True(t, logger.ContainsField(ErrorKey, "boom"))
	assert.True(t, logger.ContainsField(FoldKey, float64(0)))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)
	logger := provider.GetLoggerWithName("experiment").With(RunIDKey, "run-1")

	logger.Debug("not emitted")
	logger.Info("fold finished", FoldKey, 3, AUCKey, 0.75)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fold finished", entry["message"])
	assert.Equal(t, "experiment", entry[ComponentKey])
	assert.Equal(t, "run-1", entry[RunIDKey])
	assert.Equal(t, float64(3), entry[FoldKey])
}

func TestZerologLoggerErrorStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()

	logger.Error("run failed", errors.NewValueError("LoadCompetition", "target is not binary"), FoldKey, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry[ErrorKey], "target is not binary")
	assert.NotEmpty(t, entry[StacktraceKey])
	assert.Equal(t, float64(1), entry[FoldKey])
}

func TestLoggerEnabled(t *testing.T) {
	ctx := context.Background()

	zl := NewZerologProvider(&bytes.Buffer{}, LevelWarn).GetLogger()
	assert.False(t, zl.Enabled(ctx, LevelInfo))
	assert.True(t, zl.Enabled(ctx, LevelError))

	tl, _ := NewTestLogger(LevelInfo)
	assert.False(t, tl.Enabled(ctx, LevelDebug))
	assert.True(t, tl.Enabled(ctx, LevelInfo))
}

func TestProviderSetLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelError)
	provider.GetLogger().Info("dropped")
	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestConcurrentLogging(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.With("worker", worker).Info("tick", "j", j)
			}
		}(i)
	}
	wg.Wait()

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 160)
}
