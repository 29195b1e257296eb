package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const trainCSV = `ID_code,target,var_0,var_1
train_0,0,1.5,10
train_1,1,2.5,
train_2,0,-3,30
`

const testCSV = `ID_code,var_1,var_0
test_0,11,1
test_1,12,2
`

func TestReadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "train.csv", trainCSV)

	frame, err := ReadCSV(path, DefaultIDColumn)
	require.NoError(t, err)

	assert.Equal(t, 3, frame.Rows())
	assert.Equal(t, []string{"ID_code", "target", "var_0", "var_1"}, frame.Columns)
	assert.Equal(t, []string{"train_0", "train_1", "train_2"}, frame.IDs)
	assert.True(t, frame.Has("ID_code"))
	assert.False(t, frame.Has("var_9"))

	col, err := frame.Column("var_1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
}

func TestReadCSVErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCSV(filepath.Join(dir, "missing.csv"), DefaultIDColumn)
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	path := writeFile(t, dir, "bad.csv", "ID_code,var_0\na,x\n")
	_, err = ReadCSV(path, DefaultIDColumn)
	var vErr *errors.ValueError
	assert.True(t, errors.As(err, &vErr))

	path = writeFile(t, dir, "ragged.csv", "ID_code,var_0\na,1,2\n")
	_, err = ReadCSV(path, DefaultIDColumn)
	assert.Error(t, err)

	path = writeFile(t, dir, "dup.csv", "ID_code,var_0\na,1\nb,2\na,3\n")
	_, err = ReadCSV(path, DefaultIDColumn)
	require.True(t, errors.As(err, &vErr), "%v", err)
	assert.Contains(t, err.Error(), "line 4: duplicate ID_code a (first on line 2)")
}

func TestSelectFeatures(t *testing.T) {
	got := SelectFeatures([]string{"ID_code", "var_0", "target", "var_1"}, "ID_code", "target")
	assert.Equal(t, FeatureSet{"var_0", "var_1"}, got)
}

func TestLoadCompetition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TrainFile, trainCSV)
	writeFile(t, dir, TestFile, testCSV)

	c, err := LoadCompetition(dir, DefaultIDColumn, DefaultTargetColumn)
	require.NoError(t, err)

	assert.Equal(t, FeatureSet{"var_0", "var_1"}, c.Features)
	rows, cols := c.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{0, 1, 0}, c.Y)
	assert.InDelta(t, 1.0/3, c.PositiveRate(), 1e-12)

	// test columns are reordered to the training feature order
	assert.Equal(t, 1.0, c.XTest.At(0, 0))
	assert.Equal(t, 11.0, c.XTest.At(0, 1))
	assert.Equal(t, []string{"test_0", "test_1"}, c.TestIDs)
}

func TestLoadCompetitionMissingTestFeature(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TrainFile, trainCSV)
	writeFile(t, dir, TestFile, "ID_code,var_0\ntest_0,1\n")

	_, err := LoadCompetition(dir, DefaultIDColumn, DefaultTargetColumn)
	var shapeErr *errors.InputShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "var_1", shapeErr.Feature)
}

func TestLoadCompetitionNonBinaryTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TrainFile, "ID_code,target,var_0\na,2,1\n")
	writeFile(t, dir, TestFile, testCSV)

	_, err := LoadCompetition(dir, DefaultIDColumn, DefaultTargetColumn)
	var vErr *errors.ValueError
	assert.True(t, errors.As(err, &vErr))
}

func TestWriteSubmission(t *testing.T) {
	dir := t.TempDir()
	template := writeFile(t, dir, SampleFile, "ID_code,target\ntest_0,0\ntest_1,0\n")
	out := filepath.Join(dir, "submission", "catboost.csv")

	opts := SubmissionOptions{
		TemplatePath: template,
		OutputPath:   out,
		IDColumn:     DefaultIDColumn,
		TargetColumn: DefaultTargetColumn,
	}
	require.NoError(t, WriteSubmission(opts, []string{"test_0", "test_1"}, []float64{0.25, 0.7}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ID_code,target\ntest_0,0.25\ntest_1,0.7\n", string(data))
}

func TestWriteSubmissionRowCountMismatch(t *testing.T) {
	dir := t.TempDir()
	template := writeFile(t, dir, SampleFile, "ID_code,target\ntest_0,0\ntest_1,0\n")
	out := filepath.Join(dir, "out.csv")

	opts := SubmissionOptions{template, out, DefaultIDColumn, DefaultTargetColumn}
	err := WriteSubmission(opts, nil, []float64{0.1, 0.2, 0.3})

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing may be written on mismatch")
}

func TestWriteSubmissionIDMismatch(t *testing.T) {
	dir := t.TempDir()
	template := writeFile(t, dir, SampleFile, "ID_code,target\ntest_0,0\ntest_1,0\n")

	opts := SubmissionOptions{template, filepath.Join(dir, "out.csv"), DefaultIDColumn, DefaultTargetColumn}
	err := WriteSubmission(opts, []string{"test_1", "test_0"}, []float64{0.1, 0.2})

	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestWritePredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds", "oof.csv")
	err := WritePredictions(path, "ID_code", []string{"a", "b"}, []string{"target", "oof"},
		[]float64{0, 1}, []float64{0.125, 0.5})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"ID_code,target,oof", "a,0,0.125", "b,1,0.5"}, lines)

	err = WritePredictions(path, "ID_code", []string{"a"}, []string{"oof"}, []float64{1, 2})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
