package dataset

import (
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// Default column and file names of the competition layout.
const (
	DefaultIDColumn     = "ID_code"
	DefaultTargetColumn = "target"

	TrainFile  = "train.csv"
	TestFile   = "test.csv"
	SampleFile = "sample_submission.csv"
)

// Competition is the projected training and test data ready for cross-validation.
type Competition struct {
	Features FeatureSet

	X   *mat.Dense
	Y   []float64
	IDs []string

	XTest   *mat.Dense
	TestIDs []string
}

// Shape returns the training feature matrix dimensions.
func (c *Competition) Shape() (rows, cols int) {
	return c.X.Dims()
}

// PositiveRate returns the share of training rows labelled 1.
func (c *Competition) PositiveRate() float64 {
	var pos float64
	for _, v := range c.Y {
		pos += v
	}
	return errors.SafeRatio(pos, float64(len(c.Y)))
}

// LoadCompetition reads train.csv and test.csv from dir, selects the feature
// columns (training columns minus id and target) and projects both tables
// onto them.
func LoadCompetition(dir, idColumn, targetColumn string) (*Competition, error) {
	train, err := ReadCSV(filepath.Join(dir, TrainFile), idColumn)
	if err != nil {
		return nil, err
	}
	test, err := ReadCSV(filepath.Join(dir, TestFile), idColumn)
	if err != nil {
		return nil, err
	}
	return FromFrames(train, test, idColumn, targetColumn)
}

// FromFrames builds a Competition from already loaded tables.
func FromFrames(train, test *Frame, idColumn, targetColumn string) (*Competition, error) {
	y, err := train.Target(targetColumn)
	if err != nil {
		return nil, err
	}

	features := SelectFeatures(train.Columns, idColumn, targetColumn)
	X, err := train.Project(features)
	if err != nil {
		return nil, err
	}
	XTest, err := test.Project(features)
	if err != nil {
		return nil, errors.Wrapf(err, "test table %s", test.Path)
	}

	c := &Competition{
		Features: features,
		X:        X,
		Y:        y,
		IDs:      train.IDs,
		XTest:    XTest,
		TestIDs:  test.IDs,
	}

	rows, cols := c.Shape()
	log.GetLoggerWithName("dataset").Info("Data ready",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"data.test_samples", test.Rows(),
		log.PositiveRateKey, c.PositiveRate(),
	)
	return c, nil
}
