// Package dataset loads the competition CSV tables, selects feature columns
// and writes submission and prediction files.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
	"github.com/YuminosukeSato/foldboost/pkg/log"
)

// Frame is a CSV table held column by column. The identifier column, if
// any, is kept as strings; every other column is parsed as float64.
type Frame struct {
	Path     string
	Columns  []string
	IDColumn string
	IDs      []string

	rows    int
	numeric map[string][]float64
}

// Rows returns the number of data rows.
func (f *Frame) Rows() int {
	return f.rows
}

// Has reports whether the table has the named column.
func (f *Frame) Has(name string) bool {
	if name == f.IDColumn && f.IDs != nil {
		return true
	}
	_, ok := f.numeric[name]
	return ok
}

// Column returns the values of a numeric column.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, errors.NewMissingFeatureError("projection", name, 1, 0)
	}
	return col, nil
}

// Project builds a rows x len(features) matrix with the columns in the given
// order. A missing column is an InputShapeError naming it.
func (f *Frame) Project(features FeatureSet) (*mat.Dense, error) {
	if len(features) == 0 {
		return nil, errors.NewValidationError("features", "feature set is empty", 0)
	}
	if f.rows == 0 {
		return nil, errors.NewValueError("Frame.Project", "table has no rows: "+f.Path)
	}
	cols := make([][]float64, len(features))
	for j, name := range features {
		col, ok := f.numeric[name]
		if !ok {
			return nil, errors.NewMissingFeatureError("projection", name, len(features), len(features)-1)
		}
		cols[j] = col
	}

	X := mat.NewDense(f.rows, len(features), nil)
	for j, col := range cols {
		X.SetCol(j, col)
	}
	return X, nil
}

// Target returns a binary target column. Values other than 0 or 1 are a
// ValueError.
func (f *Frame) Target(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, errors.NewValidationError("target_column", "column not found in "+f.Path, name)
	}
	y := make([]float64, len(col))
	for i, v := range col {
		if v != 0 && v != 1 {
			return nil, errors.NewValueError("Frame.Target",
				"target must be 0 or 1, got "+strconv.FormatFloat(v, 'g', -1, 64)+" at row "+strconv.Itoa(i))
		}
		y[i] = v
	}
	return y, nil
}

// ReadCSV reads a table with a header row. idColumn may be empty.
func ReadCSV(path, idColumn string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("open", path, err)
	}
	defer file.Close()

	frame, err := parseCSV(file, idColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	frame.Path = path

	log.GetLoggerWithName("dataset").Debug("Loaded table",
		log.PathKey, path,
		log.SamplesKey, frame.rows,
		log.FeaturesKey, len(frame.Columns),
	)
	return frame, nil
}

func parseCSV(r io.Reader, idColumn string) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValueError("ReadCSV", "missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	frame := &Frame{
		Columns: append([]string(nil), header...),
		numeric: make(map[string][]float64, len(header)),
	}
	idIdx := -1
	for j, name := range frame.Columns {
		if name == idColumn && idColumn != "" {
			idIdx = j
			frame.IDColumn = name
			continue
		}
		if _, dup := frame.numeric[name]; dup {
			return nil, errors.NewValueError("ReadCSV", "duplicate column "+name)
		}
		frame.numeric[name] = nil
	}

	seen := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed row")
		}
		line++

		for j, cell := range record {
			if j == idIdx {
				if first, dup := seen[cell]; dup {
					return nil, errors.NewValueError("ReadCSV",
						"line "+strconv.Itoa(line)+": duplicate "+idColumn+" "+cell+" (first on line "+strconv.Itoa(first)+")")
				}
				seen[cell] = line
				frame.IDs = append(frame.IDs, cell)
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.NewValueError("ReadCSV",
					"line "+strconv.Itoa(line)+", column "+frame.Columns[j]+": not a number: "+cell)
			}
			name := frame.Columns[j]
			frame.numeric[name] = append(frame.numeric[name], v)
		}
		frame.rows++
	}
	return frame, nil
}

func parseCell(cell string) (float64, error) {
	switch strings.TrimSpace(cell) {
	case "", "NA", "NaN", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}
