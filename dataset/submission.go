package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// SubmissionOptions describes the template and destination of a submission.
type SubmissionOptions struct {
	TemplatePath string // sample_submission.csv
	OutputPath   string
	IDColumn     string
	TargetColumn string
}

// WriteSubmission copies the template, replacing its target column with
// predictions. The template must have exactly len(predictions) rows, else a
// DimensionError is returned and nothing is written. When ids is non-nil the
// template's identifier column must match it row by row.
func WriteSubmission(opts SubmissionOptions, ids []string, predictions []float64) error {
	records, err := readRecords(opts.TemplatePath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.NewValueError("WriteSubmission", "template has no header: "+opts.TemplatePath)
	}

	header := records[0]
	idIdx, targetIdx := -1, -1
	for j, name := range header {
		switch name {
		case opts.IDColumn:
			idIdx = j
		case opts.TargetColumn:
			targetIdx = j
		}
	}
	if targetIdx < 0 {
		return errors.NewValidationError("target_column", "column not found in submission template", opts.TargetColumn)
	}

	rows := records[1:]
	if len(rows) != len(predictions) {
		return errors.NewDimensionError("WriteSubmission", len(rows), len(predictions), 0)
	}
	if ids != nil {
		if idIdx < 0 {
			return errors.NewValidationError("id_column", "column not found in submission template", opts.IDColumn)
		}
		if len(ids) != len(rows) {
			return errors.NewDimensionError("WriteSubmission", len(rows), len(ids), 0)
		}
		for i, row := range rows {
			if row[idIdx] != ids[i] {
				return errors.NewValidationError("id_column",
					fmt.Sprintf("row %d of the template does not match the test table", i), row[idIdx])
			}
		}
	}

	for i, row := range rows {
		row[targetIdx] = formatFloat(predictions[i])
	}
	return writeRecords(opts.OutputPath, records)
}

// WritePredictions writes an id column and one column per named vector.
// All vectors must have len(ids) entries.
func WritePredictions(path, idColumn string, ids []string, names []string, columns ...[]float64) error {
	if len(names) != len(columns) {
		return errors.NewDimensionError("WritePredictions", len(names), len(columns), 1)
	}
	for _, col := range columns {
		if len(col) != len(ids) {
			return errors.NewDimensionError("WritePredictions", len(ids), len(col), 0)
		}
	}

	records := make([][]string, 0, len(ids)+1)
	records = append(records, append([]string{idColumn}, names...))
	for i, id := range ids {
		row := make([]string, 0, len(columns)+1)
		row = append(row, id)
		for _, col := range columns {
			row = append(row, formatFloat(col[i]))
		}
		records = append(records, row)
	}
	return writeRecords(path, records)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("open", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}
	return records, nil
}

func writeRecords(path string, records [][]string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("mkdir", filepath.Dir(path), err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("create", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.NewIOError("close", path, cerr)
		}
	}()

	return flushRecords(file, path, records)
}

func flushRecords(w io.Writer, path string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return errors.NewIOError("write", path, err)
	}
	return nil
}
