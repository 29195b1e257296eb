package experiment

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/foldboost/dataset"
	"github.com/YuminosukeSato/foldboost/metrics"
	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

// PlotROC saves the ROC curve of the pooled OOF predictions as a PNG.
func PlotROC(path string, y, oof []float64, cvScore float64) error {
	points, err := metrics.ROCCurve(y, oof)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Out-of-fold ROC (CV score %.5f)", cvScore)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = pt.FPR
		pts[i].Y = pt.TPR
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "failed to build ROC line")
	}
	curve.Color = color.RGBA{B: 200, R: 30, G: 90, A: 255}
	curve.LineStyle.Width = vg.Points(2)
	p.Add(curve)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "failed to build diagonal")
	}
	chance.Color = color.Gray{Y: 150}
	chance.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(chance)

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.NewIOError("write", path, err)
	}
	return nil
}

// WriteWorkbook saves a fold sheet and a summary sheet.
func WriteWorkbook(path string, runID string, folds []FoldResult, s Summary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.NewIOError("close", path, cerr)
		}
	}()

	const foldSheet, summarySheet = "folds", "summary"
	if err := f.SetSheetName("Sheet1", foldSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "create summary sheet")
	}

	header := []interface{}{"fold", "train_rows", "valid_rows", "train_score", "valid_score", "best_iteration", "trees", "seconds"}
	if err := f.SetSheetRow(foldSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write fold header")
	}
	for i, fr := range folds {
		row := []interface{}{fr.Index + 1, fr.TrainRows, fr.ValidRows, fr.TrainScore, fr.ValidScore,
			fr.BestIteration, fr.Trees, fr.Duration.Seconds()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(foldSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write fold %d", fr.Index)
		}
	}

	summary := [][]interface{}{
		{"run_id", runID},
		{"rows", s.Rows},
		{"features", s.Features},
		{"n_folds", s.NFolds},
		{"train_mean", s.Train.Mean},
		{"train_std", s.Train.Std},
		{"valid_mean", s.Valid.Mean},
		{"valid_max", s.Valid.Max},
		{"valid_min", s.Valid.Min},
		{"valid_std", s.Valid.Std},
		{"cv_score", s.CVScore},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return errors.Wrap(err, "write summary")
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewIOError("write", path, err)
	}
	return nil
}

// writeExports writes every enabled export under cfg.OutputDir and returns
// the written paths.
func writeExports(cfg Config, res *Result, ids, testIDs []string) ([]string, error) {
	var written []string
	dir := filepath.Join(cfg.OutputDir, res.RunID)

	if cfg.PlotROC {
		path := filepath.Join(dir, "oof_roc.png")
		if err := PlotROC(path, res.y, res.OOF, res.Summary.CVScore); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if cfg.ExportWorkbook {
		path := filepath.Join(dir, "folds.xlsx")
		if err := WriteWorkbook(path, res.RunID, res.Folds, res.Summary); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if cfg.DumpPredictions {
		oofPath := filepath.Join(dir, "oof.csv")
		if err := dataset.WritePredictions(oofPath, cfg.IDColumn, rowIDs(ids, len(res.OOF)),
			[]string{cfg.TargetColumn, "oof"}, res.y, res.OOF); err != nil {
			return written, err
		}
		testPath := filepath.Join(dir, "test.csv")
		if err := dataset.WritePredictions(testPath, cfg.IDColumn, rowIDs(testIDs, len(res.Test)),
			[]string{cfg.TargetColumn}, res.Test); err != nil {
			return written, err
		}
		written = append(written, oofPath, testPath)
	}
	for _, fr := range res.Folds {
		if fr.ModelPath != "" {
			written = append(written, fr.ModelPath)
		}
	}
	return written, nil
}

// rowIDs falls back to row numbers when the table had no id column.
func rowIDs(ids []string, n int) []string {
	if len(ids) == n {
		return ids
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprint(i)
	}
	return out
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOError("mkdir", dir, err)
	}
	return nil
}
