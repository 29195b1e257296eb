package experiment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

const rule = "# ============================================================================="

// Reporter writes progress to stdout and the summary block to both stdout
// and the dated log file logs/log_YYYYMMDD, which is only ever appended to.
type Reporter struct {
	stdout  io.Writer
	logPath string
}

// NewReporter creates a reporter whose log file is named after day.
func NewReporter(stdout io.Writer, logDir string, day time.Time) *Reporter {
	return &Reporter{
		stdout:  stdout,
		logPath: filepath.Join(logDir, "log_"+day.Format("20060102")),
	}
}

// LogPath returns the dated log file path.
func (r *Reporter) LogPath() string {
	return r.logPath
}

// Progress prints "fold: i/N" with a 1-based fold number.
func (r *Reporter) Progress(fold, nFolds int) {
	fmt.Fprintf(r.stdout, "fold: %d/%d\n", fold+1, nFolds)
}

// RunStarted appends a start marker to the log file.
func (r *Reporter) RunStarted(runID string, at time.Time) error {
	return r.appendLog(fmt.Sprintf("start run %s at %s\n", runID, at.Format(time.DateTime)))
}

// RunFinished appends an end marker with the elapsed time.
func (r *Reporter) RunFinished(runID string, elapsed time.Duration) error {
	return r.appendLog(fmt.Sprintf("end run %s, elapsed %s\n", runID, elapsed.Round(time.Second)))
}

// Summary writes the summary block to stdout and appends it to the log file.
func (r *Reporter) Summary(s Summary) error {
	block := FormatSummary(s)
	if _, err := io.WriteString(r.stdout, block); err != nil {
		return errors.NewIOError("write", "stdout", err)
	}
	return r.appendLog(block)
}

// FormatSummary renders the summary block.
func FormatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n# SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", s.Rows, s.Features)
	fmt.Fprintf(&b, "Num folds: %d\n", s.NFolds)
	writeStats(&b, "Train", s.Train)
	writeStats(&b, "Valid", s.Valid)
	fmt.Fprintf(&b, "CV Score: %-8.5f\n", s.CVScore)
	fmt.Fprintf(&b, "%s\n# END\n%s\n", rule, rule)
	return b.String()
}

func writeStats(b *strings.Builder, name string, st ScoreStats) {
	fmt.Fprintf(b, "%s Scores: mean %.5f, max %.5f, min %.5f, std %.5f\n",
		name, st.Mean, st.Max, st.Min, st.Std)
}

func (r *Reporter) appendLog(text string) error {
	dir := filepath.Dir(r.logPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOError("mkdir", dir, err)
	}
	f, err := os.OpenFile(r.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewIOError("open", r.logPath, err)
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return errors.NewIOError("write", r.logPath, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError("close", r.logPath, err)
	}
	return nil
}
