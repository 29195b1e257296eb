package experiment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/YuminosukeSato/foldboost/pkg/errors"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP NOT NULL,
	n_folds         INTEGER NOT NULL,
	seed            INTEGER NOT NULL,
	n_rows          INTEGER NOT NULL,
	n_features      INTEGER NOT NULL,
	train_mean      REAL NOT NULL,
	valid_mean      REAL NOT NULL,
	valid_std       REAL NOT NULL,
	cv_score        REAL NOT NULL,
	params          TEXT NOT NULL,
	submission_path TEXT NOT NULL
)`

// RunRecord is one row of the run history.
type RunRecord struct {
	RunID          string    `db:"run_id"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
	NFolds         int       `db:"n_folds"`
	Seed           int       `db:"seed"`
	Rows           int       `db:"n_rows"`
	Features       int       `db:"n_features"`
	TrainMean      float64   `db:"train_mean"`
	ValidMean      float64   `db:"valid_mean"`
	ValidStd       float64   `db:"valid_std"`
	CVScore        float64   `db:"cv_score"`
	Params         string    `db:"params"`
	SubmissionPath string    `db:"submission_path"`
}

// HistoryStore keeps one row per completed run in SQLite.
type HistoryStore struct {
	db *sqlx.DB
}

// OpenHistory opens (and migrates) the SQLite database at dsn.
// ":memory:" gives a throwaway store.
func OpenHistory(ctx context.Context, dsn string) (*HistoryStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, errors.NewIOError("open", dsn, err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, historySchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate run history")
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Record inserts a run.
func (h *HistoryStore) Record(ctx context.Context, rec RunRecord) error {
	_, err := h.db.NamedExecContext(ctx, `
INSERT INTO runs (run_id, started_at, finished_at, n_folds, seed, n_rows, n_features,
	train_mean, valid_mean, valid_std, cv_score, params, submission_path)
VALUES (:run_id, :started_at, :finished_at, :n_folds, :seed, :n_rows, :n_features,
	:train_mean, :valid_mean, :valid_std, :cv_score, :params, :submission_path)`, rec)
	if err != nil {
		return errors.Wrapf(err, "failed to record run %s", rec.RunID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := h.db.SelectContext(ctx, &runs,
		`SELECT * FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// Best returns the run with the highest CV score.
func (h *HistoryStore) Best(ctx context.Context) (RunRecord, error) {
	var run RunRecord
	err := h.db.GetContext(ctx, &run, `SELECT * FROM runs ORDER BY cv_score DESC LIMIT 1`)
	if err != nil {
		return run, errors.Wrap(err, "failed to find best run")
	}
	return run, nil
}

func newRunRecord(cfg Config, res *Result) (RunRecord, error) {
	params, err := json.Marshal(cfg.Params)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "encode params")
	}
	return RunRecord{
		RunID:          res.RunID,
		StartedAt:      res.Started.UTC(),
		FinishedAt:     res.Finished.UTC(),
		NFolds:         res.Summary.NFolds,
		Seed:           cfg.Seed,
		Rows:           res.Summary.Rows,
		Features:       res.Summary.Features,
		TrainMean:      res.Summary.Train.Mean,
		ValidMean:      res.Summary.Valid.Mean,
		ValidStd:       res.Summary.Valid.Std,
		CVScore:        res.Summary.CVScore,
		Params:         string(params),
		SubmissionPath: cfg.SubmissionPath,
	}, nil
}
