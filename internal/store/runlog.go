package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// RunStatus is the outcome of a cleaning run.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Run is one row of the clean_runs table.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	RowsIn     int       `json:"rows_in"`
	RowsOut    int       `json:"rows_out"`
	Status     RunStatus `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

const createRunsSQL = `CREATE TABLE IF NOT EXISTS clean_runs (
	id          uuid PRIMARY KEY,
	source      text NOT NULL,
	rows_in     integer NOT NULL,
	rows_out    integer NOT NULL,
	status      text NOT NULL,
	error_code  text,
	started_at  timestamptz NOT NULL,
	finished_at timestamptz
)`

const insertRunSQL = `INSERT INTO clean_runs
	(id, source, rows_in, rows_out, status, error_code, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const recentRunsSQL = `SELECT id, source, rows_in, rows_out, status, error_code, started_at, finished_at
	FROM clean_runs ORDER BY started_at DESC LIMIT $1`

// RunLog appends cleaning-run records to clean_runs.
type RunLog struct {
	db DBTX
}

// NewRunLog returns a RunLog backed by db.
func NewRunLog(db DBTX) *RunLog {
	return &RunLog{db: db}
}

// EnsureSchema creates clean_runs when absent.
func (l *RunLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, createRunsSQL); err != nil {
		return fmt.Errorf("create clean_runs: %w", err)
	}
	return nil
}

// Record inserts r. A zero ID is replaced with a fresh one.
func (l *RunLog) Record(ctx context.Context, r Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	errCode := pgtype.Text{String: r.ErrorCode, Valid: r.ErrorCode != ""}

	_, err := l.db.Exec(ctx, insertRunSQL,
		ToPgUUID(r.ID),
		r.Source,
		int32(r.RowsIn),
		int32(r.RowsOut),
		string(r.Status),
		errCode,
		ToPgTimestamptz(r.StartedAt),
		ToPgTimestamptz(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (l *RunLog) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(ctx, recentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id       pgtype.UUID
			rowsIn   int32
			rowsOut  int32
			status   string
			errCode  pgtype.Text
			started  pgtype.Timestamptz
			finished pgtype.Timestamptz
			r        Run
		)
		if err := rows.Scan(&id, &r.Source, &rowsIn, &rowsOut, &status, &errCode, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ID = uuid.UUID(id.Bytes)
		r.RowsIn, r.RowsOut = int(rowsIn), int(rowsOut)
		r.Status = RunStatus(status)
		r.ErrorCode = errCode.String
		r.StartedAt = started.Time
		r.FinishedAt = finished.Time
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
