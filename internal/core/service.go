package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/store"
	"github.com/JonMunkholm/datacleaner/internal/table"
	"github.com/JonMunkholm/datacleaner/internal/tableio"
)

// DefaultRunTimeout is the maximum duration of a single run.
const DefaultRunTimeout = 5 * time.Minute

// Database is what the service needs from PostgreSQL.
// Satisfied by *pgxpool.Pool.
type Database interface {
	store.Beginner
	store.DBTX
}

// Service runs cleaning jobs for the CLI and the HTTP server.
type Service struct {
	defaults clean.Options
	limiter  *RunLimiter
	metrics  *Metrics
	timeout  time.Duration

	db   Database
	runs *store.RunLog
}

// Option configures a Service.
type Option func(*Service)

// WithDatabase enables persistence and the run log.
func WithDatabase(db Database) Option {
	return func(s *Service) {
		s.db = db
		s.runs = store.NewRunLog(db)
	}
}

// WithLimiter replaces the default run limiter.
func WithLimiter(l *RunLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTimeout bounds each run.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates a Service whose plans start from defaults.
func NewService(defaults clean.Options, opts ...Option) *Service {
	s := &Service{
		defaults: defaults,
		timeout:  DefaultRunTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	if s.limiter == nil {
		s.limiter = NewRunLimiter(DefaultMaxConcurrentRuns, DefaultMaxWaitTime)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// DatabaseEnabled reports whether persistence is available.
func (s *Service) DatabaseEnabled() bool { return s.db != nil }

// Job is one table to clean.
type Job struct {
	Source string // file name or path, recorded in the run log
	Table  *table.Table
	Plan   Plan
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     uuid.UUID
	Table     *table.Table
	Report    *clean.RunReport
	Persisted int64
}

// Clean runs job's plan over its table. On failure no table is returned and
// nothing is persisted.
func (s *Service) Clean(ctx context.Context, job Job) (*Result, error) {
	runID := uuid.New()
	started := time.Now()
	logger := logging.WithFields(ctx, "run_id", runID.String(), "source", job.Source)

	if job.Table == nil {
		return nil, ErrNoFile
	}
	if job.Plan.Persist != "" && s.db == nil {
		return nil, ErrDatabaseDisabled
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.observe(nil, MapError(err).Code, err)
		return nil, err
	}
	defer s.limiter.Release()
	s.metrics.ActiveRuns.Inc()
	defer s.metrics.ActiveRuns.Dec()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, report, err := s.run(ctx, runID, job, logger)

	code := MapError(err).Code
	s.metrics.observe(report, code, err)
	s.record(ctx, runID, job, report, started, code, err)

	if err != nil {
		logger.Warn("run failed", "code", code, "error", err)
		return nil, err
	}
	logger.Info("run complete",
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"stages", len(report.Steps),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, runID uuid.UUID, job Job, logger *slog.Logger) (*Result, *clean.RunReport, error) {
	pipe, err := job.Plan.Pipeline(s.defaults, logger)
	if err != nil {
		return nil, nil, err
	}

	out, report, err := pipe.Run(job.Table)
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	res := &Result{RunID: runID, Table: out, Report: report}
	if job.Plan.Persist != "" {
		n, err := store.WriteTable(ctx, s.db, job.Plan.Persist, out)
		if err != nil {
			return nil, report, fmt.Errorf("persist: %w", err)
		}
		res.Persisted = n
		logger.Debug("table persisted", "table", job.Plan.Persist, "rows", n)
	}
	return res, report, nil
}

// record appends the run to the run log. Failures are logged, never returned.
func (s *Service) record(ctx context.Context, runID uuid.UUID, job Job, report *clean.RunReport, started time.Time, code string, runErr error) {
	if s.runs == nil {
		return
	}
	r := store.Run{
		ID:         runID,
		Source:     job.Source,
		RowsIn:     job.Table.Len(),
		Status:     store.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		r.Status = store.StatusFailed
		r.ErrorCode = code
	} else if report != nil {
		r.RowsOut = report.RowsOut
	}

	// the run's own deadline may already have passed
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Record(recCtx, r); err != nil {
		logging.FromContext(ctx).Error("record run failed", "run_id", runID.String(), "error", err)
	}
}

// CleanFile loads in, cleans it with plan and writes the result to out.
// The output file is only created when every stage succeeds.
func (s *Service) CleanFile(ctx context.Context, in, out string, plan Plan, opts tableio.Options) (*Result, error) {
	if _, _, err := tableio.DetectFormat(out); err != nil {
		return nil, err
	}
	t, _, err := tableio.ReadFile(in, opts)
	if err != nil {
		return nil, err
	}

	res, err := s.Clean(ctx, Job{Source: in, Table: t, Plan: plan})
	if err != nil {
		return nil, err
	}

	// the input sheet name does not apply to the output
	if err := tableio.WriteFile(out, res.Table, tableio.Options{}); err != nil {
		return nil, fmt.Errorf("write %s: %w", out, err)
	}
	return res, nil
}

// EnsureSchema prepares the run log table. A no-op without a database.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s.runs == nil {
		return nil
	}
	return s.runs.EnsureSchema(ctx)
}

// RecentRuns returns up to limit logged runs, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if s.runs == nil {
		return nil, ErrDatabaseDisabled
	}
	return s.runs.Recent(ctx, limit)
}

// Status reports the limiter state.
func (s *Service) Status() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for active runs to finish.
func (s *Service) Drain(ctx context.Context) error {
	err := s.limiter.WaitForDrain(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("drain: %d runs still active: %w", s.limiter.ActiveCount(), err)
	}
	return err
}
