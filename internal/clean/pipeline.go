package clean

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// Stage is one named table transformation.
type Stage interface {
	Name() string
	Apply(t *table.Table) (*table.Table, error)
}

type stageFunc struct {
	name string
	fn   func(*table.Table) (*table.Table, error)
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Apply(t *table.Table) (*table.Table, error) { return s.fn(t) }

// NewStage wraps fn as a Stage.
func NewStage(name string, fn func(*table.Table) (*table.Table, error)) Stage {
	return stageFunc{name: name, fn: fn}
}

// Stage constructors. Each binds its configuration at construction time.

func NormalizeColumnsStage() Stage {
	return NewStage("clean_columns", NormalizeColumnNames)
}

func TrimStage(columns ...string) Stage {
	return NewStage("trim", func(t *table.Table) (*table.Table, error) {
		return Trim(t, columns...)
	})
}

func DedupeStage(opts DedupeOptions) Stage {
	return NewStage("remove_duplicates", func(t *table.Table) (*table.Table, error) {
		return RemoveDuplicates(t, opts)
	})
}

func ValidateStage(v Validator) Stage {
	return NewStage("validate", v.Validate)
}

func CaseStage(op CaseOp, columns ...string) Stage {
	return NewStage("change_case", func(t *table.Table) (*table.Table, error) {
		return ChangeCase(t, op, columns...)
	})
}

func DateStage(column, pattern string) Stage {
	return NewStage("standardize_date", func(t *table.Table) (*table.Table, error) {
		return StandardizeDate(t, column, pattern)
	})
}

func RegexStage(column, pattern, replacement string) Stage {
	return NewStage("regex_replace", func(t *table.Table) (*table.Table, error) {
		return RegexReplace(t, column, pattern, replacement)
	})
}

func MissingStage(p MissingPolicy) Stage {
	return NewStage("handle_missing", func(t *table.Table) (*table.Table, error) {
		return HandleMissing(t, p)
	})
}

func OutlierStage(opts OutlierOptions) Stage {
	return NewStage("handle_outliers", func(t *table.Table) (*table.Table, error) {
		return HandleOutliers(t, opts)
	})
}

func CurrencyStage(column string) Stage {
	return NewStage("standardize_currency", func(t *table.Table) (*table.Table, error) {
		return StandardizeCurrency(t, column)
	})
}

func SplitStage(column, delimiter string, names []string) Stage {
	return NewStage("split", func(t *table.Table) (*table.Table, error) {
		return SplitColumn(t, column, delimiter, names)
	})
}

// Options configures the default cleaning order.
type Options struct {
	Dedupe    DedupeOptions
	Validator Validator
	Missing   MissingPolicy
	Outliers  OutlierOptions
}

// DefaultOptions returns drop-missing, z-score-remove defaults with "age"
// designated numeric.
func DefaultOptions() Options {
	return Options{
		Validator: NewValidator(),
		Missing:   MissingPolicy{Method: MissingDrop},
		Outliers: OutlierOptions{
			Method:    DetectZScore,
			Policy:    OutlierRemove,
			Threshold: DefaultZScoreThreshold,
		},
	}
}

// StepReport describes one executed stage.
type StepReport struct {
	Stage    string        `json:"stage"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"duration_ns"`
}

// RunReport summarizes a pipeline run.
type RunReport struct {
	Steps    []StepReport  `json:"steps"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Duration time.Duration `json:"duration_ns"`
}

// Pipeline runs stages in order, threading each stage's output into the next.
// A Pipeline holds no table state and is safe for concurrent use.
type Pipeline struct {
	opts   Options
	stages []Stage
	logger *slog.Logger
}

// NewPipeline creates a pipeline for opts. A nil logger discards output.
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, logger: logger}
}

// DefaultStages returns the fixed CleanAll order for the pipeline's options.
func (p *Pipeline) DefaultStages() []Stage {
	return []Stage{
		NormalizeColumnsStage(),
		TrimStage(),
		DedupeStage(p.opts.Dedupe),
		ValidateStage(p.opts.Validator),
		MissingStage(p.opts.Missing),
		OutlierStage(p.opts.Outliers),
	}
}

// Steps returns a copy of p that runs exactly the given stages from Run.
func (p *Pipeline) Steps(stages ...Stage) *Pipeline {
	cp := *p
	cp.stages = append([]Stage(nil), stages...)
	return &cp
}

// CleanAll runs the default stages and returns the cleaned table.
func (p *Pipeline) CleanAll(t *table.Table) (*table.Table, error) {
	out, _, err := p.run(t, p.DefaultStages())
	return out, err
}

// Run executes the configured stages, or the default stages when none were
// set with Steps. On failure it returns no table and the stage's error wrapped
// with the stage name.
func (p *Pipeline) Run(t *table.Table) (*table.Table, *RunReport, error) {
	stages := p.stages
	if stages == nil {
		stages = p.DefaultStages()
	}
	return p.run(t, stages)
}

func (p *Pipeline) run(t *table.Table, stages []Stage) (*table.Table, *RunReport, error) {
	start := time.Now()
	report := &RunReport{RowsIn: t.Len(), Steps: make([]StepReport, 0, len(stages))}

	cur := t
	for _, s := range stages {
		stepStart := time.Now()
		next, err := s.Apply(cur)
		if err != nil {
			p.logger.Debug("stage failed", "stage", s.Name(), "error", err)
			return nil, report, fmt.Errorf("%s: %w", s.Name(), err)
		}

		step := StepReport{
			Stage:    s.Name(),
			RowsIn:   cur.Len(),
			RowsOut:  next.Len(),
			Columns:  next.Width(),
			Duration: time.Since(stepStart),
		}
		report.Steps = append(report.Steps, step)
		p.logger.Debug("stage complete",
			"stage", step.Stage,
			"rows_in", step.RowsIn,
			"rows_out", step.RowsOut,
			"duration_ms", step.Duration.Milliseconds(),
		)
		cur = next
	}

	report.RowsOut = cur.Len()
	report.Duration = time.Since(start)
	return cur, report, nil
}
