// Command datacleaner cleans a tabular file and writes the result.
//
//	datacleaner [flags] INPUT OUTPUT
//
// Formats are chosen by file extension: .csv, .tsv, .xlsx or .json, each
// optionally followed by .gz. With no stage flags the default pipeline runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/report"
	"github.com/JonMunkholm/datacleaner/internal/store"
	"github.com/JonMunkholm/datacleaner/internal/tableio"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	// explicit environment wins over .env for the CLI
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds everything parsed from the command line.
type options struct {
	plan   core.Plan
	sheet  string
	report bool
	in     string
	out    string
}

// listFlag collects comma-separated values; repeating the flag appends.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	var (
		o                                              options
		subset, numeric, caseCols, outCols, splitNames listFlag
	)
	p := &o.plan

	fs := flag.NewFlagSet("datacleaner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: datacleaner [flags] INPUT OUTPUT")
		fs.PrintDefaults()
	}

	fs.BoolVar(&p.CleanAll, "clean-all", false, "run the default pipeline")
	fs.BoolVar(&p.CleanColumns, "clean-columns", false, "normalize column names to lower_snake_case")
	fs.BoolVar(&p.TrimSpaces, "trim-spaces", false, "trim surrounding whitespace from text cells")
	fs.BoolVar(&p.RemoveDuplicates, "remove-duplicates", false, "drop repeated rows, keeping the first")
	fs.Var(&subset, "subset", "key columns for duplicate detection (comma-separated)")
	fs.BoolVar(&p.ValidateData, "validate-data", false, "infer column types and coerce numeric columns")
	fs.Var(&numeric, "numeric", "columns coerced to numbers by --validate-data (comma-separated)")
	fs.BoolVar(&p.KeepIncomplete, "keep-incomplete", false, "keep rows with absent cells after validation")
	fs.StringVar(&p.ChangeCase, "change-case", "", "lower, upper, title or capitalize")
	fs.Var(&caseCols, "case-columns", "columns for --change-case (default: all text columns)")
	fs.StringVar(&p.StandardizeDate, "standardize-date", "", "date column to reformat")
	fs.StringVar(&p.DateFormat, "date-format", "", "output date pattern, e.g. YYYY-MM-DD")
	regex := fs.String("regex-clean", "", "COL=PATTERN: replace PATTERN matches in COL")
	fs.StringVar(&p.RegexReplacement, "regex-replacement", "", "replacement for --regex-clean")
	fs.StringVar(&p.HandleMissing, "handle-missing", "", "drop or fill")
	fs.Func("fill-value", "value for --handle-missing fill (default 0)", func(v string) error {
		p.FillValue = &v
		return nil
	})
	fs.StringVar(&p.OutlierMethod, "outlier-method", "", "remove, cap or flag")
	fs.StringVar(&p.OutlierDetector, "outlier-detector", "", "zscore or iqr")
	fs.Var(&outCols, "outlier-columns", "columns checked for outliers (default: all numeric)")
	fs.Float64Var(&p.Threshold, "threshold", 0, "z-score cutoff or IQR multiplier (0 selects the detector default: 3 for zscore, 1.5 for iqr)")
	fs.StringVar(&p.StandardizeCurrency, "standardize-currency", "", "currency column to parse into numbers")
	fs.StringVar(&p.Split, "split", "", "column to split into parts")
	fs.StringVar(&p.SplitDelimiter, "split-delimiter", "", "regular expression separating parts (default \",\")")
	fs.Var(&splitNames, "split-names", "names for the split columns (comma-separated)")
	fs.StringVar(&o.sheet, "sheet", "", "Excel sheet to read (default: first)")
	fs.BoolVar(&o.report, "report", false, "print a summary of the cleaned table to stdout")
	fs.StringVar(&p.Persist, "persist", "", "also write the cleaned rows to this database table")

	// flags may follow the positional arguments
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) != 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected INPUT and OUTPUT, got %d arguments", len(positional))
	}
	o.in, o.out = positional[0], positional[1]

	p.Subset, p.NumericColumns, p.CaseColumns = subset, numeric, caseCols
	p.OutlierColumns, p.SplitNames = outCols, splitNames

	if *regex != "" {
		col, pattern, ok := strings.Cut(*regex, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("--regex-clean: expected COL=PATTERN, got %q", *regex)
		}
		p.RegexColumn, p.RegexPattern = strings.TrimSpace(col), pattern
	}
	return &o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "datacleaner:", err)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "datacleaner:", err)
		return exitFail
	}
	logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)

	opts := []core.Option{core.WithTimeout(cfg.Upload.Timeout)}
	if o.plan.Persist != "" && cfg.Database.Enabled() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fail(stderr, err)
		}
		defer pool.Close()
		opts = append(opts, core.WithDatabase(pool))
	}

	svc := core.NewService(core.CleanDefaults(cfg.Clean), opts...)
	if err := svc.EnsureSchema(ctx); err != nil {
		return fail(stderr, err)
	}

	res, err := svc.CleanFile(ctx, o.in, o.out, o.plan, tableio.Options{Sheet: o.sheet})
	if err != nil {
		return fail(stderr, err)
	}

	if o.report {
		if err := report.WriteText(stdout, report.Describe(res.Table)); err != nil {
			return fail(stderr, err)
		}
	}
	fmt.Fprintf(stderr, "cleaned %s: %d rows in, %d rows out, written to %s\n",
		o.in, res.Report.RowsIn, res.Report.RowsOut, o.out)
	if o.plan.Persist != "" {
		fmt.Fprintf(stderr, "persisted %d rows to %s\n", res.Persisted, o.plan.Persist)
	}
	return exitOK
}

// fail prints the user-facing message and the underlying error.
func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "datacleaner:", core.FormatUserError(err))
	fmt.Fprintln(stderr, "  cause:", err)
	return exitFail
}
