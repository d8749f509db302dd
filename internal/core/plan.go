package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DefaultFillValue is used by the fill policy when no value is given.
const DefaultFillValue = "0"

// Plan selects the cleaning stages for one run. It is the shared vocabulary
// of the CLI flags and the HTTP form fields.
//
// With CleanAll set, or when no stage is selected at all, the default order
// runs, followed by any selected stage that is not part of it (case, date,
// regex, currency, split). Otherwise only the selected stages run, in a fixed
// order: clean columns, trim, duplicates, validate, case, date, regex,
// missing, outliers, currency, split.
type Plan struct {
	CleanAll         bool     `json:"clean_all"`
	CleanColumns     bool     `json:"clean_columns"`
	TrimSpaces       bool     `json:"trim_spaces"`
	RemoveDuplicates bool     `json:"remove_duplicates"`
	Subset           []string `json:"subset" validate:"dive,required"`

	ValidateData   bool     `json:"validate_data"`
	NumericColumns []string `json:"numeric" validate:"dive,required"`
	KeepIncomplete bool     `json:"keep_incomplete"`

	ChangeCase  string   `json:"change_case" validate:"omitempty,oneof=lower upper title capitalize"`
	CaseColumns []string `json:"case_columns" validate:"dive,required"`

	StandardizeDate string `json:"standardize_date"`
	DateFormat      string `json:"date_format"`

	RegexColumn      string `json:"regex_column" validate:"required_with=RegexPattern"`
	RegexPattern     string `json:"regex_pattern" validate:"required_with=RegexColumn"`
	RegexReplacement string `json:"regex_replacement"`

	HandleMissing string  `json:"handle_missing" validate:"omitempty,oneof=drop fill"`
	FillValue     *string `json:"fill_value"`

	OutlierMethod   string   `json:"outlier_method" validate:"omitempty,oneof=remove cap flag"`
	OutlierDetector string   `json:"outlier_detector" validate:"omitempty,oneof=zscore iqr"`
	OutlierColumns  []string `json:"outlier_columns" validate:"dive,required"`
	Threshold       float64  `json:"threshold" validate:"gte=0"`

	StandardizeCurrency string `json:"standardize_currency"`

	Split          string   `json:"split"`
	SplitDelimiter string   `json:"split_delimiter"`
	SplitNames     []string `json:"split_names"`

	// Persist names a database table to receive the cleaned rows.
	Persist string `json:"persist" validate:"omitempty,max=63"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field-level constraints. Every problem is reported as a
// *table.PolicyError; several are joined.
func (p *Plan) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	errs := make([]error, 0, len(ves))
	for _, fe := range ves {
		errs = append(errs, &table.PolicyError{
			Stage:  "options",
			Value:  fmt.Sprint(fe.Value()),
			Reason: formatValidationError(fe),
		})
	}
	return errors.Join(errs...)
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s entries must not be empty", field)
	case "required_with":
		return fmt.Sprintf("%s is required with %s", field, strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// selected reports whether any stage was chosen explicitly.
func (p *Plan) selected() bool {
	return p.CleanColumns || p.TrimSpaces || p.RemoveDuplicates || p.ValidateData ||
		p.ChangeCase != "" || p.StandardizeDate != "" || p.RegexColumn != "" ||
		p.HandleMissing != "" || p.OutlierMethod != "" || p.OutlierDetector != "" ||
		p.StandardizeCurrency != "" || p.Split != ""
}

// Options applies the plan's settings on top of defaults.
func (p *Plan) Options(defaults clean.Options) clean.Options {
	opts := defaults
	if len(p.Subset) > 0 {
		opts.Dedupe.Subset = p.Subset
	}
	if len(p.NumericColumns) > 0 {
		opts.Validator.NumericColumns = p.NumericColumns
	}
	if p.KeepIncomplete {
		opts.Validator.KeepIncomplete = true
	}
	if p.HandleMissing != "" {
		opts.Missing = clean.MissingPolicy{Method: p.HandleMissing}
	}
	if opts.Missing.Method == clean.MissingFill && opts.Missing.Fill == nil {
		fill := DefaultFillValue
		if p.FillValue != nil {
			fill = *p.FillValue
		}
		v := table.String(fill)
		opts.Missing.Fill = &v
	}
	if p.OutlierMethod != "" {
		opts.Outliers.Policy = p.OutlierMethod
	}
	if p.OutlierDetector != "" {
		opts.Outliers.Method = p.OutlierDetector
		// let the detector pick its own default cutoff
		if p.Threshold == 0 {
			opts.Outliers.Threshold = 0
		}
	}
	if len(p.OutlierColumns) > 0 {
		opts.Outliers.Columns = p.OutlierColumns
	}
	if p.Threshold > 0 {
		opts.Outliers.Threshold = p.Threshold
	}
	return opts
}

// Pipeline validates the plan and builds the pipeline that executes it.
func (p *Plan) Pipeline(defaults clean.Options, logger *slog.Logger) (*clean.Pipeline, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	opts := p.Options(defaults)
	pipe := clean.NewPipeline(opts, logger)

	var stages []clean.Stage
	all := p.CleanAll || !p.selected()
	if all {
		stages = pipe.DefaultStages()
	} else {
		if p.CleanColumns {
			stages = append(stages, clean.NormalizeColumnsStage())
		}
		if p.TrimSpaces {
			stages = append(stages, clean.TrimStage())
		}
		if p.RemoveDuplicates {
			stages = append(stages, clean.DedupeStage(opts.Dedupe))
		}
		if p.ValidateData {
			stages = append(stages, clean.ValidateStage(opts.Validator))
		}
	}

	if p.ChangeCase != "" {
		op, err := clean.ParseCaseOp(p.ChangeCase)
		if err != nil {
			return nil, err
		}
		stages = append(stages, clean.CaseStage(op, p.CaseColumns...))
	}
	if p.StandardizeDate != "" {
		pattern := p.DateFormat
		if pattern == "" {
			pattern = clean.DefaultDatePattern
		}
		stages = append(stages, clean.DateStage(p.StandardizeDate, pattern))
	}
	if p.RegexColumn != "" {
		stages = append(stages, clean.RegexStage(p.RegexColumn, p.RegexPattern, p.RegexReplacement))
	}
	if !all {
		if p.HandleMissing != "" {
			stages = append(stages, clean.MissingStage(opts.Missing))
		}
		if p.OutlierMethod != "" || p.OutlierDetector != "" {
			stages = append(stages, clean.OutlierStage(opts.Outliers))
		}
	}
	if p.StandardizeCurrency != "" {
		stages = append(stages, clean.CurrencyStage(p.StandardizeCurrency))
	}
	if p.Split != "" {
		delim := p.SplitDelimiter
		if delim == "" {
			delim = clean.DefaultSplitDelimiter
		}
		stages = append(stages, clean.SplitStage(p.Split, delim, p.SplitNames))
	}

	return pipe.Steps(stages...), nil
}

// CleanDefaults converts the configured pipeline policies into options that
// plans start from.
func CleanDefaults(c config.CleanConfig) clean.Options {
	opts := clean.DefaultOptions()
	if len(c.NumericColumns) > 0 {
		opts.Validator.NumericColumns = c.NumericColumns
	}
	opts.Validator.KeepIncomplete = c.KeepIncomplete
	if c.MissingMethod != "" {
		opts.Missing.Method = strings.ToLower(c.MissingMethod)
	}
	if c.OutlierMethod != "" {
		opts.Outliers.Policy = strings.ToLower(c.OutlierMethod)
	}
	if c.OutlierDetector != "" {
		opts.Outliers.Method = strings.ToLower(c.OutlierDetector)
		opts.Outliers.Threshold = c.Threshold
	}
	return opts
}
