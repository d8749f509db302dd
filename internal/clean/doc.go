// Package clean implements the table cleaning stages and the pipeline that
// composes them.
//
// Every stage is a pure transformation from one *table.Table to another. The
// input is never mutated; a stage either returns a new table or an error, and
// on error the caller must discard any partial work. Stages can be called on
// their own or through [Pipeline], whose [Pipeline.CleanAll] runs the fixed
// default order:
//
//  1. Column names: trim, lowercase, whitespace to underscore
//  2. Trim whitespace in text cells
//  3. Remove duplicate rows (full-row comparison)
//  4. Validate: numeric coercion, then drop incomplete rows
//  5. Missing values: drop (default) or fill
//  6. Outliers: z-score remove (default), cap, or flag
//
// # Policies
//
// Where the behavior is a choice, it is fixed per stage:
//
//   - Validator: cells that fail numeric coercion in a designated numeric
//     column become absent, never an error.
//   - StandardizeDate: unparsable dates become absent.
//   - StandardizeCurrency: an unparsable amount is a hard *table.CoercionError.
//   - RemoveDuplicates: absent cells never match, unless NullsEqual is set.
//   - ColumnNamer: colliding names get _2, _3, ... suffixes.
//
// # Errors
//
// Stages return the kinds defined in package table (ErrColumnNotFound,
// ErrInvalidPolicy, ErrTypeCoercion); test them with errors.Is.
package clean
