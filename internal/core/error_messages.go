package core

// # Error Codes Reference
//
// This file maps technical errors to user-facing messages with codes for
// support reference. Typed errors are matched with errors.Is first; anything
// left is matched against message patterns.
//
// # Table Errors (COL, POL, TYP)
//
//	COL001 - Column not found: a named column does not exist in the table
//	         Action: Check the column names in your file (after normalization)
//	POL001 - Invalid option: a stage was given an unknown method or bad setting
//	         Action: Check the option values
//	TYP001 - Conversion failed: a value could not be converted to the column type
//	         Action: Fix or remove the offending value
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV: rows have more fields than the header
//	FILE003 - Unsupported format: extension is not csv, tsv, xlsx or json
//	FILE004 - No file: the request carried no file
//	FILE005 - Empty file: no header row
//	FILE006 - Invalid JSON: not an array of objects
//	FILE007 - Encoding error
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused     Patterns: "connection refused"
//	DB002 - Connection reset       Patterns: "connection reset"
//	DB003 - Database not configured
//	DB004 - Timeout                Patterns: "timeout"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run cancelled (context.Canceled)
//	RUN002 - Run timed out (context.DeadlineExceeded)
//	RUN003 - System busy (ErrTooManyRuns)
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests    Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the original error.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
	"github.com/JonMunkholm/datacleaner/internal/tableio"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrDatabaseDisabled is returned when persistence is requested without a database.
	ErrDatabaseDisabled = errors.New("database not configured")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{table.ErrColumnNotFound, UserMessage{
		Message: "Column not found",
		Action:  "Check the column names in your file; names are normalized to lower_snake_case",
		Code:    "COL001",
	}},
	{table.ErrInvalidPolicy, UserMessage{
		Message: "Invalid cleaning option",
		Action:  "Check the option values and try again",
		Code:    "POL001",
	}},
	{table.ErrTypeCoercion, UserMessage{
		Message: "A value could not be converted",
		Action:  "Fix or remove the offending value, or fill missing values with a compatible value",
		Code:    "TYP001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{tableio.ErrInvalidCSV, UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure every row has no more fields than the header",
		Code:    "FILE002",
	}},
	{tableio.ErrUnsupportedFormat, UserMessage{
		Message: "Unsupported file format",
		Action:  "Use a .csv, .tsv, .xlsx or .json file, optionally gzipped",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to clean",
		Code:    "FILE004",
	}},
	{tableio.ErrEmptyFile, UserMessage{
		Message: "The file is empty",
		Action:  "Please provide a file with a header row",
		Code:    "FILE005",
	}},
	{tableio.ErrInvalidJSON, UserMessage{
		Message: "File is not valid JSON records",
		Action:  "Provide a JSON array of objects",
		Code:    "FILE006",
	}},
	{ErrDatabaseDisabled, UserMessage{
		Message: "Database is not configured",
		Action:  "Set DATABASE_URL to persist cleaned tables",
		Code:    "DB003",
	}},
	{context.Canceled, UserMessage{
		Message: "Run was cancelled",
		Action:  "Please try again",
		Code:    "RUN001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Run timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "RUN002",
	}},
	{ErrTooManyRuns, UserMessage{
		Message: "System busy",
		Action:  "Please wait a moment and try again",
		Code:    "RUN003",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched case-insensitively with strings.Contains after
// errorKinds. The first match wins.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB002",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB004",
	}},
	{"encoding", UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE007",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
