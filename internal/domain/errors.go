package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Input errors. All of them abort the evaluation run.
var (
	ErrMalformedReportRow = errors.New("malformed report row")
	ErrMalformedRuleRow   = errors.New("malformed rule row")
	ErrUnknownMetricKind  = errors.New("unknown metric kind")

	ErrMissingColumn = errors.New("missing column")
	ErrInvalidCount  = errors.New("count must be an integer between 0 and 2147483647")
	ErrEmptyIdentity = errors.New("identity field cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be a ratio between 0 and 1")
	ErrMissingHeader = errors.New("header row required")
)

// ParseError locates a bad input cell. Row 0 refers to the header; data rows
// are numbered from 1.
type ParseError struct {
	Kind   error
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.Row == 0 {
		b.WriteString("header")
	} else {
		fmt.Fprintf(&b, "row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %s", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Err != nil && e.Err != e.Kind {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	return b.String()
}

// Unwrap exposes both the error category and the underlying cause to errors.Is.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil || e.Err == e.Kind {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsInputError reports whether err belongs to the malformed-input category.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedReportRow) ||
		errors.Is(err, ErrMalformedRuleRow) ||
		errors.Is(err, ErrUnknownMetricKind)
}
