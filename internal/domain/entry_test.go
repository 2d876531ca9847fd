package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReport(t *testing.T) {
	entries, err := ParseReport(reportTable(
		reportRow("com.a", "X", 1, 9, 2, 2),
		[]string{"", " ", ""},
		reportRow("com.b", "Y", 0, 0, 0, 0),
	))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "com.a.X", entries[0].Name())
	assert.Equal(t, 1, entries[0].Row)
	assert.Equal(t, Counter{Missed: 1, Covered: 9}, entries[0].Counter(MetricLine))
	assert.Equal(t, Counter{Missed: 2, Covered: 2}, entries[0].Counter(MetricBranch))
	assert.Equal(t, 3, entries[1].Row, "blank rows keep numbering")
}

func TestParseReportHeaderOrder(t *testing.T) {
	header := ReportColumns()
	// Swap CLASS and PACKAGE; lookup is by name, not position.
	header[1], header[2] = header[2], header[1]
	header[0] = "\ufeffgroup"
	table := Table{Header: header, Rows: [][]string{reportRow("X", "com.a", 0, 1, 0, 0)}}

	entries, err := ParseReport(table)
	require.NoError(t, err)
	assert.Equal(t, "com.a", entries[0].Package)
	assert.Equal(t, "X", entries[0].Class)
}

func TestParseReportPositional(t *testing.T) {
	entries, err := ParseReport(Table{Rows: [][]string{reportRow("com.a", "X", 0, 1, 0, 0)}})
	require.NoError(t, err)
	assert.Equal(t, "com.a", entries[0].Package)
}

func TestParseReportErrors(t *testing.T) {
	tests := []struct {
		name   string
		table  Table
		cause  error
		row    int
		column string
	}{
		{
			name:   "missing header column",
			table:  Table{Source: "r.csv", Header: ReportColumns()[:12]},
			cause:  ErrMissingColumn,
			column: "METHOD_COVERED",
		},
		{
			name:   "short row",
			table:  reportTable([]string{"app", "com.a", "X"}),
			cause:  ErrMissingColumn,
			row:    1,
			column: "INSTRUCTION_MISSED",
		},
		{
			name: "negative count",
			table: reportTable(
				reportRow("com.a", "X", 0, 1, 0, 0),
				reportRow("com.a", "Y", -1, 1, 0, 0),
			),
			cause:  ErrInvalidCount,
			row:    2,
			column: "LINE_MISSED",
		},
		{
			name:   "non-numeric count",
			table:  reportTable(func() []string { r := reportRow("com.a", "X", 0, 1, 0, 0); r[8] = "many"; return r }()),
			cause:  ErrInvalidCount,
			row:    1,
			column: "LINE_COVERED",
		},
		{
			name:   "count wider than 32 bits",
			table:  reportTable(func() []string { r := reportRow("com.a", "X", 0, 1, 0, 0); r[7] = "2147483648"; return r }()),
			cause:  ErrInvalidCount,
			row:    1,
			column: "LINE_MISSED",
		},
		{
			name:   "count at int64 maximum",
			table:  reportTable(func() []string { r := reportRow("com.a", "X", 0, 1, 0, 0); r[7] = "9223372036854775807"; return r }()),
			cause:  ErrInvalidCount,
			row:    1,
			column: "LINE_MISSED",
		},
		{
			name:   "empty class",
			table:  reportTable(reportRow("com.a", "", 0, 1, 0, 0)),
			cause:  ErrEmptyIdentity,
			row:    1,
			column: "CLASS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReport(tt.table)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedReportRow)
			assert.ErrorIs(t, err, tt.cause)
			assert.True(t, IsInputError(err))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.row, perr.Row)
			assert.Equal(t, tt.column, perr.Column)
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{
		Kind:   ErrMalformedRuleRow,
		Source: "rules.csv",
		Row:    3,
		Column: "LIMIT",
		Value:  "high",
		Err:    ErrInvalidLimit,
	}
	assert.Equal(t, `rules.csv: row 3, column LIMIT: malformed rule row: limit must be a ratio between 0 and 1 (value "high")`, err.Error())

	header := &ParseError{Kind: ErrMalformedReportRow, Column: "CLASS", Err: ErrMissingColumn}
	assert.Equal(t, "header, column CLASS: malformed report row: missing column", header.Error())
}
