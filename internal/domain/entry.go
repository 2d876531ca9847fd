package domain

import (
	"strconv"
)

// CoverageEntry is one class's measured counters from a coverage report.
type CoverageEntry struct {
	Row     int    `json:"row"`
	Group   string `json:"group"`
	Package string `json:"package"`
	Class   string `json:"class"`
	Counters
}

// Name returns the package-qualified class name.
func (e CoverageEntry) Name() string {
	return e.Package + "." + e.Class
}

// Counter returns the counter for the given metric kind.
func (e CoverageEntry) Counter(kind MetricKind) Counter {
	return e.Counters.Get(kind)
}

// ReportLayout maps coverage report columns to record positions. It is built
// once per table so the header contract is validated a single time.
type ReportLayout struct {
	source  string
	group   int
	pkg     int
	class   int
	missed  [len(metricKinds)]int
	covered [len(metricKinds)]int
}

// NewReportLayout validates a coverage report header. A nil header selects
// the positional layout in ReportColumns order.
func NewReportLayout(source string, header []string) (ReportLayout, error) {
	if header == nil {
		header = reportColumns[:]
	}
	idx := indexHeader(header)
	lookup := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return -1, &ParseError{Kind: ErrMalformedReportRow, Source: source, Column: name, Err: ErrMissingColumn}
		}
		return i, nil
	}

	layout := ReportLayout{source: source}
	var err error
	if layout.group, err = lookup(ColumnGroup); err != nil {
		return ReportLayout{}, err
	}
	if layout.pkg, err = lookup(ColumnPackage); err != nil {
		return ReportLayout{}, err
	}
	if layout.class, err = lookup(ColumnClass); err != nil {
		return ReportLayout{}, err
	}
	for i, kind := range metricKinds {
		if layout.missed[i], err = lookup(kind.MissedColumn()); err != nil {
			return ReportLayout{}, err
		}
		if layout.covered[i], err = lookup(kind.CoveredColumn()); err != nil {
			return ReportLayout{}, err
		}
	}
	return layout, nil
}

// Parse converts one data record into a CoverageEntry. row is the 1-based
// data row number used in error messages.
func (l ReportLayout) Parse(row int, record []string) (CoverageEntry, error) {
	entry := CoverageEntry{Row: row}

	identity := []struct {
		column string
		pos    int
		dst    *string
	}{
		{ColumnGroup, l.group, &entry.Group},
		{ColumnPackage, l.pkg, &entry.Package},
		{ColumnClass, l.class, &entry.Class},
	}
	for _, field := range identity {
		value, ok := cell(record, field.pos)
		if !ok {
			return CoverageEntry{}, l.rowError(row, field.column, "", ErrMissingColumn)
		}
		if value == "" {
			return CoverageEntry{}, l.rowError(row, field.column, "", ErrEmptyIdentity)
		}
		*field.dst = value
	}

	for i, kind := range metricKinds {
		missed, err := l.count(row, record, kind.MissedColumn(), l.missed[i])
		if err != nil {
			return CoverageEntry{}, err
		}
		covered, err := l.count(row, record, kind.CoveredColumn(), l.covered[i])
		if err != nil {
			return CoverageEntry{}, err
		}
		entry.Counters = entry.Counters.With(kind, Counter{Missed: missed, Covered: covered})
	}
	return entry, nil
}

func (l ReportLayout) count(row int, record []string, column string, pos int) (int, error) {
	value, ok := cell(record, pos)
	if !ok {
		return 0, l.rowError(row, column, "", ErrMissingColumn)
	}
	// JaCoCo counters are Java ints.
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil || n < 0 {
		return 0, l.rowError(row, column, value, ErrInvalidCount)
	}
	return int(n), nil
}

func (l ReportLayout) rowError(row int, column, value string, cause error) error {
	return &ParseError{
		Kind:   ErrMalformedReportRow,
		Source: l.source,
		Row:    row,
		Column: column,
		Value:  value,
		Err:    cause,
	}
}

// ParseReport parses every data row of a coverage table, stopping at the
// first malformed row.
func ParseReport(table Table) ([]CoverageEntry, error) {
	return Engine{}.ParseReport(table)
}
