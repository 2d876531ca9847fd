package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Wildcard matches zero or more characters in a scope pattern.
const Wildcard = "*"

var (
	limitMin = decimal.Zero
	limitMax = decimal.NewFromInt(1)
)

// Pattern is a compiled package or class scope. An empty pattern matches
// everything; otherwise matching is anchored to the whole name.
type Pattern struct {
	raw      string
	re       *regexp.Regexp
	literals int
}

// CompilePattern compiles a scope pattern where '*' is the only wildcard and
// every other character is literal.
func CompilePattern(raw string) Pattern {
	raw = strings.TrimSpace(raw)
	p := Pattern{raw: raw}
	if raw == "" {
		return p
	}
	p.literals = utf8.RuneCountInString(strings.ReplaceAll(raw, Wildcard, ""))
	if !strings.Contains(raw, Wildcard) {
		return p
	}
	parts := strings.Split(raw, Wildcard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	p.re = regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
	return p
}

// Match reports whether name is fully matched by the pattern.
func (p Pattern) Match(name string) bool {
	switch {
	case p.raw == "":
		return true
	case p.re == nil:
		return p.raw == name
	default:
		return p.re.MatchString(name)
	}
}

// IsEmpty returns true for the match-everything pattern.
func (p Pattern) IsEmpty() bool {
	return p.raw == ""
}

// Literals returns the number of non-wildcard characters.
func (p Pattern) Literals() int {
	return p.literals
}

func (p Pattern) String() string {
	return p.raw
}

// RuleDefinition is one declared minimum ratio for a metric over a scope.
type RuleDefinition struct {
	// Index is the declaration order across all rule sources.
	Index   int
	Source  string
	Row     int
	Package Pattern
	Class   Pattern
	Metric  MetricKind
	Limit   decimal.Decimal
}

// NewRuleDefinition builds a rule from raw values, validating the limit.
func NewRuleDefinition(pkg, class string, metric MetricKind, limit decimal.Decimal) (RuleDefinition, error) {
	if limit.LessThan(limitMin) || limit.GreaterThan(limitMax) {
		return RuleDefinition{}, ErrInvalidLimit
	}
	return RuleDefinition{
		Package: CompilePattern(pkg),
		Class:   CompilePattern(class),
		Metric:  metric,
		Limit:   limit,
	}, nil
}

// ParseLimit parses a LIMIT cell as a ratio in [0,1].
func ParseLimit(value string) (decimal.Decimal, error) {
	limit, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidLimit
	}
	if limit.LessThan(limitMin) || limit.GreaterThan(limitMax) {
		return decimal.Decimal{}, ErrInvalidLimit
	}
	return limit, nil
}

// LimitFloat returns the limit as a float64 for display.
func (r RuleDefinition) LimitFloat() float64 {
	return r.Limit.InexactFloat64()
}

// Scope renders the package/class scope, e.g. "com.acme.*" or "com.acme.Foo".
func (r RuleDefinition) Scope() string {
	pkg := r.Package.String()
	if pkg == "" {
		pkg = Wildcard
	}
	if r.Class.IsEmpty() {
		return pkg
	}
	return pkg + "." + r.Class.String()
}

func (r RuleDefinition) String() string {
	return fmt.Sprintf("%s %s >= %s", r.Scope(), r.Metric, r.Limit.String())
}

// Specificity ranks how narrowly a rule is scoped.
type Specificity struct {
	ClassScoped bool
	Literals    int
}

// Specificity returns the rule's scope ranking.
func (r RuleDefinition) Specificity() Specificity {
	return Specificity{
		ClassScoped: !r.Class.IsEmpty(),
		Literals:    r.Package.Literals() + r.Class.Literals(),
	}
}

// MoreSpecificThan reports whether s strictly outranks other: a class-scoped
// rule beats a package-level one, then more literal characters win.
func (s Specificity) MoreSpecificThan(other Specificity) bool {
	if s.ClassScoped != other.ClassScoped {
		return s.ClassScoped
	}
	return s.Literals > other.Literals
}

// Applies reports whether the rule's scope covers the entry.
func (r RuleDefinition) Applies(entry CoverageEntry) bool {
	return r.Package.Match(entry.Package) && r.Class.Match(entry.Class)
}

// RuleLayout maps rules table columns to record positions.
type RuleLayout struct {
	source string
	pkg    int
	class  int
	limit  int
	metric int
	// fixed is set when the header names a concrete metric pair.
	fixed MetricKind
}

// NewRuleLayout validates a rules header. The header must name PACKAGE,
// CLASS, LIMIT and exactly one <PREFIX>_MISSED/<PREFIX>_COVERED pair. The
// placeholder pair ABC_MISSED/ABC_COVERED requires a METRIC column.
func NewRuleLayout(source string, header []string) (RuleLayout, error) {
	if header == nil {
		return RuleLayout{}, &ParseError{Kind: ErrMalformedRuleRow, Source: source, Err: ErrMissingHeader}
	}
	idx := indexHeader(header)
	headerErr := func(column string, kind, cause error) error {
		return &ParseError{Kind: kind, Source: source, Column: column, Err: cause}
	}

	layout := RuleLayout{source: source, metric: -1}
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{ColumnPackage, &layout.pkg},
		{ColumnClass, &layout.class},
		{ColumnLimit, &layout.limit},
	} {
		i, ok := idx[col.name]
		if !ok {
			return RuleLayout{}, headerErr(col.name, ErrMalformedRuleRow, ErrMissingColumn)
		}
		*col.dst = i
	}

	var prefixes []string
	for _, name := range header {
		name = normalizeColumn(name)
		prefix, ok := strings.CutSuffix(name, MissedSuffix)
		if !ok || prefix == "" {
			continue
		}
		if !slices.Contains(prefixes, prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	switch len(prefixes) {
	case 0:
		return RuleLayout{}, headerErr("<PREFIX>"+MissedSuffix, ErrMalformedRuleRow, ErrMissingColumn)
	case 1:
	default:
		return RuleLayout{}, headerErr(strings.Join(prefixes, ","), ErrMalformedRuleRow,
			fmt.Errorf("expected a single metric column pair, found %d", len(prefixes)))
	}
	prefix := prefixes[0]
	if _, ok := idx[prefix+CoveredSuffix]; !ok {
		return RuleLayout{}, headerErr(prefix+CoveredSuffix, ErrMalformedRuleRow, ErrMissingColumn)
	}

	if prefix == GenericMetricPrefix {
		i, ok := idx[ColumnMetric]
		if !ok {
			return RuleLayout{}, headerErr(ColumnMetric, ErrMalformedRuleRow, ErrMissingColumn)
		}
		layout.metric = i
		return layout, nil
	}

	kind, err := ParseRuleMetricKind(prefix)
	if err != nil {
		return RuleLayout{}, headerErr(prefix+MissedSuffix, ErrUnknownMetricKind, err)
	}
	layout.fixed = kind
	return layout, nil
}

// Parse converts one rules record into a RuleDefinition. Values under the
// metric MISSED/COVERED columns are not used.
func (l RuleLayout) Parse(row int, record []string) (RuleDefinition, error) {
	pkg, ok := cell(record, l.pkg)
	if !ok {
		return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnPackage, "", ErrMissingColumn)
	}
	class, ok := cell(record, l.class)
	if !ok {
		return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnClass, "", ErrMissingColumn)
	}

	metric := l.fixed
	if l.metric >= 0 {
		token, ok := cell(record, l.metric)
		if !ok || token == "" {
			return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnMetric, "", ErrMissingColumn)
		}
		kind, err := ParseRuleMetricKind(token)
		if err != nil {
			return RuleDefinition{}, l.rowError(ErrUnknownMetricKind, row, ColumnMetric, token, err)
		}
		metric = kind
	}

	raw, ok := cell(record, l.limit)
	if !ok || raw == "" {
		return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnLimit, "", ErrMissingColumn)
	}
	limit, err := ParseLimit(raw)
	if err != nil {
		return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnLimit, raw, err)
	}

	rule, err := NewRuleDefinition(pkg, class, metric, limit)
	if err != nil {
		return RuleDefinition{}, l.rowError(ErrMalformedRuleRow, row, ColumnLimit, raw, err)
	}
	rule.Source = l.source
	rule.Row = row
	return rule, nil
}

func (l RuleLayout) rowError(kind error, row int, column, value string, cause error) error {
	return &ParseError{Kind: kind, Source: l.source, Row: row, Column: column, Value: value, Err: cause}
}

// ParseRules parses rules tables in order. Declaration indexes run across
// all tables, so earlier tables win specificity ties.
func ParseRules(tables ...Table) ([]RuleDefinition, error) {
	var rules []RuleDefinition
	for _, table := range tables {
		layout, err := NewRuleLayout(table.Source, table.Header)
		if err != nil {
			return nil, err
		}
		for i, record := range table.Rows {
			if isBlank(record) {
				continue
			}
			rule, err := layout.Parse(i+1, record)
			if err != nil {
				return nil, err
			}
			rule.Index = len(rules)
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
