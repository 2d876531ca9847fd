package domain

import "fmt"

// Column names shared by coverage reports and rules tables. Changes to the
// upstream report format are absorbed here.
const (
	ColumnGroup   = "GROUP"
	ColumnPackage = "PACKAGE"
	ColumnClass   = "CLASS"
	ColumnLimit   = "LIMIT"
	ColumnMetric  = "METRIC"

	MissedSuffix  = "_MISSED"
	CoveredSuffix = "_COVERED"

	// GenericMetricPrefix is the placeholder prefix of a rules table whose
	// metric kind is given per row in the METRIC column.
	GenericMetricPrefix = "ABC"
)

var reportColumns = [...]string{
	ColumnGroup,
	ColumnPackage,
	ColumnClass,
	"INSTRUCTION_MISSED",
	"INSTRUCTION_COVERED",
	"BRANCH_MISSED",
	"BRANCH_COVERED",
	"LINE_MISSED",
	"LINE_COVERED",
	"COMPLEXITY_MISSED",
	"COMPLEXITY_COVERED",
	"METHOD_MISSED",
	"METHOD_COVERED",
}

// ruleMetricKinds are the metric prefixes a rules table may reference.
var ruleMetricKinds = [...]MetricKind{MetricLine, MetricBranch}

// ReportColumns returns the expected coverage report header, in order.
func ReportColumns() []string {
	cols := make([]string, len(reportColumns))
	copy(cols, reportColumns[:])
	return cols
}

// RuleMetricKinds returns the metric kinds rules may be declared for.
func RuleMetricKinds() []MetricKind {
	kinds := make([]MetricKind, len(ruleMetricKinds))
	copy(kinds, ruleMetricKinds[:])
	return kinds
}

// RulesHeader expands the rules column template for a concrete metric kind,
// e.g. PACKAGE, CLASS, LINE_MISSED, LINE_COVERED, LIMIT.
func RulesHeader(kind MetricKind) []string {
	return []string{ColumnPackage, ColumnClass, kind.MissedColumn(), kind.CoveredColumn(), ColumnLimit}
}

// GenericRulesHeader returns the placeholder rules header followed by the
// METRIC column that carries each row's metric kind.
func GenericRulesHeader() []string {
	return []string{
		ColumnPackage,
		ColumnClass,
		GenericMetricPrefix + MissedSuffix,
		GenericMetricPrefix + CoveredSuffix,
		ColumnLimit,
		ColumnMetric,
	}
}

// ParseRuleMetricKind resolves a metric token used in a rules table. Only the
// rules-format prefixes are accepted.
func ParseRuleMetricKind(token string) (MetricKind, error) {
	kind, err := ParseMetricKind(token)
	if err != nil {
		return "", err
	}
	for _, allowed := range ruleMetricKinds {
		if kind == allowed {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a rule metric", ErrUnknownMetricKind, token)
}
