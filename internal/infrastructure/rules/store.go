// Package rules reads and writes rules tables as CSV files.
package rules

import (
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/csvtable"
)

// Reader reads rules tables. The header row is mandatory.
type Reader struct{}

func (Reader) Read(path string) (domain.Table, error) {
	return csvtable.Read(path, csvtable.HeaderRequired)
}

// Writer writes rules under the concrete header of one metric kind.
type Writer struct{}

// Write renders rules as PACKAGE, CLASS, <KIND>_MISSED, <KIND>_COVERED, LIMIT.
// The count columns are left empty.
func (Writer) Write(path string, metric domain.MetricKind, rules []domain.RuleDefinition) error {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.Package.String(), r.Class.String(), "", "", r.Limit.String()})
	}
	return csvtable.Write(path, domain.RulesHeader(metric), rows)
}
