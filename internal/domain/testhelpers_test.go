package domain

import "strconv"

// reportRow builds a 13-column report record with the given LINE and BRANCH
// counters; the other kinds are zero.
func reportRow(pkg, class string, lineMissed, lineCovered, branchMissed, branchCovered int) []string {
	itoa := strconv.Itoa
	return []string{
		"app", pkg, class,
		"0", "0",
		itoa(branchMissed), itoa(branchCovered),
		itoa(lineMissed), itoa(lineCovered),
		"0", "0",
		"0", "0",
	}
}

func reportTable(rows ...[]string) Table {
	return Table{Source: "report.csv", Header: ReportColumns(), Rows: rows}
}

func lineRules(rows ...[]string) Table {
	return Table{Source: "rules.csv", Header: RulesHeader(MetricLine), Rows: rows}
}

// ruleRow builds a rules record under a concrete metric header.
func ruleRow(pkg, class, limit string) []string {
	return []string{pkg, class, "", "", limit}
}
