package domain

import (
	"golang.org/x/sync/errgroup"
)

// Engine evaluates coverage tables against rules tables. The zero value
// evaluates sequentially.
type Engine struct {
	// Workers bounds per-entry parallelism. Values <= 1 run sequentially.
	Workers int
}

// Evaluate parses the rules and the coverage report and checks every entry
// against the most specific rule for each metric kind. The first malformed
// row aborts the run; no partial verdict is returned.
func Evaluate(coverage Table, rules ...Table) (Verdict, error) {
	return Engine{}.Evaluate(coverage, rules...)
}

// Evaluate is the Engine form of the package-level Evaluate.
func (e Engine) Evaluate(coverage Table, rules ...Table) (Verdict, error) {
	run, err := e.Run(coverage, rules...)
	if err != nil {
		return Verdict{}, err
	}
	return run.Verdict, nil
}

// Run is one evaluation together with the inputs it was computed from.
type Run struct {
	Verdict Verdict
	Entries []CoverageEntry
	Rules   []RuleDefinition
}

// Unused returns the rules that matched no entry in this run.
func (r Run) Unused() []RuleDefinition {
	return NewMatcher(r.Rules).Unused(r.Entries)
}

// Run evaluates like Evaluate and also returns the parsed entries and rules.
// Rules are parsed before the report, so a malformed rule is reported even
// when the report is also malformed.
func (e Engine) Run(coverage Table, rules ...Table) (Run, error) {
	defs, err := ParseRules(rules...)
	if err != nil {
		return Run{}, err
	}
	layout, err := NewReportLayout(coverage.Source, coverage.Header)
	if err != nil {
		return Run{}, err
	}

	matcher := NewMatcher(defs)
	rows := nonBlankRows(coverage.Rows)
	entries := make([]CoverageEntry, len(rows))
	perEntry := make([][]RuleResult, len(rows))

	err = e.forEach(len(rows), func(i int) error {
		entry, err := layout.Parse(rows[i].row, rows[i].record)
		if err != nil {
			return err
		}
		entries[i] = entry
		perEntry[i] = evaluateEntry(matcher, entry)
		return nil
	})
	if err != nil {
		return Run{}, err
	}

	return Run{
		Verdict: merge(perEntry, len(rows), len(defs)),
		Entries: entries,
		Rules:   defs,
	}, nil
}

// EvaluateEntries checks already parsed entries against rules.
func (e Engine) EvaluateEntries(entries []CoverageEntry, rules []RuleDefinition) Verdict {
	matcher := NewMatcher(rules)
	perEntry := make([][]RuleResult, len(entries))
	_ = e.forEach(len(entries), func(i int) error {
		perEntry[i] = evaluateEntry(matcher, entries[i])
		return nil
	})

	return merge(perEntry, len(entries), len(rules))
}

// ParseReport parses every non-blank data row of a coverage table.
func (e Engine) ParseReport(table Table) ([]CoverageEntry, error) {
	layout, err := NewReportLayout(table.Source, table.Header)
	if err != nil {
		return nil, err
	}
	rows := nonBlankRows(table.Rows)
	entries := make([]CoverageEntry, len(rows))
	err = e.forEach(len(rows), func(i int) error {
		entry, err := layout.Parse(rows[i].row, rows[i].record)
		if err != nil {
			return err
		}
		entries[i] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// forEach runs fn for 0..n-1, either inline or on a bounded errgroup. Every
// index runs to completion so the reported error is always the one with the
// lowest index, matching a sequential run.
func (e Engine) forEach(n int, fn func(i int) error) error {
	if e.Workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, n)
	var g errgroup.Group
	g.SetLimit(e.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// merge flattens per-entry results in entry order and aggregates them.
func merge(perEntry [][]RuleResult, entries, rules int) Verdict {
	var results []RuleResult
	for _, r := range perEntry {
		results = append(results, r...)
	}
	verdict := Aggregate(results)
	verdict.Entries = entries
	verdict.Rules = rules
	return verdict
}

func evaluateEntry(matcher Matcher, entry CoverageEntry) []RuleResult {
	rules := matcher.Match(entry)
	if len(rules) == 0 {
		return nil
	}
	results := make([]RuleResult, len(rules))
	for i, rule := range rules {
		results[i] = EvaluateRule(entry, rule)
	}
	return results
}

type numberedRow struct {
	row    int
	record []string
}

// nonBlankRows drops empty records while keeping their 1-based row numbers.
func nonBlankRows(records [][]string) []numberedRow {
	rows := make([]numberedRow, 0, len(records))
	for i, record := range records {
		if isBlank(record) {
			continue
		}
		rows = append(rows, numberedRow{row: i + 1, record: record})
	}
	return rows
}
