package domain

import "fmt"

// Verdict is the final outcome of one evaluation run.
type Verdict struct {
	Passed     bool
	Entries    int
	Rules      int
	Results    []RuleResult
	Violations []RuleResult
}

// Aggregate combines ordered results into a verdict. It passes iff every
// result passed, which includes the case of no results at all.
func Aggregate(results []RuleResult) Verdict {
	v := Verdict{Passed: true, Results: results}
	for _, r := range results {
		if !r.Passed {
			v.Passed = false
			v.Violations = append(v.Violations, r)
		}
	}
	return v
}

// EvaluatedCount returns the number of (entry, rule) checks performed.
func (v Verdict) EvaluatedCount() int {
	return len(v.Results)
}

// FailingCount returns the number of violations.
func (v Verdict) FailingCount() int {
	return len(v.Violations)
}

// PassingCount returns the number of passing checks.
func (v Verdict) PassingCount() int {
	return len(v.Results) - len(v.Violations)
}

// Summary returns a brief summary of the verdict.
func (v Verdict) Summary() string {
	if v.Passed {
		return fmt.Sprintf("All coverage rules met (%d checks)", v.EvaluatedCount())
	}
	return fmt.Sprintf("Coverage rules violated: %d of %d checks failed", v.FailingCount(), v.EvaluatedCount())
}

// ViolationMessages renders each violation in order.
func (v Verdict) ViolationMessages() []string {
	msgs := make([]string, 0, len(v.Violations))
	for _, r := range v.Violations {
		msgs = append(msgs, r.Message())
	}
	return msgs
}
