package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RuleResult is the outcome of checking one entry against one rule.
type RuleResult struct {
	Entry   CoverageEntry
	Rule    RuleDefinition
	Counter Counter
	Actual  float64
	Passed  bool
}

// EvaluateRule computes the entry's ratio for the rule's metric and compares
// it to the limit. The comparison covered >= limit*(missed+covered) is done
// in decimal so limits such as 0.8 are exact.
func EvaluateRule(entry CoverageEntry, rule RuleDefinition) RuleResult {
	counter := entry.Counter(rule.Metric)
	covered := decimal.NewFromInt(int64(counter.Covered))
	total := covered.Add(decimal.NewFromInt(int64(counter.Missed)))
	required := rule.Limit.Mul(total)
	return RuleResult{
		Entry:   entry,
		Rule:    rule,
		Counter: counter,
		Actual:  counter.Ratio(),
		Passed:  covered.GreaterThanOrEqual(required),
	}
}

// Shortfall returns how far the actual ratio is below the limit, or 0.
func (r RuleResult) Shortfall() float64 {
	if r.Passed {
		return 0
	}
	return r.Rule.LimitFloat() - r.Actual
}

// Message describes the result for humans.
func (r RuleResult) Message() string {
	if r.Passed {
		return fmt.Sprintf("%s: %s coverage %.1f%% meets limit %.1f%%",
			r.Entry.Name(), r.Rule.Metric, r.Actual*100, r.Rule.LimitFloat()*100)
	}
	return fmt.Sprintf("%s: %s coverage %.1f%% is below limit %.1f%% (rule %s)",
		r.Entry.Name(), r.Rule.Metric, r.Actual*100, r.Rule.LimitFloat()*100, r.Rule.Scope())
}
