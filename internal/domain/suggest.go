package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// SuggestStrategy selects how suggested limits relate to current coverage.
type SuggestStrategy string

const (
	// SuggestCurrent proposes current coverage minus a 2 point buffer.
	SuggestCurrent SuggestStrategy = "current"
	// SuggestAggressive proposes current coverage plus 5 points, capped at 95%.
	SuggestAggressive SuggestStrategy = "aggressive"
	// SuggestConservative proposes current coverage minus 5 points.
	SuggestConservative SuggestStrategy = "conservative"
)

// ParseSuggestStrategy resolves a strategy name; empty selects SuggestCurrent.
func ParseSuggestStrategy(name string) (SuggestStrategy, error) {
	switch SuggestStrategy(name) {
	case "", SuggestCurrent:
		return SuggestCurrent, nil
	case SuggestAggressive, SuggestConservative:
		return SuggestStrategy(name), nil
	default:
		return "", fmt.Errorf("unknown suggest strategy %q", name)
	}
}

// Suggestion is a proposed package-level rule.
type Suggestion struct {
	Package string          `json:"package"`
	Metric  MetricKind      `json:"metric"`
	Current float64         `json:"current"`
	Limit   decimal.Decimal `json:"limit"`
	Reason  string          `json:"reason"`
}

// Rule converts the suggestion into a rule definition.
func (s Suggestion) Rule() RuleDefinition {
	return RuleDefinition{
		Package: CompilePattern(s.Package),
		Class:   CompilePattern(""),
		Metric:  s.Metric,
		Limit:   s.Limit,
	}
}

// SuggestRules proposes one package-level rule per package for metric,
// ordered by package name. Packages with nothing to cover are skipped.
func SuggestRules(entries []CoverageEntry, metric MetricKind, strategy SuggestStrategy) []Suggestion {
	totals := PackageTotals(entries)
	pkgs := make([]string, 0, len(totals))
	for pkg, counters := range totals {
		if counters.Get(metric).IsEmpty() {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	out := make([]Suggestion, 0, len(pkgs))
	for _, pkg := range pkgs {
		current := totals[pkg].Get(metric).Percent()
		percent, reason := suggestPercent(current, strategy)
		out = append(out, Suggestion{
			Package: pkg,
			Metric:  metric,
			Current: Round1(current),
			Limit:   decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)),
			Reason:  reason,
		})
	}
	return out
}

// suggestPercent returns a limit in percent, truncated to one decimal place.
func suggestPercent(current float64, strategy SuggestStrategy) (float64, string) {
	switch strategy {
	case SuggestAggressive:
		if current >= 95 {
			return floor1(current), "already at or above aggressive target"
		}
		return floor1(math.Min(current+5, 95)), "push for improvement (+5%)"
	case SuggestConservative:
		return floor1(math.Max(current-5, 0)), "gradual improvement target (-5%)"
	default:
		return floor1(math.Max(current-2, 0)), "based on current coverage (-2% buffer)"
	}
}

func floor1(v float64) float64 {
	return math.Floor(v*10) / 10
}
