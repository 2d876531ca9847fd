package domain

import "slices"

// Matcher resolves the rules that govern each coverage entry.
// It never mutates its rules and is safe for concurrent use.
type Matcher struct {
	rules []RuleDefinition
}

// NewMatcher creates a matcher over rules in declaration order.
func NewMatcher(rules []RuleDefinition) Matcher {
	return Matcher{rules: rules}
}

// Candidates returns every rule whose scope covers the entry, in declaration order.
func (m Matcher) Candidates(entry CoverageEntry) []RuleDefinition {
	var out []RuleDefinition
	for _, rule := range m.rules {
		if rule.Applies(entry) {
			out = append(out, rule)
		}
	}
	return out
}

// Match returns at most one rule per metric kind: the most specific applicable
// rule, with ties going to the earliest declaration. The result is ordered by
// declaration index.
func (m Matcher) Match(entry CoverageEntry) []RuleDefinition {
	// winners holds rule position + 1 per metric kind; 0 means no rule.
	var winners [len(metricKinds)]int
	found := 0
	for i, rule := range m.rules {
		if !rule.Applies(entry) {
			continue
		}
		k := kindIndex(rule.Metric)
		if k < 0 {
			continue
		}
		if winners[k] == 0 {
			found++
			winners[k] = i + 1
		} else if outranks(rule, m.rules[winners[k]-1]) {
			winners[k] = i + 1
		}
	}
	if found == 0 {
		return nil
	}

	positions := make([]int, 0, found)
	for _, pos := range winners {
		if pos > 0 {
			positions = append(positions, pos-1)
		}
	}
	slices.Sort(positions)

	out := make([]RuleDefinition, len(positions))
	for i, pos := range positions {
		out[i] = m.rules[pos]
	}
	return out
}

// Unused returns the rules that apply to none of the entries.
func (m Matcher) Unused(entries []CoverageEntry) []RuleDefinition {
	var unused []RuleDefinition
	for _, rule := range m.rules {
		used := false
		for _, entry := range entries {
			if rule.Applies(entry) {
				used = true
				break
			}
		}
		if !used {
			unused = append(unused, rule)
		}
	}
	return unused
}

// outranks reports whether candidate replaces incumbent. Equal specificity
// keeps the incumbent, which was declared first.
func outranks(candidate, incumbent RuleDefinition) bool {
	cs, is := candidate.Specificity(), incumbent.Specificity()
	if cs.MoreSpecificThan(is) {
		return true
	}
	if is.MoreSpecificThan(cs) {
		return false
	}
	return candidate.Index < incumbent.Index
}
