package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T, tables ...Table) []RuleDefinition {
	t.Helper()
	rules, err := ParseRules(tables...)
	require.NoError(t, err)
	return rules
}

func TestMatcherMostSpecificWins(t *testing.T) {
	rules := mustRules(t, lineRules(
		ruleRow("com.*", "", "0.5"),
		ruleRow("com.a", "X", "0.9"),
		ruleRow("com.a", "", "0.7"),
	))
	entry := CoverageEntry{Package: "com.a", Class: "X"}

	m := NewMatcher(rules)
	assert.Len(t, m.Candidates(entry), 3)

	got := m.Match(entry)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
}

func TestMatcherTieBreaksOnDeclarationOrder(t *testing.T) {
	rules := mustRules(t, lineRules(
		ruleRow("com.a*", "", "0.5"),
		ruleRow("com.*a", "", "0.9"),
	))
	entry := CoverageEntry{Package: "com.a", Class: "X"}

	got := NewMatcher(rules).Match(entry)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index, "equal specificity keeps the earlier rule")

	reversed := []RuleDefinition{rules[1], rules[0]}
	got = NewMatcher(reversed).Match(entry)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index, "winner depends on Index, not slice position")
}

func TestMatcherOneWinnerPerMetric(t *testing.T) {
	rules := mustRules(t,
		lineRules(ruleRow("com.a", "", "0.8")),
		Table{Header: RulesHeader(MetricBranch), Rows: [][]string{
			ruleRow("com.*", "", "0.5"),
			ruleRow("com.a", "X", "0.6"),
		}},
	)
	got := NewMatcher(rules).Match(CoverageEntry{Package: "com.a", Class: "X"})
	require.Len(t, got, 2)
	assert.Equal(t, MetricLine, got[0].Metric)
	assert.Equal(t, MetricBranch, got[1].Metric)
	assert.Equal(t, 2, got[1].Index)
}

func TestMatcherNoMatch(t *testing.T) {
	rules := mustRules(t, lineRules(ruleRow("com.foo", "", "0.8")))
	m := NewMatcher(rules)
	entries := []CoverageEntry{{Package: "com.foobar", Class: "X"}}

	assert.Empty(t, m.Match(entries[0]))
	assert.Equal(t, rules, m.Unused(entries))
}
