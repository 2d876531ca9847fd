package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricKind(t *testing.T) {
	tests := []struct {
		token string
		want  MetricKind
	}{
		{"LINE", MetricLine},
		{"line", MetricLine},
		{" Branch ", MetricBranch},
		{"INSTRUCTION_MISSED", MetricInstruction},
		{"METHOD_COVERED", MetricMethod},
		{"complexity", MetricComplexity},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseMetricKind(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMetricKind("STATEMENT")
	assert.True(t, errors.Is(err, ErrUnknownMetricKind))
}

func TestParseRuleMetricKind(t *testing.T) {
	kind, err := ParseRuleMetricKind("branch")
	require.NoError(t, err)
	assert.Equal(t, MetricBranch, kind)

	_, err = ParseRuleMetricKind("METHOD")
	assert.ErrorIs(t, err, ErrUnknownMetricKind)
	assert.Contains(t, err.Error(), "not a rule metric")
}

func TestCounterRatio(t *testing.T) {
	tests := []struct {
		name    string
		counter Counter
		want    float64
	}{
		{"fully covered", Counter{Missed: 0, Covered: 10}, 1},
		{"half covered", Counter{Missed: 5, Covered: 5}, 0.5},
		{"nothing covered", Counter{Missed: 4, Covered: 0}, 0},
		{"nothing to cover is vacuously covered", Counter{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.counter.Ratio(), 1e-9)
		})
	}
}

func TestCountersGetWithAdd(t *testing.T) {
	var c Counters
	for i, kind := range MetricKinds() {
		c = c.With(kind, Counter{Missed: i, Covered: i + 1})
	}
	for i, kind := range MetricKinds() {
		assert.Equal(t, Counter{Missed: i, Covered: i + 1}, c.Get(kind))
	}

	sum := c.Add(c)
	assert.Equal(t, Counter{Missed: 4, Covered: 6}, sum.Get(MetricLine))
	assert.Equal(t, Counter{}, c.Get(MetricKind("BOGUS")))
}

func TestMetricColumns(t *testing.T) {
	assert.Equal(t, "LINE_MISSED", MetricLine.MissedColumn())
	assert.Equal(t, "LINE_COVERED", MetricLine.CoveredColumn())
	assert.Equal(t, []string{"PACKAGE", "CLASS", "BRANCH_MISSED", "BRANCH_COVERED", "LIMIT"}, RulesHeader(MetricBranch))
	assert.Len(t, ReportColumns(), 13)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, Round1(66.66666))
	assert.Equal(t, 50.0, Round1(50.04))
}

func TestKindIndex(t *testing.T) {
	for i, kind := range MetricKinds() {
		assert.Equal(t, i, kindIndex(kind))
	}
	assert.Equal(t, -1, kindIndex("ABC"))
}
