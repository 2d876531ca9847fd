package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/csvtable"
)

func entry(pkg, class string, lineMissed, lineCovered int) domain.CoverageEntry {
	e := domain.CoverageEntry{Group: "app", Package: pkg, Class: class}
	e.Counters = e.Counters.With(domain.MetricLine, domain.Counter{Missed: lineMissed, Covered: lineCovered})
	return e
}

func rule(t *testing.T, pkg string, metric domain.MetricKind, limit string) domain.RuleDefinition {
	t.Helper()
	r, err := domain.NewRuleDefinition(pkg, "", metric, decimal.RequireFromString(limit))
	require.NoError(t, err)
	r.Source = "rules.csv"
	r.Row = 1
	return r
}

// sampleResult has one passing and one failing LINE check.
func sampleResult(t *testing.T) application.CheckResult {
	t.Helper()
	entries := []domain.CoverageEntry{
		entry("com.acme", "Good", 1, 9),
		entry("com.acme", "Bad", 6, 4),
	}
	r := rule(t, "com.acme", domain.MetricLine, "0.8")
	verdict := domain.Aggregate([]domain.RuleResult{
		domain.EvaluateRule(entries[0], r),
		domain.EvaluateRule(entries[1], r),
	})
	return application.CheckResult{
		Verdict: verdict,
		Entries: entries,
		Rules:   []domain.RuleDefinition{r},
		Totals:  domain.Totals(entries),
	}
}

func TestWriteText(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, sampleResult(t), application.OutputText))

	out := buf.String()
	assert.Contains(t, out, "com.acme.Bad")
	assert.NotContains(t, out, "com.acme.Good")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "Totals:")
	assert.Contains(t, out, "Coverage rules violated: 1 of 2 checks failed")
}

func TestWriteTextPassing(t *testing.T) {
	buf := new(bytes.Buffer)
	res := application.CheckResult{Verdict: domain.Aggregate(nil)}
	require.NoError(t, (Writer{}).Write(buf, res, application.OutputText))

	assert.NotContains(t, buf.String(), "Class")
	assert.Contains(t, buf.String(), "All coverage rules met (0 checks)")
}

func TestWriteTextWarningsAndTrend(t *testing.T) {
	res := sampleResult(t)
	res.Warnings = []string{"rule com.other matched no classes"}
	prev := &domain.HistoryEntry{Timestamp: time.Unix(0, 0), Ratios: map[domain.MetricKind]float64{domain.MetricLine: 0.5}}
	cur := &domain.HistoryEntry{Timestamp: time.Unix(60, 0), Ratios: map[domain.MetricKind]float64{domain.MetricLine: 0.65}}
	trend := domain.AnalyzeTrend(prev, cur)
	res.Trend = &trend

	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, res, application.OutputText))

	assert.Contains(t, buf.String(), "Warnings:")
	assert.Contains(t, buf.String(), "rule com.other matched no classes")
	assert.Contains(t, buf.String(), "+15.0%")
}

func TestWriteJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, sampleResult(t), application.OutputJSON))

	var payload struct {
		Summary struct {
			Pass       bool `json:"pass"`
			Evaluated  int  `json:"evaluated"`
			Violations int  `json:"violations"`
		} `json:"summary"`
		Violations []struct {
			Class  string `json:"class"`
			Limit  string `json:"limit"`
			Source string `json:"source"`
		} `json:"violations"`
		Totals map[string]domain.Counter `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.False(t, payload.Summary.Pass)
	assert.Equal(t, 2, payload.Summary.Evaluated)
	assert.Equal(t, 1, payload.Summary.Violations)
	require.Len(t, payload.Violations, 1)
	assert.Equal(t, "Bad", payload.Violations[0].Class)
	assert.Equal(t, "0.8", payload.Violations[0].Limit)
	assert.Equal(t, "rules.csv:1", payload.Violations[0].Source)
	assert.Equal(t, 13, payload.Totals["LINE"].Covered)
}

func TestWriteBrief(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, sampleResult(t), application.OutputBrief))

	out := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(out, "FAIL | LINE 65.0%"), out)
	assert.Contains(t, out, "1/2 checks passing")
	assert.Contains(t, out, "com.acme.Bad LINE (40.0% < 80.0%)")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteCSVSingleMetric(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, sampleResult(t), application.OutputCSV))

	table, err := csvtable.Decode(buf, "out.csv", csvtable.HeaderRequired)
	require.NoError(t, err)
	assert.Equal(t, []string{"PACKAGE", "CLASS", "LINE_MISSED", "LINE_COVERED", "LIMIT", "ACTUAL", "STATUS"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"com.acme", "Bad", "6", "4", "0.8", "0.4000", "FAIL"}, table.Rows[1])

	// The output is itself a valid rules table.
	rules, err := domain.ParseRules(table)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestWriteCSVMixedMetrics(t *testing.T) {
	e := entry("com.acme", "Mixed", 0, 10)
	results := []domain.RuleResult{
		domain.EvaluateRule(e, rule(t, "com.acme", domain.MetricLine, "0.5")),
		domain.EvaluateRule(e, rule(t, "com.acme", domain.MetricBranch, "0.5")),
	}
	res := application.CheckResult{Verdict: domain.Aggregate(results)}

	buf := new(bytes.Buffer)
	require.NoError(t, (Writer{}).Write(buf, res, application.OutputCSV))

	table, err := csvtable.Decode(buf, "out.csv", csvtable.HeaderRequired)
	require.NoError(t, err)
	assert.Equal(t, append(domain.GenericRulesHeader(), "ACTUAL", "STATUS"), table.Header)
	assert.Equal(t, "BRANCH", table.Rows[1][5])
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := (Writer{}).Write(new(bytes.Buffer), application.CheckResult{}, application.OutputFormat("yaml"))
	assert.Error(t, err)
}
