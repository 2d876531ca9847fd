package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

func TestSuggestAndSaveRules(t *testing.T) {
	f := newFixture(baseConfig(),
		fakeTables{"report.csv": reportTable(
			reportRow("com.b", "X", 3, 7),
			reportRow("com.a", "Y", 1, 9),
		)},
		fakeTables{},
	)

	suggestions, err := f.svc.Suggest(context.Background(), SuggestOptions{Strategy: domain.SuggestCurrent})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "com.a", suggestions[0].Package)
	assert.Equal(t, domain.MetricLine, suggestions[0].Metric)

	require.NoError(t, f.svc.SaveRules("rules.csv", domain.MetricLine, suggestions))
	assert.Equal(t, "rules.csv", f.writer.path)
	require.Len(t, f.writer.rules, 2)
	assert.Equal(t, 1, f.writer.rules[1].Index)
}

func TestSuggestRejectsNonRuleMetric(t *testing.T) {
	f := newFixture(baseConfig(), fakeTables{"report.csv": reportTable()}, fakeTables{})
	_, err := f.svc.Suggest(context.Background(), SuggestOptions{Metric: domain.MetricMethod})
	assert.ErrorIs(t, err, domain.ErrUnknownMetricKind)
}

func TestBadge(t *testing.T) {
	f := newFixture(baseConfig(),
		fakeTables{"report.csv": reportTable(
			reportRow("com.a", "X", 1, 2),
			reportRow("com.a", "Y", 0, 0),
		)},
		fakeTables{},
	)
	result, err := f.svc.Badge(context.Background(), BadgeOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.MetricLine, result.Metric)
	assert.Equal(t, 66.7, result.Percent)
}

func TestHistory(t *testing.T) {
	cfg := baseConfig()
	cfg.History = "history.json"
	f := newFixture(cfg, fakeTables{}, fakeTables{})
	base := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	for i, ratio := range []float64{0.5, 0.7, 0.65} {
		f.history.history.Entries = append(f.history.history.Entries, domain.HistoryEntry{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Passed:    ratio >= 0.6,
			Ratios:    map[domain.MetricKind]float64{domain.MetricLine: ratio},
		})
	}

	report, err := f.svc.History(context.Background(), HistoryOptions{})
	require.NoError(t, err)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, 70.0, report.Analysis.Highest)
	assert.Equal(t, 1, report.Analysis.FailedRuns)
	assert.Equal(t, domain.TrendDown, report.Trend.Metrics[domain.MetricLine].Direction)

	recent, err := f.svc.History(context.Background(), HistoryOptions{Days: 4})
	require.NoError(t, err)
	assert.Len(t, recent.Entries, 2)
}

func TestHistoryRequiresPath(t *testing.T) {
	f := newFixture(DefaultConfig(), fakeTables{}, fakeTables{})
	_, err := f.svc.History(context.Background(), HistoryOptions{})
	assert.Error(t, err)
}

func TestWatchRerunsOnEvents(t *testing.T) {
	f := newFixture(baseConfig(),
		fakeTables{"report.csv": reportTable(reportRow("com.a", "X", 5, 5))},
		fakeTables{"rules.csv": lineRules([]string{"com.a", "", "", "", "0.8"})},
	)
	w := &fakeWatcher{events: make(chan struct{}, 2)}
	w.events <- struct{}{}
	w.events <- struct{}{}
	close(w.events)

	var runs []int
	err := f.svc.Watch(context.Background(), WatchOptions{}, w, func(run int, result CheckResult, err error) {
		require.NoError(t, err)
		assert.False(t, result.Verdict.Passed)
		runs = append(runs, run)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, runs)
	assert.Equal(t, []string{"report.csv", "rules.csv"}, w.paths)
	assert.Len(t, f.reporter.results, 3)
}

func TestWatchStopsOnCancel(t *testing.T) {
	f := newFixture(baseConfig(),
		fakeTables{"report.csv": reportTable(reportRow("com.a", "X", 0, 5))},
		fakeTables{"rules.csv": lineRules([]string{"com.a", "", "", "", "0.8"})},
	)
	w := &fakeWatcher{events: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	err := f.svc.Watch(ctx, WatchOptions{}, w, func(int, CheckResult, error) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
}
