package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// History loads recorded runs and summarizes the trend of one metric.
func (s *Service) History(ctx context.Context, opts HistoryOptions) (HistoryReport, error) {
	if err := ctx.Err(); err != nil {
		return HistoryReport{}, err
	}
	path := opts.HistoryPath
	if path == "" {
		cfg, err := s.LoadConfig(opts.ConfigPath)
		if err != nil {
			return HistoryReport{}, err
		}
		path = cfg.History
	}
	if path == "" {
		return HistoryReport{}, fmt.Errorf("no history path configured")
	}

	store, err := s.OpenHistory(path)
	if err != nil {
		return HistoryReport{}, fmt.Errorf("open history: %w", err)
	}
	defer closeStore(store)
	history, err := store.Load()
	if err != nil {
		return HistoryReport{}, fmt.Errorf("load history: %w", err)
	}

	metric := opts.Metric
	if metric == "" {
		metric = domain.MetricLine
	}
	var since time.Time
	if opts.Days > 0 {
		since = s.now().AddDate(0, 0, -opts.Days)
	}

	report := HistoryReport{
		Entries:  history.EntriesAfter(since),
		Analysis: domain.AnalyzeHistory(&history, metric, since),
	}
	if n := len(report.Entries); n >= 2 {
		report.Trend = domain.AnalyzeTrend(&report.Entries[n-2], &report.Entries[n-1])
	} else {
		report.Trend = domain.AnalyzeTrend(nil, nil)
	}
	return report, nil
}
