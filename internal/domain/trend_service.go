package domain

import "time"

// significantDelta is the change in percentage points that raises an event.
const significantDelta = 1.0

// TrendAnalysisResult compares two recorded runs.
type TrendAnalysisResult struct {
	Previous      *HistoryEntry
	Current       *HistoryEntry
	Metrics       map[MetricKind]Trend
	ViolationDiff int
	Period        time.Duration
	Events        []Event
}

// AnalyzeTrend compares every metric ratio of two runs. Either entry may be
// nil, in which case all trends are stable.
func AnalyzeTrend(previous, current *HistoryEntry) TrendAnalysisResult {
	result := TrendAnalysisResult{
		Previous: previous,
		Current:  current,
		Metrics:  make(map[MetricKind]Trend, len(metricKinds)),
	}
	if previous == nil || current == nil {
		for _, kind := range metricKinds {
			result.Metrics[kind] = Trend{Direction: TrendStable}
		}
		return result
	}

	result.Period = current.Timestamp.Sub(previous.Timestamp)
	result.ViolationDiff = current.Violations - previous.Violations
	for _, kind := range metricKinds {
		trend := RatioTrend(*previous, *current, kind)
		result.Metrics[kind] = trend
		if trend.Delta > significantDelta || trend.Delta < -significantDelta {
			result.Events = append(result.Events, CoverageChangedEvent{
				baseEvent: baseEvent{at: current.Timestamp},
				Metric:    kind,
				Previous:  Round1(previous.Ratios[kind] * 100),
				Current:   Round1(current.Ratios[kind] * 100),
				Delta:     Round1(trend.Delta),
			})
		}
	}
	return result
}

// HistoryAnalysisResult holds statistics for one metric across recorded runs.
type HistoryAnalysisResult struct {
	Metric       MetricKind
	EntriesCount int
	Highest      float64
	Lowest       float64
	Average      float64
	UpRuns       int
	DownRuns     int
	StableRuns   int
	FailedRuns   int
}

// AnalyzeHistory summarizes the runs recorded after since, in percent.
func AnalyzeHistory(history *History, metric MetricKind, since time.Time) HistoryAnalysisResult {
	entries := history.EntriesAfter(since)
	result := HistoryAnalysisResult{Metric: metric, EntriesCount: len(entries)}
	if len(entries) == 0 {
		return result
	}

	result.Lowest = 100
	var sum, prev float64
	for i, entry := range entries {
		pct := entry.Ratios[metric] * 100
		result.Highest = max(result.Highest, pct)
		result.Lowest = min(result.Lowest, pct)
		sum += pct
		if !entry.Passed {
			result.FailedRuns++
		}
		if i > 0 {
			switch CalculateTrend(prev, pct).Direction {
			case TrendUp:
				result.UpRuns++
			case TrendDown:
				result.DownRuns++
			default:
				result.StableRuns++
			}
		}
		prev = pct
	}
	result.Highest = Round1(result.Highest)
	result.Lowest = Round1(result.Lowest)
	result.Average = Round1(sum / float64(len(entries)))
	return result
}

// Volatility returns the share of run-to-run changes that were not stable.
func (r HistoryAnalysisResult) Volatility() float64 {
	changes := r.UpRuns + r.DownRuns + r.StableRuns
	if changes == 0 {
		return 0
	}
	return float64(r.UpRuns+r.DownRuns) / float64(changes)
}

// ConsistencyScore is 100 minus the spread between highest and lowest.
func (r HistoryAnalysisResult) ConsistencyScore() float64 {
	if r.EntriesCount <= 1 {
		return 100
	}
	return Round1(100 - (r.Highest - r.Lowest))
}
