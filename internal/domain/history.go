package domain

import (
	"slices"
	"time"
)

// stableBand is the change, in percentage points, still reported as stable.
const stableBand = 0.5

// TrendDirection is the sign of a change between two runs.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Symbol renders the direction as an arrow for terminal output.
func (d TrendDirection) Symbol() string {
	switch d {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// Trend is a change between two runs, in percentage points.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
}

// CalculateTrend compares two percentages.
func CalculateTrend(previous, current float64) Trend {
	t := Trend{Direction: TrendStable, Delta: current - previous}
	if t.Delta > stableBand {
		t.Direction = TrendUp
	} else if t.Delta < -stableBand {
		t.Direction = TrendDown
	}
	return t
}

// RatioTrend compares one metric's overall ratio between two runs.
func RatioTrend(previous, current HistoryEntry, metric MetricKind) Trend {
	return CalculateTrend(previous.Ratios[metric]*100, current.Ratios[metric]*100)
}

// HistoryEntry is one recorded check run.
type HistoryEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Commit     string                 `json:"commit,omitempty"`
	Branch     string                 `json:"branch,omitempty"`
	Passed     bool                   `json:"passed"`
	Evaluated  int                    `json:"evaluated"`
	Violations int                    `json:"violations"`
	Ratios     map[MetricKind]float64 `json:"ratios,omitempty"`
}

// NewHistoryEntry records a verdict together with the report's overall
// ratio per metric.
func NewHistoryEntry(at time.Time, verdict Verdict, entries []CoverageEntry) HistoryEntry {
	return HistoryEntry{
		Timestamp:  at,
		Passed:     verdict.Passed,
		Evaluated:  verdict.EvaluatedCount(),
		Violations: verdict.FailingCount(),
		Ratios:     Ratios(entries),
	}
}

// History holds recorded runs in append order.
type History struct {
	Entries []HistoryEntry `json:"entries"`
}

// LatestEntry returns a copy of the newest run, or nil when nothing is
// recorded. Runs with equal timestamps resolve to the earliest appended.
func (h *History) LatestEntry() *HistoryEntry {
	if len(h.Entries) == 0 {
		return nil
	}
	latest := slices.MaxFunc(h.Entries, func(a, b HistoryEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return &latest
}

// EntriesAfter returns the runs recorded strictly after t.
func (h *History) EntriesAfter(t time.Time) []HistoryEntry {
	return slices.DeleteFunc(slices.Clone(h.Entries), func(e HistoryEntry) bool {
		return !e.Timestamp.After(t)
	})
}
