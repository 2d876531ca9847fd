package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// MetricKind identifies one of the coverage counters reported per class.
type MetricKind string

const (
	MetricInstruction MetricKind = "INSTRUCTION"
	MetricBranch      MetricKind = "BRANCH"
	MetricLine        MetricKind = "LINE"
	MetricComplexity  MetricKind = "COMPLEXITY"
	MetricMethod      MetricKind = "METHOD"
)

// metricKinds lists every kind in coverage report column order.
var metricKinds = [...]MetricKind{
	MetricInstruction,
	MetricBranch,
	MetricLine,
	MetricComplexity,
	MetricMethod,
}

// kindIndex returns the position of kind in report column order, or -1.
func kindIndex(kind MetricKind) int {
	return slices.Index(metricKinds[:], kind)
}

// MetricKinds returns all metric kinds in report column order.
func MetricKinds() []MetricKind {
	kinds := make([]MetricKind, len(metricKinds))
	copy(kinds, metricKinds[:])
	return kinds
}

// ParseMetricKind resolves a report metric token such as "line", "LINE" or
// "LINE_COVERED" into a MetricKind.
func ParseMetricKind(token string) (MetricKind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	normalized = strings.TrimSuffix(normalized, MissedSuffix)
	normalized = strings.TrimSuffix(normalized, CoveredSuffix)
	for _, kind := range metricKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetricKind, token)
}

// MissedColumn returns the report column holding missed counts for this kind.
func (k MetricKind) MissedColumn() string {
	return string(k) + MissedSuffix
}

// CoveredColumn returns the report column holding covered counts for this kind.
func (k MetricKind) CoveredColumn() string {
	return string(k) + CoveredSuffix
}

func (k MetricKind) String() string {
	return string(k)
}

// Counter is a missed/covered pair for a single metric.
type Counter struct {
	Missed  int `json:"missed"`
	Covered int `json:"covered"`
}

// Total returns missed + covered.
func (c Counter) Total() int {
	return c.Missed + c.Covered
}

// IsEmpty returns true if there is nothing to cover.
func (c Counter) IsEmpty() bool {
	return c.Missed == 0 && c.Covered == 0
}

// Ratio returns covered / (missed + covered). A counter with nothing to cover
// has ratio 1.0 and satisfies any limit.
func (c Counter) Ratio() float64 {
	if c.IsEmpty() {
		return 1
	}
	return float64(c.Covered) / (float64(c.Missed) + float64(c.Covered))
}

// Percent returns the ratio as a percentage.
func (c Counter) Percent() float64 {
	return c.Ratio() * 100
}

// Add returns the element-wise sum of two counters.
func (c Counter) Add(other Counter) Counter {
	return Counter{Missed: c.Missed + other.Missed, Covered: c.Covered + other.Covered}
}

// Counters holds one Counter per metric kind.
type Counters struct {
	Instruction Counter `json:"instruction"`
	Branch      Counter `json:"branch"`
	Line        Counter `json:"line"`
	Complexity  Counter `json:"complexity"`
	Method      Counter `json:"method"`
}

// Get returns the counter for the given kind.
func (c Counters) Get(kind MetricKind) Counter {
	switch kind {
	case MetricInstruction:
		return c.Instruction
	case MetricBranch:
		return c.Branch
	case MetricLine:
		return c.Line
	case MetricComplexity:
		return c.Complexity
	case MetricMethod:
		return c.Method
	default:
		return Counter{}
	}
}

// With returns a copy of c with the counter for kind replaced.
func (c Counters) With(kind MetricKind, counter Counter) Counters {
	switch kind {
	case MetricInstruction:
		c.Instruction = counter
	case MetricBranch:
		c.Branch = counter
	case MetricLine:
		c.Line = counter
	case MetricComplexity:
		c.Complexity = counter
	case MetricMethod:
		c.Method = counter
	}
	return c
}

// Add returns the element-wise sum of two counter sets.
func (c Counters) Add(other Counters) Counters {
	return Counters{
		Instruction: c.Instruction.Add(other.Instruction),
		Branch:      c.Branch.Add(other.Branch),
		Line:        c.Line.Add(other.Line),
		Complexity:  c.Complexity.Add(other.Complexity),
		Method:      c.Method.Add(other.Method),
	}
}

// Round1 rounds a float64 to one decimal place.
// This is the standard rounding function used for coverage percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
