package domain

import "time"

// Event is a notable occurrence during evaluation or history analysis.
type Event interface {
	OccurredAt() time.Time
	EventType() string
}

type baseEvent struct {
	at time.Time
}

func (e baseEvent) OccurredAt() time.Time {
	return e.at
}

// RunEvaluatedEvent is raised once per evaluation run.
type RunEvaluatedEvent struct {
	baseEvent
	Passed     bool
	Evaluated  int
	Violations int
}

func (RunEvaluatedEvent) EventType() string { return "RunEvaluated" }

// NewRunEvaluatedEvent summarizes a verdict.
func NewRunEvaluatedEvent(at time.Time, v Verdict) RunEvaluatedEvent {
	return RunEvaluatedEvent{
		baseEvent:  baseEvent{at: at},
		Passed:     v.Passed,
		Evaluated:  v.EvaluatedCount(),
		Violations: v.FailingCount(),
	}
}

// RuleViolatedEvent is raised for each failing (entry, rule) check.
type RuleViolatedEvent struct {
	baseEvent
	Class     string
	Scope     string
	Metric    MetricKind
	Actual    float64
	Required  float64
	Shortfall float64
}

func (RuleViolatedEvent) EventType() string { return "RuleViolated" }

// NewRuleViolatedEvent describes one violation in percent.
func NewRuleViolatedEvent(at time.Time, r RuleResult) RuleViolatedEvent {
	return RuleViolatedEvent{
		baseEvent: baseEvent{at: at},
		Class:     r.Entry.Name(),
		Scope:     r.Rule.Scope(),
		Metric:    r.Rule.Metric,
		Actual:    Round1(r.Actual * 100),
		Required:  Round1(r.Rule.LimitFloat() * 100),
		Shortfall: Round1(r.Shortfall() * 100),
	}
}

// CoverageChangedEvent is raised when a metric moves by more than one point
// between two recorded runs. Delta is negative for regressions.
type CoverageChangedEvent struct {
	baseEvent
	Metric   MetricKind
	Previous float64
	Current  float64
	Delta    float64
}

func (e CoverageChangedEvent) EventType() string {
	if e.Delta < 0 {
		return "CoverageRegressed"
	}
	return "CoverageImproved"
}

// VerdictEvents returns the run event followed by one event per violation.
func VerdictEvents(at time.Time, v Verdict) []Event {
	events := make([]Event, 0, 1+len(v.Violations))
	events = append(events, NewRunEvaluatedEvent(at, v))
	for _, r := range v.Violations {
		events = append(events, NewRuleViolatedEvent(at, r))
	}
	return events
}

// EventCollector collects events for later publishing.
type EventCollector struct {
	events []Event
}

// Record adds an event to the collector.
func (c *EventCollector) Record(event Event) {
	c.events = append(c.events, event)
}

// Events returns all collected events.
func (c *EventCollector) Events() []Event {
	return c.events
}

// Clear removes all collected events.
func (c *EventCollector) Clear() {
	c.events = nil
}
