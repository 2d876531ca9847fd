package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// Check evaluates the report, writes the result in the requested format and
// returns ErrRulesViolated when any rule fails.
func (s *Service) Check(ctx context.Context, opts CheckOptions) error {
	result, p, err := s.evaluate(ctx, opts)
	if err != nil {
		return err
	}
	if err := s.Reporter.Write(s.Out, result, p.output); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return verdictError(result.Verdict)
}

// Evaluate runs the rules engine without writing a report.
func (s *Service) Evaluate(ctx context.Context, opts CheckOptions) (CheckResult, error) {
	result, _, err := s.evaluate(ctx, opts)
	return result, err
}

func (s *Service) evaluate(ctx context.Context, opts CheckOptions) (CheckResult, checkPlan, error) {
	p, err := s.plan(opts)
	if err != nil {
		return CheckResult{}, checkPlan{}, err
	}
	result, err := s.evaluatePlan(ctx, p, opts)
	return result, p, err
}

func (s *Service) evaluatePlan(ctx context.Context, p checkPlan, opts CheckOptions) (CheckResult, error) {
	log := s.logger()

	report, err := s.readReport(p)
	if err != nil {
		return CheckResult{}, err
	}
	tables, err := s.ruleTables(ctx, p)
	if err != nil {
		return CheckResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return CheckResult{}, err
	}

	run, err := domain.Engine{Workers: p.workers}.Run(report, tables...)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{
		Verdict: run.Verdict,
		Entries: run.Entries,
		Rules:   run.Rules,
		Unused:  run.Unused(),
		Totals:  domain.Totals(run.Entries),
	}
	if len(run.Rules) == 0 {
		result.Warnings = append(result.Warnings, "no coverage rules configured")
		log.Warn("no coverage rules configured")
	}
	for _, rule := range result.Unused {
		result.Warnings = append(result.Warnings, fmt.Sprintf("rule %s (%s row %d) matches no class", rule, rule.Source, rule.Row))
		log.Warn("rule matches no class",
			zap.String("rule", rule.String()),
			zap.String("source", rule.Source),
			zap.Int("row", rule.Row))
	}

	now := s.now()
	for _, event := range domain.VerdictEvents(now, run.Verdict) {
		logEvent(log, event)
	}

	if p.historyPath != "" {
		trend, err := s.record(p.historyPath, opts, run, now)
		if err != nil {
			return CheckResult{}, err
		}
		result.Trend = &trend
	}

	log.Info("coverage rules evaluated",
		zap.Bool("passed", run.Verdict.Passed),
		zap.Int("entries", run.Verdict.Entries),
		zap.Int("rules", run.Verdict.Rules),
		zap.Int("checks", run.Verdict.EvaluatedCount()),
		zap.Int("violations", run.Verdict.FailingCount()))
	return result, nil
}

// record appends the run to history and compares it with the previous run.
func (s *Service) record(path string, opts CheckOptions, run domain.Run, now time.Time) (domain.TrendAnalysisResult, error) {
	store, err := s.OpenHistory(path)
	if err != nil {
		return domain.TrendAnalysisResult{}, fmt.Errorf("open history: %w", err)
	}
	defer closeStore(store)
	history, err := store.Load()
	if err != nil {
		return domain.TrendAnalysisResult{}, fmt.Errorf("load history: %w", err)
	}

	previous := history.LatestEntry()

	entry := domain.NewHistoryEntry(now, run.Verdict, run.Entries)
	entry.Commit = opts.Commit
	entry.Branch = opts.Branch
	if err := store.Append(entry); err != nil {
		return domain.TrendAnalysisResult{}, fmt.Errorf("record history: %w", err)
	}

	trend := domain.AnalyzeTrend(previous, &entry)
	for _, event := range trend.Events {
		logEvent(s.logger(), event)
	}
	return trend, nil
}

func verdictError(v domain.Verdict) error {
	if v.Passed {
		return nil
	}
	return fmt.Errorf("%w: %d violation(s)", ErrRulesViolated, v.FailingCount())
}

func logEvent(log *zap.Logger, event domain.Event) {
	switch e := event.(type) {
	case domain.RuleViolatedEvent:
		log.Debug(e.EventType(),
			zap.String("class", e.Class),
			zap.String("rule", e.Scope),
			zap.String("metric", e.Metric.String()),
			zap.Float64("actual", e.Actual),
			zap.Float64("required", e.Required))
	case domain.CoverageChangedEvent:
		log.Info(e.EventType(),
			zap.String("metric", e.Metric.String()),
			zap.Float64("previous", e.Previous),
			zap.Float64("current", e.Current),
			zap.Float64("delta", e.Delta))
	default:
		log.Debug(event.EventType())
	}
}
