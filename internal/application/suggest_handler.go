package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// Suggest proposes package-level rules from the current report.
func (s *Service) Suggest(ctx context.Context, opts SuggestOptions) ([]domain.Suggestion, error) {
	entries, err := s.entries(ctx, opts.ConfigPath, opts.ReportPath, opts.ReportFormat)
	if err != nil {
		return nil, err
	}
	metric := opts.Metric
	if metric == "" {
		metric = domain.MetricLine
	}
	if _, err := domain.ParseRuleMetricKind(string(metric)); err != nil {
		return nil, err
	}
	suggestions := domain.SuggestRules(entries, metric, opts.Strategy)
	s.logger().Debug("suggested rules", zap.Int("count", len(suggestions)), zap.String("strategy", string(opts.Strategy)))
	return suggestions, nil
}

// SaveRules writes suggestions as a rules table at path.
func (s *Service) SaveRules(path string, metric domain.MetricKind, suggestions []domain.Suggestion) error {
	rules := make([]domain.RuleDefinition, len(suggestions))
	for i, sg := range suggestions {
		rules[i] = sg.Rule()
		rules[i].Index = i
	}
	if err := s.RulesWriter.Write(path, metric, rules); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// Badge computes the overall coverage of one metric kind.
func (s *Service) Badge(ctx context.Context, opts BadgeOptions) (BadgeResult, error) {
	entries, err := s.entries(ctx, opts.ConfigPath, opts.ReportPath, opts.ReportFormat)
	if err != nil {
		return BadgeResult{}, err
	}
	metric := opts.Metric
	if metric == "" {
		metric = domain.MetricLine
	}
	total := domain.Totals(entries).Get(metric)
	return BadgeResult{Metric: metric, Percent: domain.Round1(total.Percent())}, nil
}

// entries reads and parses the report named by reportPath or the config.
func (s *Service) entries(ctx context.Context, configPath, reportPath string, format ReportFormat) ([]domain.CoverageEntry, error) {
	p, err := s.plan(CheckOptions{ConfigPath: configPath, ReportPath: reportPath, ReportFormat: format})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := s.readReport(p)
	if err != nil {
		return nil, err
	}
	return domain.Engine{Workers: p.workers}.ParseReport(table)
}
