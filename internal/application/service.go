package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// Service runs checks, suggestions, badges and history over its injected ports.
type Service struct {
	ConfigLoader ConfigLoader
	ReportReader ReportReader
	RulesReader  RulesReader
	RulesWriter  RulesWriter
	Locator      ReportLocator
	Reporter     Reporter
	OpenHistory  HistoryOpener
	Logger       *zap.Logger
	Out          io.Writer
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// checkPlan is the merged result of config file values and CLI overrides.
type checkPlan struct {
	reportPath   string
	reportFormat ReportFormat
	rulesPaths   []string
	ruleSet      []InlineRule
	output       OutputFormat
	workers      int
	historyPath  string
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// LoadConfig loads the config at path. A missing file at the default path
// yields DefaultConfig; a missing explicit path is an error.
func (s *Service) LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	exists, err := s.ConfigLoader.Exists(path)
	if err != nil {
		return Config{}, err
	}
	if !exists {
		if path == DefaultConfigPath {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	cfg, err := s.ConfigLoader.Load(path)
	if err != nil {
		return Config{}, err
	}
	s.logger().Debug("loaded config", zap.String("path", path))
	return cfg, nil
}

func (s *Service) plan(opts CheckOptions) (checkPlan, error) {
	cfg, err := s.LoadConfig(opts.ConfigPath)
	if err != nil {
		return checkPlan{}, err
	}

	p := checkPlan{
		reportPath:   firstNonEmpty(opts.ReportPath, cfg.Report.Path),
		reportFormat: ReportFormat(firstNonEmpty(string(opts.ReportFormat), string(cfg.Report.Format), string(ReportFormatAuto))),
		rulesPaths:   cfg.Rules,
		ruleSet:      cfg.RuleSet,
		output:       OutputFormat(firstNonEmpty(string(opts.Output), string(cfg.Output), string(OutputText))),
		workers:      cfg.Workers,
		historyPath:  firstNonEmpty(opts.HistoryPath, cfg.History),
	}
	if len(opts.RulesPaths) > 0 {
		p.rulesPaths = opts.RulesPaths
	}
	if opts.Workers > 0 {
		p.workers = opts.Workers
	}
	if p.reportPath == "" && s.Locator != nil {
		found, err := s.Locator.Locate()
		if err != nil {
			return checkPlan{}, fmt.Errorf("locate report: %w", err)
		}
		if found != "" {
			s.logger().Info("detected coverage report", zap.String("path", found))
			p.reportPath = found
		}
	}
	if p.reportPath == "" {
		return checkPlan{}, ErrNoReport
	}
	return p, nil
}

// watchedPaths lists the inputs whose changes should trigger a new run.
func (p checkPlan) watchedPaths() []string {
	return append([]string{p.reportPath}, p.rulesPaths...)
}

// ruleTables reads every configured rules table, followed by the inline
// rule set, in declaration order.
func (s *Service) ruleTables(ctx context.Context, p checkPlan) ([]domain.Table, error) {
	tables := make([]domain.Table, 0, len(p.rulesPaths)+1)
	for _, path := range p.rulesPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := s.RulesReader.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		s.logger().Debug("loaded rules table", zap.String("path", path), zap.Int("rows", len(table.Rows)))
		tables = append(tables, table)
	}
	if len(p.ruleSet) > 0 {
		tables = append(tables, InlineRulesTable(p.ruleSet))
	}
	return tables, nil
}

func (s *Service) readReport(p checkPlan) (domain.Table, error) {
	table, err := s.ReportReader.Read(p.reportPath, p.reportFormat)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read report: %w", err)
	}
	s.logger().Debug("loaded coverage report", zap.String("path", p.reportPath), zap.Int("rows", len(table.Rows)))
	return table, nil
}

// InlineRulesTable converts config rules to a rules table in the generic
// header form, so they are parsed by the same code as rules files.
func InlineRulesTable(rules []InlineRule) domain.Table {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{r.Package, r.Class, "", "", r.Limit, r.Metric}
	}
	return domain.Table{
		Source: "config rule_set",
		Header: domain.GenericRulesHeader(),
		Rows:   rows,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// closeStore releases stores that hold an open handle, such as SQLite.
func closeStore(store HistoryStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
