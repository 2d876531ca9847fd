package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

type OutputFormat string

const (
	OutputText  OutputFormat = "text"
	OutputJSON  OutputFormat = "json"
	OutputHTML  OutputFormat = "html"
	OutputBrief OutputFormat = "brief"
	OutputCSV   OutputFormat = "csv"
)

// ParseOutputFormat validates an output format name; empty selects text.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case "":
		return OutputText, nil
	case OutputText, OutputJSON, OutputHTML, OutputBrief, OutputCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, brief, csv or html)", name)
	}
}

// ReportFormat identifies how a coverage report file is encoded.
type ReportFormat string

const (
	// ReportFormatAuto detects the format from the file extension and content.
	ReportFormatAuto ReportFormat = "auto"
	// ReportFormatCSV is the JaCoCo CSV report.
	ReportFormatCSV ReportFormat = "csv"
	// ReportFormatXML is the JaCoCo XML report.
	ReportFormatXML ReportFormat = "xml"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = ".jacocogate.yaml"

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrNoReport       = errors.New("no coverage report configured")
	ErrRulesViolated  = errors.New("coverage rules violated")
)

// Config represents validated, application-ready configuration.
type Config struct {
	Version int
	Report  ReportConfig
	Rules   []string
	RuleSet []InlineRule
	Output  OutputFormat
	Workers int
	History string
	Log     LogConfig
}

// ReportConfig locates the coverage report.
type ReportConfig struct {
	Path   string
	Format ReportFormat
}

// InlineRule is a rule declared directly in the config file.
type InlineRule struct {
	Package string
	Class   string
	Metric  string
	Limit   string
}

// LogConfig configures the logger built by the CLI.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Version: 1,
		Report:  ReportConfig{Format: ReportFormatAuto},
		Output:  OutputText,
	}
}

type ConfigLoader interface {
	Load(path string) (Config, error)
	Exists(path string) (bool, error)
}

// ReportReader reads a coverage report into the 13-column report table.
type ReportReader interface {
	Read(path string, format ReportFormat) (domain.Table, error)
}

// RulesReader reads a rules table. The header row is required.
type RulesReader interface {
	Read(path string) (domain.Table, error)
}

// RulesWriter persists rules as a rules table for a single metric kind.
type RulesWriter interface {
	Write(path string, metric domain.MetricKind, rules []domain.RuleDefinition) error
}

type Reporter interface {
	Write(w io.Writer, result CheckResult, format OutputFormat) error
}

type HistoryStore interface {
	Load() (domain.History, error)
	Save(h domain.History) error
	Append(entry domain.HistoryEntry) error
}

// ReportLocator finds a coverage report when none is configured. An empty
// path with a nil error means nothing was found.
type ReportLocator interface {
	Locate() (string, error)
}

// HistoryOpener returns the store for a history path.
type HistoryOpener func(path string) (HistoryStore, error)

// FileWatcher provides file change notifications.
type FileWatcher interface {
	WatchFiles(paths ...string) error
	Events(ctx context.Context) <-chan struct{}
	Close() error
}

// CheckOptions configures a check run. Zero values defer to the config file.
type CheckOptions struct {
	ConfigPath   string
	ReportPath   string
	ReportFormat ReportFormat
	RulesPaths   []string
	Output       OutputFormat
	Workers      int
	HistoryPath  string
	Commit       string
	Branch       string
}

// CheckResult is the outcome of evaluating a report against its rules.
type CheckResult struct {
	Verdict  domain.Verdict
	Entries  []domain.CoverageEntry
	Rules    []domain.RuleDefinition
	Unused   []domain.RuleDefinition
	Totals   domain.Counters
	Trend    *domain.TrendAnalysisResult
	Warnings []string
}

// WatchOptions configures watch mode behavior.
type WatchOptions struct {
	Check CheckOptions
	Clear bool
}

// WatchCallback is called after each run in watch mode.
type WatchCallback func(run int, result CheckResult, err error)

type SuggestOptions struct {
	ConfigPath   string
	ReportPath   string
	ReportFormat ReportFormat
	Metric       domain.MetricKind
	Strategy     domain.SuggestStrategy
}

type BadgeOptions struct {
	ConfigPath   string
	ReportPath   string
	ReportFormat ReportFormat
	Metric       domain.MetricKind
}

// BadgeResult is the overall coverage of one metric kind.
type BadgeResult struct {
	Metric  domain.MetricKind
	Percent float64
}

type HistoryOptions struct {
	ConfigPath  string
	HistoryPath string
	Metric      domain.MetricKind
	Days        int // Number of days to analyze (0 = all)
}

// HistoryReport summarizes recorded runs.
type HistoryReport struct {
	Entries  []domain.HistoryEntry
	Analysis domain.HistoryAnalysisResult
	Trend    domain.TrendAnalysisResult
}
