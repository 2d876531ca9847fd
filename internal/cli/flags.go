package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// reportFlags are shared by every command that reads a coverage report.
type reportFlags struct {
	path   string
	format string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "report", "", "JaCoCo CSV or XML report (overrides config)")
	cmd.Flags().StringVar(&f.format, "report-format", "", "report format: auto|csv|xml")
}

func (f *reportFlags) reportFormat() (application.ReportFormat, error) {
	switch format := application.ReportFormat(f.format); format {
	case "", application.ReportFormatAuto, application.ReportFormatCSV, application.ReportFormatXML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want auto, csv or xml)", f.format)
	}
}

// checkFlags configure check and watch.
type checkFlags struct {
	report  reportFlags
	rules   []string
	output  string
	workers int
	history string
	commit  string
	branch  string
}

func (f *checkFlags) register(cmd *cobra.Command) {
	f.report.register(cmd)
	cmd.Flags().StringArrayVar(&f.rules, "rules", nil, "rules CSV file (repeatable, replaces config rules)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output format: text|json|brief|csv|html")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel evaluation workers (0 uses config)")
	cmd.Flags().StringVar(&f.history, "history", "", "record the run in this history file (.json, .db or .sqlite)")
	cmd.Flags().StringVar(&f.commit, "commit", "", "commit recorded in history (default from CI environment)")
	cmd.Flags().StringVar(&f.branch, "branch", "", "branch recorded in history (default from CI environment)")
}

func (f *checkFlags) options(configPath string) (application.CheckOptions, error) {
	format, err := f.report.reportFormat()
	if err != nil {
		return application.CheckOptions{}, err
	}
	var output application.OutputFormat
	if f.output != "" {
		if output, err = application.ParseOutputFormat(f.output); err != nil {
			return application.CheckOptions{}, err
		}
	}
	if f.workers < 0 {
		return application.CheckOptions{}, fmt.Errorf("workers must be >= 0")
	}
	commit, branch := ciMetadata()
	return application.CheckOptions{
		ConfigPath:   configPath,
		ReportPath:   f.report.path,
		ReportFormat: format,
		RulesPaths:   f.rules,
		Output:       output,
		Workers:      f.workers,
		HistoryPath:  f.history,
		Commit:       firstNonEmpty(f.commit, commit),
		Branch:       firstNonEmpty(f.branch, branch),
	}, nil
}

func parseMetric(name string) (domain.MetricKind, error) {
	if name == "" {
		return domain.MetricLine, nil
	}
	return domain.ParseRuleMetricKind(name)
}

// ciMetadata reads commit and branch from GitHub Actions, GitLab CI or
// Bitbucket Pipelines variables.
func ciMetadata() (commit, branch string) {
	commit = firstNonEmpty(os.Getenv("GITHUB_SHA"), os.Getenv("CI_COMMIT_SHA"), os.Getenv("BITBUCKET_COMMIT"))
	branch = firstNonEmpty(os.Getenv("GITHUB_HEAD_REF"), os.Getenv("GITHUB_REF_NAME"), os.Getenv("CI_COMMIT_REF_NAME"), os.Getenv("BITBUCKET_BRANCH"))
	return commit, branch
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
