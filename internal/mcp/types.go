// Package mcp serves the coverage rules engine over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

// Service defines the application operations needed by MCP.
type Service interface {
	Evaluate(ctx context.Context, opts application.CheckOptions) (application.CheckResult, error)
	Suggest(ctx context.Context, opts application.SuggestOptions) ([]domain.Suggestion, error)
	History(ctx context.Context, opts application.HistoryOptions) (application.HistoryReport, error)
}

// Config holds MCP server configuration.
type Config struct {
	ConfigPath string // Path to .jacocogate.yaml
	Workers    int
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{ConfigPath: application.DefaultConfigPath}
}

// EvaluateInput defines the input parameters for the evaluate tool.
type EvaluateInput struct {
	ConfigPath   string   `json:"configPath,omitempty" jsonschema:"path to the .jacocogate.yaml config file"`
	Report       string   `json:"report,omitempty" jsonschema:"path to a JaCoCo CSV or XML report"`
	ReportFormat string   `json:"reportFormat,omitempty" jsonschema:"report format: auto, csv or xml"`
	Rules        []string `json:"rules,omitempty" jsonschema:"rules CSV files, replacing those in the config"`
}

// EvaluateTablesInput carries report and rules tables inline as CSV text.
type EvaluateTablesInput struct {
	Report string   `json:"report" jsonschema:"JaCoCo CSV report content"`
	Rules  []string `json:"rules" jsonschema:"rules CSV contents, each with a header row"`
}

// Violation is one failing check.
type Violation struct {
	Class   string  `json:"class"`
	Metric  string  `json:"metric"`
	Actual  float64 `json:"actual"`
	Limit   string  `json:"limit"`
	Rule    string  `json:"rule"`
	Message string  `json:"message"`
}

// ToolOutput represents the common output structure for tools.
type ToolOutput struct {
	Passed     bool        `json:"passed"`
	Summary    string      `json:"summary,omitempty"`
	Entries    int         `json:"entries"`
	Rules      int         `json:"rules"`
	Evaluated  int         `json:"evaluated"`
	Violations []Violation `json:"violations,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// coalesce returns value if non-empty, otherwise fallback.
func coalesce(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
