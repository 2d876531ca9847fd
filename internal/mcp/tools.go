package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/csvtable"
)

// handleEvaluate implements the evaluate tool. Failures are reported in the
// output rather than as protocol errors so agents can read them.
func (s *Server) handleEvaluate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	opts := application.CheckOptions{
		ConfigPath:   coalesce(input.ConfigPath, s.config.ConfigPath),
		ReportPath:   input.Report,
		ReportFormat: application.ReportFormat(input.ReportFormat),
		RulesPaths:   input.Rules,
		Output:       application.OutputJSON,
		Workers:      s.config.Workers,
	}

	result, err := s.svc.Evaluate(ctx, opts)
	if err != nil {
		return nil, ToolOutput{Error: err.Error(), Summary: "evaluation failed"}, nil
	}
	output := toolOutput(result.Verdict)
	output.Entries = len(result.Entries)
	output.Rules = len(result.Rules)
	output.Warnings = result.Warnings
	return nil, output, nil
}

// handleEvaluateTables implements the evaluate_tables tool.
func (s *Server) handleEvaluateTables(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EvaluateTablesInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	fail := func(err error) (*mcp.CallToolResult, ToolOutput, error) {
		return nil, ToolOutput{Error: err.Error(), Summary: "evaluation failed"}, nil
	}

	report, err := csvtable.Decode(strings.NewReader(input.Report), "report", csvtable.HeaderDetect)
	if err != nil {
		return fail(err)
	}
	rules := make([]domain.Table, 0, len(input.Rules))
	for i, content := range input.Rules {
		table, err := csvtable.Decode(strings.NewReader(content), fmt.Sprintf("rules[%d]", i), csvtable.HeaderRequired)
		if err != nil {
			return fail(err)
		}
		rules = append(rules, table)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	run, err := domain.Engine{Workers: s.config.Workers}.Run(report, rules...)
	if err != nil {
		return fail(err)
	}
	output := toolOutput(run.Verdict)
	output.Entries = len(run.Entries)
	output.Rules = len(run.Rules)
	for _, r := range run.Unused() {
		output.Warnings = append(output.Warnings, fmt.Sprintf("rule %s (%s row %d) matches no class", r, r.Source, r.Row))
	}
	return nil, output, nil
}

func toolOutput(v domain.Verdict) ToolOutput {
	output := ToolOutput{
		Passed:    v.Passed,
		Summary:   v.Summary(),
		Evaluated: v.EvaluatedCount(),
	}
	for _, r := range v.Violations {
		output.Violations = append(output.Violations, Violation{
			Class:   r.Entry.Name(),
			Metric:  r.Rule.Metric.String(),
			Actual:  domain.Round1(r.Actual * 100),
			Limit:   r.Rule.Limit.String(),
			Rule:    r.Rule.Scope(),
			Message: r.Message(),
		})
	}
	return output
}
