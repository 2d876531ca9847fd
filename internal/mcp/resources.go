package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

type historyRun struct {
	Timestamp  time.Time `json:"timestamp"`
	Commit     string    `json:"commit,omitempty"`
	Passed     bool      `json:"passed"`
	Violations int       `json:"violations"`
	Line       float64   `json:"line"`
	Branch     float64   `json:"branch"`
}

type historyPayload struct {
	Runs       []historyRun `json:"runs"`
	Highest    float64      `json:"highest"`
	Lowest     float64      `json:"lowest"`
	Average    float64      `json:"average"`
	FailedRuns int          `json:"failedRuns"`
	Direction  string       `json:"direction"`
	Delta      float64      `json:"delta"`
}

// handleSuggestResource returns package rule suggestions.
func (s *Server) handleSuggestResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	suggestions, err := s.svc.Suggest(ctx, application.SuggestOptions{
		ConfigPath: s.config.ConfigPath,
		Metric:     domain.MetricLine,
		Strategy:   domain.SuggestCurrent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return jsonResource(req.Params.URI, suggestions)
}

// handleHistoryResource returns recorded runs and LINE statistics.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.svc.History(ctx, application.HistoryOptions{
		ConfigPath: s.config.ConfigPath,
		Metric:     domain.MetricLine,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	payload := historyPayload{
		Runs:       make([]historyRun, 0, len(report.Entries)),
		Highest:    report.Analysis.Highest,
		Lowest:     report.Analysis.Lowest,
		Average:    report.Analysis.Average,
		FailedRuns: report.Analysis.FailedRuns,
		Direction:  string(domain.TrendStable),
	}
	for _, e := range report.Entries {
		payload.Runs = append(payload.Runs, historyRun{
			Timestamp:  e.Timestamp,
			Commit:     e.Commit,
			Passed:     e.Passed,
			Violations: e.Violations,
			Line:       domain.Round1(e.Ratios[domain.MetricLine] * 100),
			Branch:     domain.Round1(e.Ratios[domain.MetricBranch] * 100),
		})
	}
	if t, ok := report.Trend.Metrics[domain.MetricLine]; ok {
		payload.Direction = string(t.Direction)
		payload.Delta = t.Delta
	}
	return jsonResource(req.Params.URI, payload)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
