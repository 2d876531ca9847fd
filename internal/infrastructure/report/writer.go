package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/csvtable"
)

// Status labels used by every output format.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Column names appended to the rules layout in CSV output.
const (
	ColumnActual = "ACTUAL"
	ColumnStatus = "STATUS"
)

type Writer struct{}

func (Writer) Write(w io.Writer, result application.CheckResult, format application.OutputFormat) error {
	switch format {
	case application.OutputJSON:
		return writeJSON(w, result)
	case application.OutputHTML:
		return writeHTML(w, result)
	case application.OutputBrief:
		return writeBrief(w, result)
	case application.OutputCSV:
		return writeCSV(w, result)
	case application.OutputText, "":
		return writeText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonResult struct {
	Class   string  `json:"class"`
	Package string  `json:"package"`
	Metric  string  `json:"metric"`
	Missed  int     `json:"missed"`
	Covered int     `json:"covered"`
	Actual  float64 `json:"actual"`
	Limit   string  `json:"limit"`
	Rule    string  `json:"rule"`
	Source  string  `json:"source,omitempty"`
	Passed  bool    `json:"passed"`
}

type jsonTrend struct {
	Metric    string  `json:"metric"`
	Direction string  `json:"direction"`
	Delta     float64 `json:"delta"`
}

func toJSONResult(r domain.RuleResult) jsonResult {
	return jsonResult{
		Class:   r.Entry.Class,
		Package: r.Entry.Package,
		Metric:  r.Rule.Metric.String(),
		Missed:  r.Counter.Missed,
		Covered: r.Counter.Covered,
		Actual:  r.Actual,
		Limit:   r.Rule.Limit.String(),
		Rule:    r.Rule.Scope(),
		Source:  ruleSource(r.Rule),
		Passed:  r.Passed,
	}
}

func writeJSON(w io.Writer, result application.CheckResult) error {
	payload := struct {
		Summary struct {
			Pass       bool   `json:"pass"`
			Entries    int    `json:"entries"`
			Rules      int    `json:"rules"`
			Evaluated  int    `json:"evaluated"`
			Violations int    `json:"violations"`
			Message    string `json:"message"`
		} `json:"summary"`
		Totals     map[string]domain.Counter `json:"totals"`
		Violations []jsonResult              `json:"violations"`
		Results    []jsonResult              `json:"results"`
		Trend      []jsonTrend               `json:"trend,omitempty"`
		Warnings   []string                  `json:"warnings,omitempty"`
	}{
		Totals:     make(map[string]domain.Counter),
		Violations: make([]jsonResult, 0, len(result.Verdict.Violations)),
		Results:    make([]jsonResult, 0, len(result.Verdict.Results)),
		Warnings:   result.Warnings,
	}
	v := result.Verdict
	payload.Summary.Pass = v.Passed
	payload.Summary.Entries = len(result.Entries)
	payload.Summary.Rules = len(result.Rules)
	payload.Summary.Evaluated = v.EvaluatedCount()
	payload.Summary.Violations = v.FailingCount()
	payload.Summary.Message = v.Summary()
	for _, kind := range domain.MetricKinds() {
		payload.Totals[kind.String()] = result.Totals.Get(kind)
	}
	for _, r := range v.Violations {
		payload.Violations = append(payload.Violations, toJSONResult(r))
	}
	for _, r := range v.Results {
		payload.Results = append(payload.Results, toJSONResult(r))
	}
	payload.Trend = trendRows(result.Trend)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func trendRows(trend *domain.TrendAnalysisResult) []jsonTrend {
	if trend == nil || trend.Previous == nil {
		return nil
	}
	var rows []jsonTrend
	for _, kind := range domain.MetricKinds() {
		t, ok := trend.Metrics[kind]
		if !ok {
			continue
		}
		rows = append(rows, jsonTrend{Metric: kind.String(), Direction: string(t.Direction), Delta: t.Delta})
	}
	return rows
}

func writeText(w io.Writer, result application.CheckResult) error {
	colorize := colorEnabled(w)
	passStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	deltaUpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	deltaDownStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))

	v := result.Verdict
	if len(v.Violations) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "Class\tMetric\tCoverage\tLimit\tRule\tStatus")
		for _, r := range v.Violations {
			status := StatusFail
			if colorize {
				status = failStyle.Render(status)
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%.1f%%\t%s\t%s\n",
				r.Entry.Name(), r.Rule.Metric, r.Actual*100, r.Rule.LimitFloat()*100, r.Rule.Scope(), status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Totals:")
	ttw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, kind := range domain.MetricKinds() {
		c := result.Totals.Get(kind)
		line := fmt.Sprintf("  %s\t%.1f%%\t%d/%d", kind, c.Percent(), c.Covered, c.Total())
		if delta, ok := trendDelta(result.Trend, kind); ok {
			deltaStr := fmt.Sprintf("%+.1f%%", delta)
			if colorize {
				if delta > 0 {
					deltaStr = deltaUpStyle.Render(deltaStr)
				} else if delta < 0 {
					deltaStr = deltaDownStyle.Render(deltaStr)
				}
			}
			line += "\t" + deltaStr
		}
		_, _ = fmt.Fprintln(ttw, line)
	}
	if err := ttw.Flush(); err != nil {
		return err
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}

	summary := v.Summary()
	if colorize {
		if v.Passed {
			summary = passStyle.Render(summary)
		} else {
			summary = failStyle.Render(summary)
		}
	}
	fmt.Fprintf(w, "\n%s\n", summary)
	return nil
}

func trendDelta(trend *domain.TrendAnalysisResult, kind domain.MetricKind) (float64, bool) {
	if trend == nil || trend.Previous == nil {
		return 0, false
	}
	t, ok := trend.Metrics[kind]
	return t.Delta, ok
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// writeBrief outputs a single-line summary optimized for LLM/agent consumption.
// Format: STATUS | LINE XX.X% BRANCH XX.X% | N/M checks passing [| failing: cls LINE (XX.X% < YY.Y%), ...]
func writeBrief(w io.Writer, result application.CheckResult) error {
	v := result.Verdict
	status := StatusPass
	if !v.Passed {
		status = StatusFail
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s | LINE %.1f%% BRANCH %.1f%% | %d/%d checks passing",
		status,
		result.Totals.Get(domain.MetricLine).Percent(),
		result.Totals.Get(domain.MetricBranch).Percent(),
		v.PassingCount(), v.EvaluatedCount())

	if len(v.Violations) > 0 {
		sb.WriteString(" | failing:")
		for i, r := range v.Violations {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " %s %s (%.1f%% < %.1f%%)", r.Entry.Name(), r.Rule.Metric, r.Actual*100, r.Rule.LimitFloat()*100)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintf(&sb, " | %d warnings", len(result.Warnings))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeCSV emits one row per check in the rules table layout followed by
// ACTUAL and STATUS. A single metric kind uses its concrete column pair;
// mixed kinds fall back to the generic pair plus METRIC.
func writeCSV(w io.Writer, result application.CheckResult) error {
	kinds := make(map[domain.MetricKind]bool)
	for _, r := range result.Verdict.Results {
		kinds[r.Rule.Metric] = true
	}

	var header []string
	var single domain.MetricKind
	if len(kinds) == 1 {
		for k := range kinds {
			single = k
		}
		header = domain.RulesHeader(single)
	} else {
		header = domain.GenericRulesHeader()
	}
	header = append(header, ColumnActual, ColumnStatus)

	rows := make([][]string, 0, len(result.Verdict.Results))
	for _, r := range result.Verdict.Results {
		row := []string{
			r.Entry.Package,
			r.Entry.Class,
			strconv.Itoa(r.Counter.Missed),
			strconv.Itoa(r.Counter.Covered),
			r.Rule.Limit.String(),
		}
		if single == "" {
			row = append(row, r.Rule.Metric.String())
		}
		status := StatusPass
		if !r.Passed {
			status = StatusFail
		}
		row = append(row, strconv.FormatFloat(r.Actual, 'f', 4, 64), status)
		rows = append(rows, row)
	}
	return csvtable.Encode(w, header, rows)
}

func ruleSource(rule domain.RuleDefinition) string {
	if rule.Source == "" {
		return ""
	}
	if rule.Row > 0 {
		return fmt.Sprintf("%s:%d", rule.Source, rule.Row)
	}
	return rule.Source
}

// sortedViolations orders violations by shortfall, largest first.
func sortedViolations(v domain.Verdict) []domain.RuleResult {
	out := append([]domain.RuleResult(nil), v.Violations...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Shortfall() > out[j].Shortfall()
	})
	return out
}
