package report

import (
	"html/template"
	"io"
	"time"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Coverage Rules Report</title>
    <style>
        :root {
            --pass: #16A34A;
            --fail: #DC2626;
            --warn: #CA8A04;
            --bg: #0f172a;
            --card: #1e293b;
            --text: #f8fafc;
            --muted: #94a3b8;
            --border: #334155;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { font-size: 2rem; margin-bottom: 0.5rem; font-weight: 600; }
        h2 { font-size: 1.25rem; margin-bottom: 1rem; font-weight: 600; }
        .timestamp { color: var(--muted); font-size: 0.875rem; margin-bottom: 2rem; }
        .cards { display: flex; flex-wrap: wrap; gap: 1rem; margin-bottom: 2rem; }
        .card {
            background: var(--card);
            border: 1px solid var(--border);
            border-radius: 0.5rem;
            padding: 1rem 1.5rem;
            min-width: 10rem;
        }
        .card.pass { border-left: 4px solid var(--pass); }
        .card.fail { border-left: 4px solid var(--fail); }
        .label { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); letter-spacing: 0.05em; }
        .value { font-size: 1.5rem; font-weight: 600; }
        .value.pass, .status.pass { color: var(--pass); }
        .value.fail, .status.fail { color: var(--fail); }
        .detail { color: var(--muted); font-size: 0.75rem; }
        table {
            width: 100%;
            border-collapse: collapse;
            background: var(--card);
            border-radius: 0.5rem;
            overflow: hidden;
            margin-bottom: 2rem;
        }
        th, td { padding: 0.6rem 1rem; text-align: left; border-bottom: 1px solid var(--border); }
        th { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); background: rgba(0,0,0,0.2); }
        td.num { font-variant-numeric: tabular-nums; }
        .status { font-weight: 600; font-size: 0.75rem; }
        .bar { width: 8rem; height: 6px; background: var(--border); border-radius: 3px; overflow: hidden; display: inline-block; vertical-align: middle; margin-left: 0.5rem; }
        .fill { height: 100%; }
        .fill.pass { background: var(--pass); }
        .fill.fail { background: var(--fail); }
        .warnings { border: 1px solid rgba(202, 138, 4, 0.3); border-radius: 0.5rem; padding: 1rem; margin-bottom: 2rem; color: var(--warn); }
        .warnings li { margin-left: 1.25rem; color: var(--muted); }
        details summary { cursor: pointer; margin-bottom: 1rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Coverage Rules Report</h1>
        <p class="timestamp">Generated {{.Timestamp}}</p>

        <div class="cards">
            <div class="card {{if .Passed}}pass{{else}}fail{{end}}">
                <div class="label">Verdict</div>
                <div class="value {{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}PASS{{else}}FAIL{{end}}</div>
                <div class="detail">{{.Summary}}</div>
            </div>
            {{range .Totals}}
            <div class="card">
                <div class="label">{{.Metric}}</div>
                <div class="value">{{printf "%.1f" .Percent}}%</div>
                <div class="detail">{{.Covered}} / {{.Total}}</div>
            </div>
            {{end}}
        </div>

        {{if .Warnings}}
        <div class="warnings">
            <h2>Warnings</h2>
            <ul>{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>
        </div>
        {{end}}

        {{if .Violations}}
        <h2>Violations</h2>
        {{template "results" .Violations}}
        {{end}}

        {{if .Results}}
        <details>
            <summary>All checks ({{len .Results}})</summary>
            {{template "results" .Results}}
        </details>
        {{end}}
    </div>
</body>
</html>
{{define "results"}}
<table>
    <thead>
        <tr><th>Class</th><th>Metric</th><th>Coverage</th><th>Limit</th><th>Rule</th><th>Status</th></tr>
    </thead>
    <tbody>
        {{range .}}
        <tr>
            <td>{{.Class}}</td>
            <td>{{.Metric}}</td>
            <td class="num">{{printf "%.1f" .Percent}}%<span class="bar"><span class="fill {{.Status | lower}}" style="width: {{printf "%.0f" .Percent}}%; display: block;"></span></span></td>
            <td class="num">{{printf "%.1f" .Limit}}%</td>
            <td>{{.Rule}}</td>
            <td><span class="status {{.Status | lower}}">{{.Status}}</span></td>
        </tr>
        {{end}}
    </tbody>
</table>
{{end}}`

type htmlTotal struct {
	Metric  string
	Percent float64
	Covered int
	Total   int
}

type htmlRow struct {
	Class   string
	Metric  string
	Percent float64
	Limit   float64
	Rule    string
	Status  string
}

type htmlData struct {
	Timestamp  string
	Passed     bool
	Summary    string
	Totals     []htmlTotal
	Violations []htmlRow
	Results    []htmlRow
	Warnings   []string
}

func htmlRows(results []domain.RuleResult) []htmlRow {
	rows := make([]htmlRow, 0, len(results))
	for _, r := range results {
		status := StatusPass
		if !r.Passed {
			status = StatusFail
		}
		rows = append(rows, htmlRow{
			Class:   r.Entry.Name(),
			Metric:  r.Rule.Metric.String(),
			Percent: r.Actual * 100,
			Limit:   r.Rule.LimitFloat() * 100,
			Rule:    r.Rule.Scope(),
			Status:  status,
		})
	}
	return rows
}

func writeHTML(w io.Writer, result application.CheckResult) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"lower": func(s string) string {
			if s == StatusPass {
				return "pass"
			}
			return "fail"
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return err
	}

	data := htmlData{
		Timestamp:  time.Now().Format("2006-01-02 15:04:05"),
		Passed:     result.Verdict.Passed,
		Summary:    result.Verdict.Summary(),
		Violations: htmlRows(sortedViolations(result.Verdict)),
		Results:    htmlRows(result.Verdict.Results),
		Warnings:   result.Warnings,
	}
	for _, kind := range domain.MetricKinds() {
		c := result.Totals.Get(kind)
		data.Totals = append(data.Totals, htmlTotal{
			Metric:  kind.String(),
			Percent: c.Percent(),
			Covered: c.Covered,
			Total:   c.Total(),
		})
	}
	return tmpl.Execute(w, data)
}
