package application

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

type fakeConfigLoader struct {
	cfg    Config
	exists bool
	err    error
}

func (f fakeConfigLoader) Load(string) (Config, error) { return f.cfg, f.err }

func (f fakeConfigLoader) Exists(string) (bool, error) { return f.exists, nil }

type fakeTables map[string]domain.Table

func (f fakeTables) Read(path string, _ ...ReportFormat) (domain.Table, error) {
	t, ok := f[path]
	if !ok {
		return domain.Table{}, fmt.Errorf("open %s: no such file", path)
	}
	return t, nil
}

type fakeReportReader struct{ tables fakeTables }

func (f fakeReportReader) Read(path string, format ReportFormat) (domain.Table, error) {
	return f.tables.Read(path, format)
}

type fakeRulesReader struct{ tables fakeTables }

func (f fakeRulesReader) Read(path string) (domain.Table, error) {
	return f.tables.Read(path)
}

type fakeRulesWriter struct {
	path   string
	metric domain.MetricKind
	rules  []domain.RuleDefinition
}

func (f *fakeRulesWriter) Write(path string, metric domain.MetricKind, rules []domain.RuleDefinition) error {
	f.path, f.metric, f.rules = path, metric, rules
	return nil
}

type fakeReporter struct {
	results []CheckResult
	format  OutputFormat
}

func (f *fakeReporter) Write(w io.Writer, result CheckResult, format OutputFormat) error {
	f.results = append(f.results, result)
	f.format = format
	_, err := io.WriteString(w, result.Verdict.Summary())
	return err
}

type fakeHistoryStore struct {
	history domain.History
}

func (f *fakeHistoryStore) Load() (domain.History, error) { return f.history, nil }

func (f *fakeHistoryStore) Save(h domain.History) error {
	f.history = h
	return nil
}

func (f *fakeHistoryStore) Append(e domain.HistoryEntry) error {
	f.history.Entries = append(f.history.Entries, e)
	return nil
}

type fakeWatcher struct {
	paths  []string
	events chan struct{}
}

func (f *fakeWatcher) WatchFiles(paths ...string) error {
	f.paths = paths
	return nil
}

func (f *fakeWatcher) Events(context.Context) <-chan struct{} { return f.events }

func (f *fakeWatcher) Close() error { return nil }

func reportRow(pkg, class string, lineMissed, lineCovered int) []string {
	itoa := strconv.Itoa
	return []string{"app", pkg, class, "0", "0", "0", "0", itoa(lineMissed), itoa(lineCovered), "0", "0", "0", "0"}
}

func reportTable(rows ...[]string) domain.Table {
	return domain.Table{Source: "report.csv", Header: domain.ReportColumns(), Rows: rows}
}

func lineRules(rows ...[]string) domain.Table {
	return domain.Table{Source: "rules.csv", Header: domain.RulesHeader(domain.MetricLine), Rows: rows}
}
