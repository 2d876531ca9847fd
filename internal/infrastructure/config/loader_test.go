package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

const fullConfig = `version: 1
report: build/reports/jacoco/test/jacocoTestReport.csv
format: csv
rules:
  - path: config/jacoco/line-rules.csv
  - path: config/jacoco/branch-rules.csv
rule_set:
  - package: "com.acme.*"
    class: ""
    metric: LINE
    limit: 0.8
  - package: com.acme.core
    class: Engine
    metric: branch
    limit: "0.95"
output: json
workers: 4
history: .jacocogate/history.db
log:
  level: debug
  format: json
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".jacocogate.yaml")
	if err := os.WriteFile(path, []byte(fullConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Loader{}.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected version 1")
	}
	if cfg.Report.Path != "build/reports/jacoco/test/jacocoTestReport.csv" || cfg.Report.Format != application.ReportFormatCSV {
		t.Fatalf("unexpected report config: %+v", cfg.Report)
	}
	if len(cfg.Rules) != 2 || cfg.Rules[1] != "config/jacoco/branch-rules.csv" {
		t.Fatalf("unexpected rules: %v", cfg.Rules)
	}
	if len(cfg.RuleSet) != 2 {
		t.Fatalf("expected 2 inline rules, got %d", len(cfg.RuleSet))
	}
	if cfg.RuleSet[0].Limit != "0.8" || cfg.RuleSet[1].Limit != "0.95" {
		t.Fatalf("limits must keep their literal text: %+v", cfg.RuleSet)
	}
	if cfg.Output != application.OutputJSON || cfg.Workers != 4 {
		t.Fatalf("unexpected output/workers: %s/%d", cfg.Output, cfg.Workers)
	}
	if cfg.History != ".jacocogate/history.db" {
		t.Fatalf("unexpected history: %s", cfg.History)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}

	rules, err := domain.ParseRules(application.InlineRulesTable(cfg.RuleSet))
	if err != nil {
		t.Fatalf("inline rules should parse: %v", err)
	}
	if rules[1].Metric != domain.MetricBranch || rules[1].Scope() != "com.acme.core.Engine" {
		t.Fatalf("unexpected inline rule: %s", rules[1])
	}
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Output != application.OutputText || cfg.Report.Format != application.ReportFormatAuto {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "reprot: x.csv\n",
		"bad version":        "version: 2\n",
		"bad output":         "output: pdf\n",
		"bad format":         "format: lcov\n",
		"negative workers":   "workers: -1\n",
		"rules without path": "rules:\n  - {}\n",
		"non-scalar limit":   "rule_set:\n  - package: a\n    limit: [1]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestWriteConfig(t *testing.T) {
	cfg := dummyConfig()
	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"version: 1", "report: build/jacoco.xml", "format: xml", "- path: rules/line.csv", "rule_set:", "history: history.json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "log:") {
		t.Fatalf("empty log block should be omitted:\n%s", out)
	}

	back, err := Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode written config: %v", err)
	}
	if back.RuleSet[0] != cfg.RuleSet[0] {
		t.Fatalf("inline rule changed: %+v", back.RuleSet[0])
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".jacocogate.yaml")
	if err := WriteFile(path, dummyConfig()); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg, err := Loader{}.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report.Path != "build/jacoco.xml" {
		t.Fatalf("unexpected report path %q", cfg.Report.Path)
	}
}

func dummyConfig() application.Config {
	cfg := application.DefaultConfig()
	cfg.Report = application.ReportConfig{Path: "build/jacoco.xml", Format: application.ReportFormatXML}
	cfg.Rules = []string{"rules/line.csv"}
	cfg.RuleSet = []application.InlineRule{{Package: "com.acme.*", Metric: "LINE", Limit: "0.8"}}
	cfg.History = "history.json"
	return cfg
}

func TestExistsMissing(t *testing.T) {
	ok, err := (Loader{}).Exists(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected missing to be false")
	}
}

func TestExistsPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err := (Loader{}).Exists(path)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("expected file to exist")
	}
}
