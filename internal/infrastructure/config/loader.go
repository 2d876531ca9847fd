package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

type Loader struct{}

type fileConfig struct {
	Version int            `yaml:"version"`
	Report  string         `yaml:"report,omitempty"`
	Format  string         `yaml:"format,omitempty"`
	Rules   []fileRuleFile `yaml:"rules,omitempty"`
	RuleSet []fileRule     `yaml:"rule_set,omitempty"`
	Output  string         `yaml:"output,omitempty"`
	Workers int            `yaml:"workers,omitempty"`
	History string         `yaml:"history,omitempty"`
	Log     *fileLog       `yaml:"log,omitempty"`
}

type fileRuleFile struct {
	Path string `yaml:"path"`
}

type fileRule struct {
	Package string      `yaml:"package"`
	Class   string      `yaml:"class"`
	Metric  string      `yaml:"metric"`
	Limit   scalarValue `yaml:"limit"`
}

type fileLog struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// scalarValue keeps the literal text of a YAML scalar, so a limit written
// as 0.8 is not rounded through float64.
type scalarValue string

func (s *scalarValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	*s = scalarValue(node.Value)
	return nil
}

func (s scalarValue) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: string(s)}, nil
}

func (l Loader) Exists(path string) (bool, error) {
	return pathutil.Exists(path)
}

func (l Loader) Load(path string) (application.Config, error) {
	f, err := pathutil.Open(path)
	if err != nil {
		return application.Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return application.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses and validates a config document. Unknown keys are errors.
func Decode(r io.Reader) (application.Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fc fileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return application.Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := application.DefaultConfig()
	if fc.Version != 0 {
		if fc.Version != 1 {
			return application.Config{}, fmt.Errorf("unsupported config version %d", fc.Version)
		}
		cfg.Version = fc.Version
	}
	cfg.Report.Path = fc.Report
	switch application.ReportFormat(fc.Format) {
	case "":
	case application.ReportFormatAuto, application.ReportFormatCSV, application.ReportFormatXML:
		cfg.Report.Format = application.ReportFormat(fc.Format)
	default:
		return application.Config{}, fmt.Errorf("unknown report format %q", fc.Format)
	}

	for _, r := range fc.Rules {
		if r.Path == "" {
			return application.Config{}, errors.New("rules entry without path")
		}
		cfg.Rules = append(cfg.Rules, r.Path)
	}
	for _, r := range fc.RuleSet {
		cfg.RuleSet = append(cfg.RuleSet, application.InlineRule{
			Package: r.Package,
			Class:   r.Class,
			Metric:  r.Metric,
			Limit:   string(r.Limit),
		})
	}

	if fc.Output != "" {
		out, err := application.ParseOutputFormat(fc.Output)
		if err != nil {
			return application.Config{}, err
		}
		cfg.Output = out
	}
	if fc.Workers < 0 {
		return application.Config{}, fmt.Errorf("workers must not be negative, got %d", fc.Workers)
	}
	cfg.Workers = fc.Workers
	cfg.History = fc.History
	if fc.Log != nil {
		cfg.Log = application.LogConfig{Level: fc.Log.Level, Format: fc.Log.Format}
	}
	return cfg, nil
}

// Write renders cfg as YAML.
func Write(w io.Writer, cfg application.Config) error {
	out := fileConfig{
		Version: cfg.Version,
		Report:  cfg.Report.Path,
		Output:  string(cfg.Output),
		Workers: cfg.Workers,
		History: cfg.History,
	}
	if cfg.Report.Format != application.ReportFormatAuto {
		out.Format = string(cfg.Report.Format)
	}
	for _, path := range cfg.Rules {
		out.Rules = append(out.Rules, fileRuleFile{Path: path})
	}
	for _, r := range cfg.RuleSet {
		out.RuleSet = append(out.RuleSet, fileRule{
			Package: r.Package,
			Class:   r.Class,
			Metric:  r.Metric,
			Limit:   scalarValue(r.Limit),
		})
	}
	if cfg.Log != (application.LogConfig{}) {
		out.Log = &fileLog{Level: cfg.Log.Level, Format: cfg.Log.Format}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders cfg to path, creating parent directories.
func WriteFile(path string, cfg application.Config) error {
	f, err := pathutil.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
