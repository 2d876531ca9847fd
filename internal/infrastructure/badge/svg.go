package badge

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

type Style string

const (
	StyleFlat       Style = "flat"
	StyleFlatSquare Style = "flat-square"
)

// charWidth approximates Verdana 11px glyph width in pixels.
const charWidth = 7

// Options controls badge rendering. Label defaults to "<metric> coverage".
type Options struct {
	Metric  domain.MetricKind
	Label   string
	Percent float64
	Style   Style
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="20" role="img" aria-label="{{.Label}}: {{.Value}}">
  <title>{{.Label}}: {{.Value}}</title>
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r"><rect width="{{.Width}}" height="20" rx="{{.Rx}}" fill="#fff"/></clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelWidth}}" height="20" fill="#555"/>
    <rect x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
    <rect width="{{.Width}}" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="110">
    {{template "text" segment .LabelX .LabelText .Label}}
    {{template "text" segment .ValueX .ValueText .Value}}
  </g>
</svg>
{{define "text"}}<text aria-hidden="true" x="{{.X}}" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="{{.Length}}">{{.Text}}</text>
    <text x="{{.X}}" y="140" transform="scale(.1)" textLength="{{.Length}}">{{.Text}}</text>{{end}}`

type segment struct {
	X      int
	Length int
	Text   string
}

type templateData struct {
	Label      string
	Value      string
	Color      string
	Width      int
	LabelWidth int
	ValueWidth int
	LabelX     int
	ValueX     int
	LabelText  int
	ValueText  int
	Rx         int
}

var tmpl = template.Must(template.New("badge").Funcs(template.FuncMap{
	"segment": func(x, length int, text string) segment { return segment{X: x, Length: length, Text: text} },
}).Parse(svgTemplate))

// Generate renders a shields.io style SVG badge.
func Generate(w io.Writer, opts Options) error {
	if opts.Style == "" {
		opts.Style = StyleFlat
	}
	label := opts.Label
	if label == "" {
		label = LabelFor(opts.Metric)
	}
	value := formatPercent(opts.Percent)

	labelWidth := textWidth(label) + 10
	valueWidth := textWidth(value) + 10

	rx := 3
	if opts.Style == StyleFlatSquare {
		rx = 0
	}

	// Text coordinates are scaled by 10 to match transform="scale(.1)".
	data := templateData{
		Label:      label,
		Value:      value,
		Color:      colorForPercent(opts.Percent),
		Width:      labelWidth + valueWidth,
		LabelWidth: labelWidth,
		ValueWidth: valueWidth,
		LabelX:     labelWidth * 5,
		ValueX:     labelWidth*10 + valueWidth*5,
		LabelText:  textWidth(label) * 10,
		ValueText:  textWidth(value) * 10,
		Rx:         rx,
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render badge: %w", err)
	}
	return nil
}

// WriteFile renders the badge to path, creating parent directories.
func WriteFile(path string, opts Options) error {
	f, err := pathutil.Create(path)
	if err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	if err := Generate(f, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LabelFor returns the default label for a metric, e.g. "line coverage".
func LabelFor(metric domain.MetricKind) string {
	if metric == "" {
		return "coverage"
	}
	return strings.ToLower(metric.String()) + " coverage"
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s) * charWidth
}

func formatPercent(p float64) string {
	if p == float64(int(p)) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

func colorForPercent(p float64) string {
	switch {
	case p >= 90:
		return "#4c1"
	case p >= 75:
		return "#97ca00"
	case p >= 60:
		return "#dfb317"
	default:
		return "#e05d44"
	}
}
