// Package jacocoxml converts JaCoCo XML reports into the CSV report layout.
//
// JaCoCo writes the same counters in both formats; the XML form nests
// classes under packages and optional groups and names them with slashes.
package jacocoxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

// report represents the root JaCoCo XML element.
type report struct {
	XMLName  xml.Name `xml:"report"`
	Name     string   `xml:"name,attr"`
	Groups   []group  `xml:"group"`
	Packages []pkg    `xml:"package"`
}

type group struct {
	Name     string  `xml:"name,attr"`
	Groups   []group `xml:"group"`
	Packages []pkg   `xml:"package"`
}

type pkg struct {
	Name    string  `xml:"name,attr"`
	Classes []class `xml:"class"`
}

type class struct {
	Name     string    `xml:"name,attr"`
	Counters []counter `xml:"counter"`
}

type counter struct {
	Type    string `xml:"type,attr"`
	Missed  string `xml:"missed,attr"`
	Covered string `xml:"covered,attr"`
}

// Parser reads JaCoCo XML reports.
type Parser struct{}

// New creates a new JaCoCo XML parser.
func New() *Parser {
	return &Parser{}
}

// Read parses the report at path into a coverage table.
func (p *Parser) Read(path string) (domain.Table, error) {
	file, err := pathutil.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open jacoco xml: %w", err)
	}
	defer file.Close()
	return p.Decode(file, path)
}

// Decode converts one XML report into a table with the CSV report header.
// Each class becomes one row in document order. Counter values are copied
// verbatim so malformed counts surface as report row errors.
func (p *Parser) Decode(r io.Reader, source string) (domain.Table, error) {
	dec := xml.NewDecoder(r)
	// The report DTD is referenced but never needed.
	dec.Strict = false

	var rep report
	if err := dec.Decode(&rep); err != nil {
		return domain.Table{}, fmt.Errorf("decode jacoco xml: %w", err)
	}

	table := domain.Table{Source: source, Header: domain.ReportColumns()}
	appendPackages(&table, rep.Name, rep.Packages)
	for _, g := range rep.Groups {
		appendGroup(&table, rep.Name, g)
	}
	return table, nil
}

func appendGroup(table *domain.Table, parent string, g group) {
	name := g.Name
	if parent != "" {
		name = parent + "/" + g.Name
	}
	appendPackages(table, name, g.Packages)
	for _, child := range g.Groups {
		appendGroup(table, name, child)
	}
}

func appendPackages(table *domain.Table, groupName string, pkgs []pkg) {
	for _, p := range pkgs {
		pkgName := strings.ReplaceAll(p.Name, "/", ".")
		for _, c := range p.Classes {
			table.Rows = append(table.Rows, classRow(groupName, pkgName, p.Name, c))
		}
	}
}

// classRow renders a class in the CSV column order. Counter types missing
// from the XML are reported as zero.
func classRow(groupName, pkgName, pkgPath string, c class) []string {
	row := make([]string, 0, len(domain.ReportColumns()))
	row = append(row, groupName, pkgName, className(pkgPath, c.Name))

	byType := make(map[domain.MetricKind]counter, len(c.Counters))
	for _, ctr := range c.Counters {
		kind, err := domain.ParseMetricKind(ctr.Type)
		if err != nil {
			continue
		}
		byType[kind] = ctr
	}
	for _, kind := range domain.MetricKinds() {
		ctr, ok := byType[kind]
		if !ok {
			row = append(row, "0", "0")
			continue
		}
		row = append(row, ctr.Missed, ctr.Covered)
	}
	return row
}

// className strips the package path and uses dots for nested classes,
// matching the CSV report.
func className(pkgPath, name string) string {
	if pkgPath != "" {
		name = strings.TrimPrefix(name, pkgPath+"/")
	}
	return strings.ReplaceAll(name, "$", ".")
}
