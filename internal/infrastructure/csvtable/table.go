// Package csvtable reads and writes the comma-separated tables used for
// coverage reports and rules.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

// HeaderMode controls how the first record is treated.
type HeaderMode int

const (
	// HeaderRequired always treats the first record as the header.
	HeaderRequired HeaderMode = iota
	// HeaderDetect treats the first record as the header when it names a
	// report column in any position and holds no counts; otherwise all
	// records are data.
	HeaderDetect
)

// Read loads the table at path. Source is set to path.
func Read(path string, mode HeaderMode) (domain.Table, error) {
	f, err := pathutil.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path, mode)
}

// Decode parses CSV from r. Records may have differing lengths; column
// validation is left to the domain parsers so errors carry row numbers.
func Decode(r io.Reader, source string, mode HeaderMode) (domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := domain.Table{Source: source}
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("decode %s: %w", source, err)
		}
		if first {
			first = false
			if mode == HeaderRequired || looksLikeHeader(record) {
				table.Header = record
				continue
			}
		}
		table.Rows = append(table.Rows, record)
	}
	if mode == HeaderRequired && table.Header == nil {
		return domain.Table{}, &domain.ParseError{Kind: domain.ErrMalformedRuleRow, Source: source, Err: domain.ErrMissingHeader}
	}
	return table, nil
}

// reportColumns is the set of report column names, used to recognise a
// header in any column order.
var reportColumns = func() map[string]bool {
	set := make(map[string]bool)
	for _, name := range domain.ReportColumns() {
		set[name] = true
	}
	return set
}()

// looksLikeHeader reports whether some cell names a report column and no cell
// is a count, so a package called "group" stays a data row.
func looksLikeHeader(record []string) bool {
	named := false
	for _, cell := range record {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		if _, err := strconv.Atoi(name); err == nil {
			return false
		}
		named = named || reportColumns[name]
	}
	return named
}

// Write creates path and writes header followed by rows.
func Write(path string, header []string, rows [][]string) error {
	f, err := pathutil.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, header, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes header followed by rows as CSV.
func Encode(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
