package domain

import "strings"

// Table is a parsed tabular input: an optional header plus data records.
// Source names the origin (usually a file path) for error messages.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToUpper(strings.TrimSpace(name))
}

// cell returns the trimmed value at position i, or false if the record is too short.
func cell(record []string, i int) (string, bool) {
	if i < 0 || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}
