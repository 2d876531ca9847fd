// Package parsers provides a unified reader for coverage reports.
//
// The registry detects the report format and selects the matching reader.
package parsers

import (
	"fmt"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/csvtable"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/parsers/detector"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/parsers/jacocoxml"
)

type tableReader func(path string) (domain.Table, error)

// Registry reads coverage reports in any supported format.
type Registry struct {
	detector *detector.Detector
	readers  map[application.ReportFormat]tableReader
}

// NewRegistry creates a registry with the CSV and XML readers.
func NewRegistry() *Registry {
	return &Registry{
		detector: detector.New(),
		readers: map[application.ReportFormat]tableReader{
			application.ReportFormatCSV: func(path string) (domain.Table, error) {
				return csvtable.Read(path, csvtable.HeaderDetect)
			},
			application.ReportFormatXML: jacocoxml.New().Read,
		},
	}
}

// Read loads the report at path. ReportFormatAuto or an empty format
// detects the format first.
func (r *Registry) Read(path string, format application.ReportFormat) (domain.Table, error) {
	if format == "" || format == application.ReportFormatAuto {
		detected, err := r.detector.DetectFormat(path)
		if err != nil {
			return domain.Table{}, fmt.Errorf("detect format: %w", err)
		}
		format = detected
	}
	read, ok := r.readers[format]
	if !ok {
		return domain.Table{}, fmt.Errorf("unsupported report format: %s", format)
	}
	return read(path)
}

// SupportedFormats returns the formats the registry can read.
func (r *Registry) SupportedFormats() []application.ReportFormat {
	return []application.ReportFormat{application.ReportFormatCSV, application.ReportFormatXML}
}
