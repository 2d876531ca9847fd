// Package detector implements auto-detection for coverage report formats.
//
// The detector examines file extension and content to decide between the
// JaCoCo CSV and XML readers.
package detector

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/pathutil"
)

// Detector detects coverage report formats.
type Detector struct{}

// New creates a new format detector.
func New() *Detector {
	return &Detector{}
}

// DetectFormat uses the file extension when it is conclusive and sniffs the
// first bytes otherwise. Anything that is not XML is read as CSV.
func (d *Detector) DetectFormat(path string) (application.ReportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return application.ReportFormatCSV, nil
	case ".xml":
		return application.ReportFormatXML, nil
	}

	content, err := readHead(path, 512)
	if err != nil {
		return application.ReportFormatAuto, err
	}
	return d.detectFromContent(content), nil
}

func (d *Detector) detectFromContent(content []byte) application.ReportFormat {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")))
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return application.ReportFormatXML
	}
	return application.ReportFormatCSV
}

// readHead reads the first n bytes of a file.
func readHead(path string, n int) ([]byte, error) {
	file, err := pathutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, n)
	nRead, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:nRead], nil
}
