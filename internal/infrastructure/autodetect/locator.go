// Package autodetect finds JaCoCo reports in the standard Gradle and Maven
// output locations.
package autodetect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// knownReports are checked in order; CSV is preferred over XML.
var knownReports = []string{
	"build/reports/jacoco/test/jacocoTestReport.csv",
	"target/site/jacoco/jacoco.csv",
	"build/reports/jacoco/test/jacocoTestReport.xml",
	"target/site/jacoco/jacoco.xml",
}

// buildDirs are searched when no known report exists, for example in
// multi-module builds where every module has its own report.
var buildDirs = []string{"build", "target"}

// Locator finds a report under Root, or the working directory when Root is
// empty.
type Locator struct {
	Root string
}

// Locate returns the first known report location that exists, then falls
// back to the shallowest jacoco*.csv or jacoco*.xml file below a build
// directory. It returns "" when nothing is found.
func (l Locator) Locate() (string, error) {
	root := l.Root
	if root == "" {
		root = "."
	}
	for _, rel := range knownReports {
		path := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	var found []string
	for _, dir := range buildDirs {
		matches, err := scan(filepath.Join(root, dir))
		if err != nil {
			return "", err
		}
		found = append(found, matches...)
	}
	if len(found) == 0 {
		return "", nil
	}
	sort.Slice(found, func(i, j int) bool {
		di, dj := depth(found[i]), depth(found[j])
		if di != dj {
			return di < dj
		}
		ci, cj := isCSV(found[i]), isCSV(found[j])
		if ci != cj {
			return ci
		}
		return found[i] < found[j]
	})
	return found[0], nil
}

func scan(base string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != base {
				return filepath.SkipDir
			}
			return nil
		}
		if isReport(d.Name()) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

func isReport(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "jacoco") {
		return false
	}
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".xml")
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
