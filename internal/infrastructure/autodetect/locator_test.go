package autodetect

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLocateGradleReport(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "build/reports/jacoco/test/jacocoTestReport.xml")
	want := touch(t, root, "build/reports/jacoco/test/jacocoTestReport.csv")

	got, err := Locator{Root: root}.Locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocateMavenXML(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "target/site/jacoco/jacoco.xml")

	got, err := Locator{Root: root}.Locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocateFallsBackToScan(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "build/reports/jacoco/integration/deep/jacocoIntegration.csv")
	want := touch(t, root, "build/reports/jacoco/merged/jacocoMerged.xml")
	touch(t, root, "build/.cache/jacoco.csv")
	touch(t, root, "build/reports/coverage.csv")

	got, err := Locator{Root: root}.Locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocateNothing(t *testing.T) {
	got, err := Locator{Root: t.TempDir()}.Locate()
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no report, got %s", got)
	}
}

func TestIsReport(t *testing.T) {
	cases := map[string]bool{
		"jacoco.csv":               true,
		"jacocoTestReport.XML":     true,
		"JaCoCo-merged.csv":        true,
		"jacoco.exec":              false,
		"coverage.csv":             false,
		"jacocoTestReport.csv.bak": false,
	}
	for name, want := range cases {
		if got := isReport(name); got != want {
			t.Errorf("isReport(%q) = %v, want %v", name, got, want)
		}
	}
}
