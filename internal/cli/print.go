package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
)

func printSuggestions(w io.Writer, suggestions []domain.Suggestion) {
	fmt.Fprintf(w, "%-40s %10s %10s  %s\n", "PACKAGE", "CURRENT", "LIMIT", "REASON")
	for _, s := range suggestions {
		fmt.Fprintf(w, "%-40s %9.1f%% %9.1f%%  %s\n",
			s.Package, s.Current, s.Limit.InexactFloat64()*100, s.Reason)
	}
}

func printHistory(w io.Writer, metric domain.MetricKind, result application.HistoryReport) {
	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "No runs recorded yet. Use `jacocogate check --history <file>` to record runs.")
		return
	}

	fmt.Fprintf(w, "%-20s %-10s %-6s %10s %8s\n", "TIME", "COMMIT", "STATUS", metric, "VIOLATIONS")
	for _, e := range result.Entries {
		status := "PASS"
		if !e.Passed {
			status = "FAIL"
		}
		commit := e.Commit
		if len(commit) > 10 {
			commit = commit[:10]
		}
		fmt.Fprintf(w, "%-20s %-10s %-6s %9.1f%% %8d\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), commit, status, e.Ratios[metric]*100, e.Violations)
	}

	an := result.Analysis
	fmt.Fprintf(w, "\n%s over %d runs: high %.1f%%, low %.1f%%, average %.1f%%, %d failed\n",
		metric, an.EntriesCount, an.Highest, an.Lowest, an.Average, an.FailedRuns)

	if t, ok := result.Trend.Metrics[metric]; ok && result.Trend.Previous != nil {
		fmt.Fprintf(w, "Last change: %s %+.1f%%, violations %+d\n", t.Direction.Symbol(), t.Delta, result.Trend.ViolationDiff)
	}
}

func refuseOverwrite(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func lower(kind domain.MetricKind) string {
	return strings.ToLower(kind.String())
}
