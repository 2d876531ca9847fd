package cli

import "fmt"

// Build metadata, set with -ldflags "-X github.com/felixgeelhaar/jacocogate/internal/cli.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func versionLine() string {
	return fmt.Sprintf("jacocogate %s (commit %s, built %s)", Version, Commit, Date)
}
