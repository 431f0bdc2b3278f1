package version

import "fmt"

// Set at build time with -ldflags "-X github.com/autorandr/autorandr-launcher/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the one-line version banner
func String() string {
	return fmt.Sprintf("autorandr-launcher %s (commit %s, built %s)", Version, Commit, Date)
}
