package version

import "fmt"

// Set via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Full() string {
	return fmt.Sprintf("notecast %s, commit %s, built at %s", Version, Commit, Date)
}
