// Package buildinfo exposes version details set at link time:
//
//	go build -ldflags "-X github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line printed by `uft --version`.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
