// Package buildinfo carries the version stamped into release binaries.
//
// Release builds override the variables with ldflags, for example:
//
//	go build -ldflags "-X github.com/cargodot/cargodot/pkg/buildinfo.Version=v1.2.0"
//
// Unstamped builds fall back to the VCS details the Go toolchain
// records, so a plain go install still reports something useful.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release version, "dev" when unstamped.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = ""

	// Date is the build timestamp in RFC 3339 form.
	Date = ""
)

// Template is the cobra version template for the root command.
func Template() string {
	commit := orVCS(Commit, "vcs.revision", "none")
	date := orVCS(Date, "vcs.time", "unknown")
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, commit, date)
}

// orVCS returns stamped when it is set. Otherwise it looks up key in
// the embedded build info and resorts to fallback when that is missing.
func orVCS(stamped, key, fallback string) string {
	if stamped != "" {
		return stamped
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == key {
				return s.Value
			}
		}
	}
	return fallback
}
