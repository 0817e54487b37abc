// Package version provides build-time metadata for the sysuuid CLI.
//
// All variables have sensible defaults and can be overridden at build time
// using -ldflags:
//
//	go build -ldflags "\
//	  -X 'github.com/slashdevops/sysuuid/internal/version.Version=1.0.0' \
//	  -X 'github.com/slashdevops/sysuuid/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)'"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// unset is the Version of a build without -ldflags.
const unset = "0.0.0"

var (
	// Version is the current version of the application
	Version = unset

	// BuildDate is the date the application was built
	BuildDate = "1970-01-01T00:00:00Z"

	// GitCommit is the commit hash the application was built from
	GitCommit = ""

	// GitBranch is the branch the application was built from
	GitBranch = ""

	// BuildUser is the user that built the application
	BuildUser = ""

	// GoVersion is the version of Go used to build the application
	GoVersion = runtime.Version()

	// GoVersionArch is the architecture of Go used to build the application
	GoVersionArch = runtime.GOARCH

	// GoVersionOS is the operating system of Go used to build the application
	GoVersionOS = runtime.GOOS
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Short returns the version, falling back to the module version recorded
// by `go install` when no version was set with -ldflags.
func Short() string {
	if Version == unset {
		if info, ok := readBuildInfo(); ok && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	return Version
}

// Long returns a one-line description of the build for the named application.
func Long(name string) string {
	var sb strings.Builder

	if Version == unset {
		if info, ok := readBuildInfo(); ok {
			fmt.Fprintf(&sb, "%s version: %s, ", name, info.Main.Version)
			fmt.Fprintf(&sb, "Git commit: %s, ", info.Main.Sum)
			fmt.Fprintf(&sb, "Go version: %s\n", info.GoVersion)

			return sb.String()
		}
	}

	fmt.Fprintf(&sb, "%s version: %s, ", name, Version)
	fmt.Fprintf(&sb, "Build date: %s, ", BuildDate)
	fmt.Fprintf(&sb, "Build user: %s, ", BuildUser)
	fmt.Fprintf(&sb, "Git commit: %s, ", GitCommit)
	fmt.Fprintf(&sb, "Git branch: %s, ", GitBranch)
	fmt.Fprintf(&sb, "Go version: %s, ", GoVersion)
	fmt.Fprintf(&sb, "Platform: %s/%s\n", GoVersionOS, GoVersionArch)

	return sb.String()
}
