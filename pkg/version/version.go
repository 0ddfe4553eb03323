package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the current version of the application
	Version = "0.1.0-dev"

	// GitCommit is the git commit hash (set during build)
	GitCommit = "unknown"

	// BuildDate is the build date (set during build)
	BuildDate = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("madara-cli version %s (commit: %s, built: %s)",
		Version, commit(), BuildDate)
}

// Short returns just the version number
func Short() string {
	return Version
}

// commit falls back to the VCS revision embedded by the Go toolchain
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return GitCommit
}
