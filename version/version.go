// Package version exposes the build information stamped into the gorgon binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Version is the semantic version of the build. It may be overridden at build time via ldflags.
var Version = "0.3.0"

// Info describes the version and VCS state of a gorgon build.
type Info struct {
	// Version is the semantic version of the build.
	Version string

	// Commit is the full git commit hash the binary was built from, if known.
	Commit string

	// CommitTime is the RFC 3339 timestamp of that commit, if known.
	CommitTime string

	// Dirty indicates the working tree carried uncommitted changes at build time.
	Dirty bool

	// GoVersion is the version of the Go toolchain which produced the binary.
	GoVersion string
}

// GetInfo resolves the build's version information from the VCS metadata the Go toolchain embeds
// into the binary. Fields without embedded metadata are left empty.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			info.CommitTime = setting.Value
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

// String returns the multi-line form of the version information printed by the version command.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gorgon version %s\n", i.Version)
	if i.Commit != "" {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if i.Dirty {
			commit += "-dirty"
		}
		fmt.Fprintf(&b, "  Commit:     %s\n", commit)
	}
	if i.CommitTime != "" {
		built := i.CommitTime
		if t, err := time.Parse(time.RFC3339, i.CommitTime); err == nil {
			built = t.Format("2006-01-02 15:04:05 MST")
		}
		fmt.Fprintf(&b, "  Built:      %s\n", built)
	}
	fmt.Fprintf(&b, "  Go version: %s\n", i.GoVersion)
	return b.String()
}
