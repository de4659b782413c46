package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetInfo will test that resolved version information carries the declared version and toolchain version.
func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

// TestInfoString will test the printed form of the version information, including commit abbreviation and the
// dirty tree marker.
func TestInfoString(t *testing.T) {
	// Verify an info without VCS metadata prints only the version and toolchain lines.
	info := Info{Version: "1.2.3", GoVersion: "go1.23.0"}
	printed := info.String()
	assert.True(t, strings.HasPrefix(printed, "gorgon version 1.2.3\n"))
	assert.NotContains(t, printed, "Commit")
	assert.Contains(t, printed, "go1.23.0")

	// Verify a dirty build prints an abbreviated commit with the dirty marker.
	info.Commit = "0123456789abcdef"
	info.Dirty = true
	assert.Contains(t, info.String(), "0123456-dirty")
}
