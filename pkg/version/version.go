// Package version exposes the build information set through ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings
const Name = "assets-manifest"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current version info
func Get() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s %s)",
		Name, i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}

// Short returns the bare version
func Short() string {
	return Version
}

// Full returns Get().String()
func Full() string {
	return Get().String()
}
