package version

import "runtime/debug"

// Build-time variables set via ldflags, e.g.
//
//	-ldflags "-X github.com/nickabs/shopfront/internal/version.version=v1.2.0"
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info represents version information
type Info struct {
	Version   string `json:"version" example:"v1.0.0"`
	BuildDate string `json:"build_date" example:"2025-01-01T12:00:00Z"`
	GitCommit string `json:"git_commit" example:"abc123"`
	GoVersion string `json:"go_version" example:"go1.26.1"`
}

// Get returns the current version information
func Get() Info {
	info := Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
	}
	return info
}

// String formats the version for cobra's --version flag
func (i Info) String() string {
	return i.Version + " (built " + i.BuildDate + ", commit " + i.GitCommit + ")"
}
