// Package versions provides build information for the gluon-census binary.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknownStr = "unknown"

// Set at build time with -ldflags "-X".
var (
	// Version is the released version of gluon-census
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = unknownStr
	// BuildDate is the RFC3339 time the binary was built
	BuildDate = unknownStr
)

// VersionInfo is the build information reported by the version command
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the build information of the running binary
func GetVersionInfo() VersionInfo {
	return versionInfo(Version, Commit, BuildDate, debug.ReadBuildInfo)
}

func versionInfo(
	version, commit, buildDate string,
	readBuildInfo func() (*debug.BuildInfo, bool),
) VersionInfo {
	if version == "dev" {
		// go install builds carry VCS stamps instead of ldflags
		if info, ok := readBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch {
				case setting.Key == "vcs.revision" && commit == unknownStr:
					commit = setting.Value
				case setting.Key == "vcs.time" && buildDate == unknownStr:
					buildDate = setting.Value
				}
			}
		}
		version = fmt.Sprintf("dev-%.8s", commit)
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// UserAgent is the User-Agent sent with every census request
func UserAgent() string {
	return "gluon-census/" + GetVersionInfo().Version
}
