// Package matcher provides a higher-order pattern matcher for
// structured mathematical expressions.
//
// Version: 0.3.0
package matcher

import "github.com/Masterminds/semver/v3"

// Version is the current version of the gomatcher implementation.
const Version = "0.3.0"

// VersionInfo provides detailed version information.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// SemVersion returns the current version parsed as semantic version
// metadata.
func SemVersion() *semver.Version {
	return semver.MustParse(Version)
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: "1.25+",
	}
}
