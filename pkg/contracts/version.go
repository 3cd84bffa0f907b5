package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release of salesreport
const Version = "0.1.0"

// Set with -ldflags "-X salesreport/pkg/contracts.GitCommit=..."; when left
// empty, the VCS stamp recorded by the go tool is used instead.
var (
	BuildTime = ""
	GitCommit = ""
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo combines the linker-provided values with the build info
// embedded in the binary.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if info.GitCommit == "" {
		info.GitCommit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// GetVersionString returns "salesreport v<Version>"
func GetVersionString() string {
	return "salesreport v" + Version
}

// GetFullVersionString is printed by -version
func GetFullVersionString() string {
	info := GetVersionInfo()
	commit := info.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit %s, built %s, %s %s)",
		GetVersionString(), commit, info.BuildTime, info.GoVersion, info.Platform)
}
