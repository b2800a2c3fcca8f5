// Package version reports build information for pixelpick. Release builds
// set the variables with ldflags; other builds fall back to the module
// build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is set via -ldflags "-X github.com/jmylchreest/pixelpick/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is set via -ldflags "-X github.com/jmylchreest/pixelpick/internal/version.Commit=$(git rev-parse HEAD)".
	Commit = "unknown"

	// Date is set via -ldflags "-X github.com/jmylchreest/pixelpick/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)".
	Date = "unknown"
)

// Info is the build information printed by the version command.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information, filling gaps from debug.BuildInfo
// when the binary was built with go install.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromBuildInfo(info, bi)
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String returns the one-line version banner.
func (i Info) String() string {
	if i.Commit != "unknown" && i.Date != "unknown" {
		return fmt.Sprintf("pixelpick version %s (commit: %s, built: %s, %s, %s)",
			i.Version, shortCommit(i.Commit), i.Date, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("pixelpick version %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
}

// String returns the version banner for this binary.
func String() string {
	return GetInfo().String()
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
