// Package version carries the build stamp of the modhost binary.
//
// Release builds set the variables with the linker:
//
//	-X 'github.com/compozy/modhost/pkg/version.Version=v0.4.0'
//	-X 'github.com/compozy/modhost/pkg/version.CommitHash=abc123'
//	-X 'github.com/compozy/modhost/pkg/version.BuildDate=2025-01-01T00:00:00Z'
package version

import (
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

var (
	Version    = unknown
	CommitHash = unknown
	BuildDate  = unknown
)

type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
}

// Get returns the linker stamp. Fields left unset fall back to the module
// version and VCS settings embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
	}
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == unknown && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, s := range build.Settings {
		switch {
		case s.Key == "vcs.revision" && info.CommitHash == unknown:
			info.CommitHash = s.Value
		case s.Key == "vcs.time" && info.BuildDate == unknown:
			info.BuildDate = s.Value
		}
	}
	return info
}
