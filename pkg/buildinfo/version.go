// Package buildinfo reports which scenedsl build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/scenedsl/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/scenedsl/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/scenedsl/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install or from a checkout fall back to what the
// toolchain embedded: the module version and the vcs.* settings.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set by ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
	// Modified is set when the checkout had uncommitted changes.
	Modified bool
}

// Get merges the ldflags values with the toolchain's build info. Stamped
// values win.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fill(info, bi)
}

func fill(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Short is the version alone, with a "+dirty" suffix for modified checkouts.
func (i Info) Short() string {
	if i.Modified {
		return i.Version + "+dirty"
	}
	return i.Version
}

func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Short(), i.Commit, i.Date)
}

// Template returns the --version template for cobra.
func Template() string {
	return "{{.Name}} " + Get().String() + "\n"
}
