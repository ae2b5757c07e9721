// Package misc keeps program identity: name, version and source revision.
package misc

import (
	"runtime/debug"
)

const appName = "wcb"

// Set at link time with -ldflags "-X wcb/misc.version=..."
var (
	version = ""
	gitHash = ""
)

// GetAppName returns the program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "dev"
}

// GetGitHash returns source revision the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
