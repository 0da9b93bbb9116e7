package app

import "runtime/debug"

// Build information populated via -ldflags at build time.
// Defaults are meaningful for local development and tests.
var (
	// BuildVersion is the semantic version of the built binary.
	BuildVersion = ""
	// BuildCommit is the VCS commit SHA associated with the build.
	BuildCommit = ""
)

// Version returns the version string shown by --version.
// Priority: ldflags > module build info > "(devel)".
func Version() string {
	v := BuildVersion
	commit := BuildCommit
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "" && info.Main.Version != "" {
			v = info.Main.Version
		}
		if commit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	if v == "" {
		v = "(devel)"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit != "" {
		v += " (" + commit + ")"
	}
	return v
}
