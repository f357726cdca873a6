package version

// Package version holds build-time metadata injected via -ldflags, e.g.
// -X cpubars/internal/version.Version=v0.3.0. When not set, helpers
// provide development defaults.

var (
	// Version is a SemVer tag like v1.2.3 for releases. Empty for dev builds.
	Version = ""
	// Commit is the short git SHA for the build.
	Commit = ""
	// Date is the UTC build timestamp in RFC3339 format.
	Date = ""
	// Dirty is "dirty" when the working tree had uncommitted changes, otherwise "clean".
	Dirty = ""
)

// String returns a compact human-readable version. Releases return Version,
// dev builds return "dev-<sha>" ("dev-<sha>*" when dirty), and "dev" when
// nothing was injected.
func String() string {
	if Version != "" {
		return Version
	}
	if Commit != "" {
		suffix := Commit
		if Dirty == "dirty" {
			suffix += "*"
		}
		return "dev-" + suffix
	}
	return "dev"
}

// Info returns the raw build metadata for JSON endpoints.
func Info() map[string]string {
	return map[string]string{
		"version": String(),
		"commit":  Commit,
		"date":    Date,
	}
}
