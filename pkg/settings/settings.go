// Package settings provides build metadata, per-run settings, and context
// helpers shared by the replkit CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "replkit"

// ConfigEnvVar names the environment variable that points at a config file.
const ConfigEnvVar = "REPLKIT_CONFIG"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings for a single execution, resolved from flags and
// configuration before any command runs.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	LogFile     string
	Theme       string
	Style       string
	Interactive bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used by the CLI entry point.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Interactive: true,
		NoColor:     false,
		ExitOnError: true,
	}
}
