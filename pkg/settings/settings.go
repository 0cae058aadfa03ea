// Package settings carries the per-run CLI parameters and the build
// metadata stamped into the binary, plus the context plumbing that makes
// both reachable from command handlers.
package settings

// CliBinaryName is the binary name used in help text and log fields.
const CliBinaryName = "kvset"

// VersionInformation describes the running binary. Release builds overwrite
// the fields through ldflags; a dev build keeps these placeholders.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// InputSettings says where the document under edit comes from: a file on
// disk or standard input, and whether the result is written back in place.
type InputSettings struct {
	FromStdin bool
	FromFile  bool
	Path      string
	InPlace   bool
}

// VersionInfo is the build stamp: commit hash, semantic version, and the
// time the release was cut.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run collects everything one invocation needs: the log level, the input
// source, and the output and error-handling switches.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults a bare invocation starts from: read
// from stdin, full output, exit nonzero on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Input: InputSettings{
			FromStdin: true,
			FromFile:  false,
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
