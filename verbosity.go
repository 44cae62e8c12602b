// verbosity.go — verbosity policy and environment defaults.
//
// Resolution order (read once at configuration construction, never on
// the render path):
//   - COLORBT_VERBOSITY, the library-specific knob, wins when present.
//   - GOTRACEBACK, the runtime's general backtrace knob, is consulted
//     as a fallback so one variable can steer both.
//   - Unset both → Medium, the default reporting level.
//
// COLORBT_SHOW_HIDDEN, when set to any value, disables the hiding
// filters entirely for the process.
package colorbacktrace

import "os"

// Verbosity controls how much per-frame detail a report carries.
type Verbosity int8

const (
	// VerbosityMinimal prints one line per visible frame: the function
	// name only. No locations, no snippets.
	VerbosityMinimal Verbosity = iota
	// VerbosityMedium adds file:line per frame and source snippets for
	// application frames; dependency frames render dimmed, without a
	// snippet.
	VerbosityMedium
	// VerbosityFull shows every captured frame including runtime
	// bootstrap and post-panic machinery, with fully-qualified symbol
	// names, disambiguation suffixes, and addresses.
	VerbosityFull
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityMinimal:
		return "minimal"
	case VerbosityMedium:
		return "medium"
	case VerbosityFull:
		return "full"
	default:
		return "medium"
	}
}

// Environment variable names, exported so callers can document them.
const (
	// EnvVerbosity selects the report verbosity: "minimal"/"0",
	// "medium"/"1", or "full". Takes precedence over GOTRACEBACK.
	EnvVerbosity = "COLORBT_VERBOSITY"
	// EnvShowHidden, set to any value, forces every frame visible,
	// bypassing all filters.
	EnvShowHidden = "COLORBT_SHOW_HIDDEN"
)

// VerbosityFromEnv resolves the verbosity from the environment.
func VerbosityFromEnv() Verbosity {
	if v, ok := os.LookupEnv(EnvVerbosity); ok {
		switch v {
		case "full":
			return VerbosityFull
		case "minimal", "0":
			return VerbosityMinimal
		default:
			// Any other non-empty value, "medium" and "1" included.
			return VerbosityMedium
		}
	}
	switch os.Getenv("GOTRACEBACK") {
	case "none":
		return VerbosityMinimal
	case "system", "crash":
		return VerbosityFull
	default:
		return VerbosityMedium
	}
}

func showHiddenFromEnv() bool {
	_, ok := os.LookupEnv(EnvShowHidden)
	return ok
}
