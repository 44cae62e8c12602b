// classify.go — heuristic frame classification for color-backtrace.
//
// Intent:
//   - Keep the heuristics as data-driven pattern tables (pattern → tag)
//     rather than scattered conditionals, so they can be tuned without
//     touching the pipeline.
//   - Classification is a pure function of symbol name and file path.
//     It never fails: absent information yields no tags, which renders
//     as ordinary application code.
//
// Conventions (documented, not enforced here):
//   - Symbol patterns are matched as prefixes of the fully-qualified
//     function name the Go runtime reports.
//   - Path patterns are matched as substrings/prefixes of the file path
//     the runtime reports (module cache, vendor tree, GOROOT).
//
// The exact pattern sets track the Go runtime's symbol conventions and
// are tuning, not contract; the read-only accessors below exist so
// callers can inspect what a build ships with.
package colorbacktrace

import (
	"runtime"
	"strings"
)

// frameTags is the cached classification bit set on a Frame.
type frameTags uint8

const (
	tagClassified frameTags = 1 << iota // classification has run
	tagRuntimeInit
	tagDependency
	tagPostPanic
)

// postPanicPrefixes matches the frames generated by the act of
// panicking itself: the runtime's panic entry points and this package's
// own reporting path. They carry zero diagnostic value — they are by
// definition the same few frames on every panic.
var postPanicPrefixes = []string{
	"runtime.gopanic",
	"runtime.sigpanic",
	"runtime.panic",   // panicmem, panicdivide, panicshift, ...
	"runtime.goPanic", // goPanicIndex, goPanicSlice, ... (bounds checks)
	"github.com/athre0z/color-backtrace.Recover",
	"github.com/athre0z/color-backtrace.Report",
	"github.com/athre0z/color-backtrace.(*Printer).PrintPanic",
	"github.com/athre0z/color-backtrace.(*Printer).FormatPanic",
}

// runtimeInitPrefixes matches runtime/test-harness bootstrap code below
// the program's entry point. These frames always sit at the far end of
// the trace, closest to process entry.
var runtimeInitPrefixes = []string{
	"runtime.main",
	"runtime.goexit",
	"runtime.rt0_go",
	"runtime.mstart",
	"runtime.mcall",
	"runtime.morestack",
	"runtime.systemstack",
	"testing.tRunner",
	"testing.runTests",
	"testing.(*M).Run",
}

// dependencySymbolPrefixes marks symbols that belong to the runtime or
// standard library even when no file path is available.
var dependencySymbolPrefixes = []string{
	"runtime.",
	"runtime/",
	"reflect.",
	"syscall.",
	"internal/",
	"testing.",
}

// dependencyPathMarkers marks file paths outside the host project's own
// source tree: the module cache and vendored code.
var dependencyPathMarkers = []string{
	"/pkg/mod/",
	"/vendor/",
}

// gorootSrc prefixes standard-library file paths. Empty in binaries
// built without GOROOT information; the symbol prefixes above still
// catch most of the standard library then.
var gorootSrc = gorootSrcPrefix()

func gorootSrcPrefix() string {
	root := runtime.GOROOT()
	if root == "" {
		return ""
	}
	return strings.TrimSuffix(root, "/") + "/src/"
}

// classifyFrame assigns tags from the pattern tables. Pure; never fails.
func classifyFrame(function, file string) frameTags {
	tags := tagClassified
	if matchesPrefix(function, postPanicPrefixes) {
		tags |= tagPostPanic
	}
	if matchesPrefix(function, runtimeInitPrefixes) {
		tags |= tagRuntimeInit
	}
	if isDependencyPath(file) || matchesPrefix(function, dependencySymbolPrefixes) {
		tags |= tagDependency
	}
	return tags
}

func matchesPrefix(name string, prefixes []string) bool {
	if name == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func isDependencyPath(file string) bool {
	if file == "" {
		return false
	}
	if gorootSrc != "" && strings.HasPrefix(file, gorootSrc) {
		return true
	}
	for _, m := range dependencyPathMarkers {
		if strings.Contains(file, m) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Read-only accessors (defensive copies)
// -----------------------------------------------------------------------------

// PostPanicPatterns returns a copy of the symbol prefixes classified as
// post-panic machinery.
func PostPanicPatterns() []string {
	out := make([]string, len(postPanicPrefixes))
	copy(out, postPanicPrefixes)
	return out
}

// RuntimeInitPatterns returns a copy of the symbol prefixes classified
// as runtime bootstrap code.
func RuntimeInitPatterns() []string {
	out := make([]string, len(runtimeInitPrefixes))
	copy(out, runtimeInitPrefixes)
	return out
}

// DependencyPathPatterns returns a copy of the file-path markers that
// classify a frame as dependency code. GOROOT is checked in addition to
// these.
func DependencyPathPatterns() []string {
	out := make([]string, len(dependencyPathMarkers))
	copy(out, dependencyPathMarkers)
	return out
}
