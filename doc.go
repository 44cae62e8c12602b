// doc.go — package documentation for color-backtrace.
//
// Package colorbacktrace renders panics and captured stack traces as
// colorized, human-oriented reports with source snippets. It is built
// to run from inside a fault-handling context: every step of the
// pipeline is total (classification, filtering, and snippet lookup
// cannot fail), configuration is an immutable snapshot, and the only
// reportable error is the final sink write.
//
// # Pipeline
//
// A captured Trace flows through a single linear pass:
//
//	classify → filter → snippet lookup → render
//
// Classification tags each frame from data-driven heuristics: runtime
// bootstrap code, dependency code (module cache, vendor tree, GOROOT),
// and the post-panic machinery generated by the act of panicking.
// Filtering runs a first-match-wins chain — built-in filters, then user
// filters in registration order — and collapses consecutive hidden
// frames into a single reported count, so no frame ever vanishes
// silently.
//
// # Usage
//
// Install the global hook once at startup and defer the recover helper
// at the top of main (and of any goroutine that should report):
//
//	func main() {
//		colorbacktrace.Install(colorbacktrace.NewPrinter())
//		defer colorbacktrace.Recover()
//		...
//	}
//
// Traces can also be rendered without touching process globals, which
// is how tests exercise the pipeline:
//
//	p := colorbacktrace.NewPrinter().
//		WithMessage("worker crashed").
//		WithVerbosity(colorbacktrace.VerbosityFull)
//	fmt.Print(p.Format(colorbacktrace.Capture(0)))
//
// # Verbosity
//
// Three levels gate structural detail: Minimal (one line per frame),
// Medium (locations and application-frame snippets; the default), and
// Full (every frame, qualified names, addresses). The COLORBT_VERBOSITY
// variable selects the level, falling back to GOTRACEBACK; setting
// COLORBT_SHOW_HIDDEN bypasses all hiding.
//
// # Color
//
// Styling goes through semantic roles resolved against a ColorScheme
// (see BuiltinRoles). NO_COLOR disables color and takes precedence over
// FORCE_COLOR; absent both, color is enabled iff the output stream is
// an interactive terminal. Disabled color degrades to byte-identical
// plain text, never to stray escape sequences.
package colorbacktrace
