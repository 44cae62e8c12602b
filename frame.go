// frame.go — frame records and trace capture for color-backtrace.
//
// Design goals:
//   - Interop & correctness: use runtime.Callers + runtime.CallersFrames for
//     accurate frame resolution (handles inlining correctly).
//   - Total functions: a Frame with missing fields still classifies and
//     renders; absence of data is normal, not an error.
//   - Pragmatic performance: bounded depth, one classification pass per
//     frame, cached on the record.
//
// References:
//   - runtime.Callers / CallersFrames docs and example
//   - Prefer CallersFrames over FuncForPC for inlined frames
//   - Callers skip semantics (0 = Callers, 1 = its caller)
package colorbacktrace

import (
	"runtime"
	"strings"
)

// Frame represents a single call site in a captured trace.
//
// Any field may be zero when the backend could not resolve it: an
// unresolved symbol renders as a placeholder, a missing file suppresses
// the snippet, a zero PC suppresses the address column. Classification
// results are computed once per frame and cached on the record; a Frame
// is otherwise read-only after construction.
type Frame struct {
	PC       uintptr // program counter of the call return; 0 if unknown
	Function string  // fully-qualified function name (pkg.Func or method); "" if unresolved
	File     string  // absolute file path (as provided by the backend); "" if unknown
	Line     int     // line number; 0 if unknown

	tags frameTags // lazily computed classification bits
}

// Trace is an ordered sequence of Frames, innermost call first.
//
// A Trace is created fresh per captured stack and discarded after the
// report is produced; nothing in this package retains one across calls.
// Any frame backend can produce a Trace by filling Frames directly (see
// TraceFromPCs for the common PC-slice case).
type Trace []Frame

const (
	// defaultMaxDepth is a conservative bound that captures meaningful
	// context without excessive work on the fault path.
	defaultMaxDepth = 64
)

// Capture captures the calling goroutine's stack, skipping 'skip' frames
// above the caller of Capture, with a conservative depth bound.
//
// Skip model:
//
//	user code → Capture → captureTrace → runtime.Callers
//
// Internally we add +2 in captureTrace (for runtime.Callers and itself)
// plus +1 here, so skip=0 places the first recorded frame at the caller
// of Capture.
func Capture(skip int) Trace {
	return captureTrace(skip+1, defaultMaxDepth)
}

// captureTrace captures up to maxDepth frames, skipping 'skip' initial
// frames below (and including) captureTrace itself.
func captureTrace(skip, maxDepth int) Trace {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	// +2 accounts for runtime.Callers and captureTrace.
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	return TraceFromPCs(pc[:n])
}

// TraceFromPCs resolves a slice of program counters (as produced by
// runtime.Callers or an external capture backend) into a Trace.
// Inlined calls are expanded, so the result may be longer than pcs.
func TraceFromPCs(pcs []uintptr) Trace {
	if len(pcs) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs)
	out := make(Trace, 0, len(pcs))
	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			PC:       fr.PC,
			Function: fr.Function,
			File:     fr.File,
			Line:     fr.Line,
		})
		if !more {
			break
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Classification accessors (computed once, cached on the record)
// -----------------------------------------------------------------------------

// IsRuntimeInit reports whether the frame belongs to language/runtime
// bootstrap code below the program's entry point (thread trampolines,
// runtime.main, test runners). Such frames sit at the far end of a
// trace and are hidden below Full verbosity.
func (f *Frame) IsRuntimeInit() bool {
	return f.classify()&tagRuntimeInit != 0
}

// IsDependencyCode reports whether the frame's code lives outside the
// host project's own source tree (standard library, module cache,
// vendored code). Dependency frames stay visible but render dimmed and
// without a source snippet.
func (f *Frame) IsDependencyCode() bool {
	return f.classify()&tagDependency != 0
}

// IsPostPanicMarker reports whether the frame is part of the panic
// machinery itself (runtime.gopanic and friends, or this package's own
// reporting path). Everything from the innermost frame up to the last
// marker is noise generated by the act of panicking.
func (f *Frame) IsPostPanicMarker() bool {
	return f.classify()&tagPostPanic != 0
}

func (f *Frame) classify() frameTags {
	if f.tags&tagClassified == 0 {
		f.tags = classifyFrame(f.Function, f.File)
	}
	return f.tags
}

// -----------------------------------------------------------------------------
// Name helpers for rendering
// -----------------------------------------------------------------------------

// unknownFunction is rendered in place of an unresolved symbol.
const unknownFunction = "<unknown>"

// shortName returns the function name without its package directory
// prefix: "github.com/acme/app/store.(*DB).Get" → "store.(*DB).Get".
func (f *Frame) shortName() string {
	if f.Function == "" {
		return unknownFunction
	}
	name := f.Function
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// splitSuffix splits a full function name into its base and its
// disambiguation suffix (closure numbering such as ".func1.2" or a
// generic instantiation "[...]"), so the suffix can be styled
// separately at Full verbosity. The suffix may be empty.
func splitSuffix(name string) (base, suffix string) {
	short := name
	slash := strings.LastIndexByte(name, '/')
	if slash >= 0 {
		short = name[slash+1:]
	}
	for _, marker := range []string{".func", "[...]"} {
		if i := strings.Index(short, marker); i >= 0 {
			cut := slash + 1 + i
			return name[:cut], name[cut:]
		}
	}
	return name, ""
}
