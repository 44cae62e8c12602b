// hook.go — process-global printer installation and the recover path.
//
// Design:
//   - The global hook is an atomic snapshot pointer: Install publishes
//     a configured Printer, Uninstall clears it. Renders only ever load
//     the pointer, so reconfiguration never contends with a report in
//     flight and the fault path takes no locks.
//   - Recover is the defer-site entry point. It reports through the
//     installed printer (or a fresh default one) and then exits with
//     the runtime's panic status code, since the panic has already been
//     swallowed by recovering.
//   - Report is the non-terminating variant for callers that own their
//     recover() and want to continue.
package colorbacktrace

import (
	"os"
	"sync/atomic"
)

// panicExitCode matches the status the Go runtime exits with on an
// unrecovered panic.
const panicExitCode = 2

var installed atomic.Pointer[Printer]

// Install publishes p as the process-global printer used by Recover and
// Report. A nil p installs a default printer. The printer is treated as
// an immutable snapshot; to reconfigure, build a new one and Install it
// again.
func Install(p *Printer) {
	if p == nil {
		p = NewPrinter()
	}
	installed.Store(p)
}

// Uninstall removes the process-global printer. Recover and Report fall
// back to a default printer while none is installed.
func Uninstall() {
	installed.Store(nil)
}

// Installed returns the currently installed printer, or nil.
func Installed() *Printer {
	return installed.Load()
}

// Recover reports a panic on the calling goroutine and terminates the
// process. It must be deferred directly:
//
//	func main() {
//		defer colorbacktrace.Recover()
//		...
//	}
//
// If no panic is in flight, Recover does nothing.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	Report(r)
	os.Exit(panicExitCode)
}

// Report renders a recovered panic value with the calling goroutine's
// current stack through the installed (or a default) printer. Unlike
// Recover it returns, leaving the decision to continue or exit to the
// caller. Write failures are swallowed: there is nowhere left to report
// them from a fault path.
func Report(recovered any) {
	p := Installed()
	if p == nil {
		p = NewPrinter()
	}
	_ = p.PrintPanic(p.out, recovered, Capture(1))
}
