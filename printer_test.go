package colorbacktrace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// containsInOrder reports whether all needles appear in haystack in order.
func containsInOrder(haystack string, needles ...string) bool {
	pos := 0
	for _, n := range needles {
		i := strings.Index(haystack[pos:], n)
		if i < 0 {
			return false
		}
		pos += i + len(n)
	}
	return true
}

// writeSourceFile creates a small Go-ish source file with numbered lines
// so snippet windows are easy to assert against.
func writeSourceFile(t *testing.T, lines int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= lines; i++ {
		b.WriteString("line ")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "main.go")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return path
}

// scenarioTrace builds the canonical four-frame trace: panic marker,
// application frame, dependency frame, runtime bootstrap frame.
func scenarioTrace(appFile string) Trace {
	return Trace{
		{Function: "runtime.gopanic"},
		{Function: "main.crash", File: appFile, Line: 10},
		{Function: "github.com/acme/dep.Call", File: "/home/u/go/pkg/mod/github.com/acme/dep@v1.2.3/call.go", Line: 7, PC: 0x2a},
		{Function: "runtime.goexit"},
	}
}

// testPrinter returns a printer with every environment-sensitive knob
// pinned, so output assertions are deterministic.
func testPrinter(v Verbosity) *Printer {
	return NewPrinter().
		WithColorMode(ColorNever).
		WithVerbosity(v).
		WithShowHidden(false).
		ClearFilters()
}

func TestFormat_MediumScenario(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	out := testPrinter(VerbosityMedium).Format(scenarioTrace(appFile))

	wantOrder := []string{
		defaultMessage,
		" BACKTRACE ",
		"(1 frame hidden)", // the post-panic marker
		" 1: main.crash",
		"    at " + appFile + ":10",
		"       8 │ ",
		"      10 > ",
		"      12 │ ",
		" 2: dep.Call",
		"    at /home/u/go/pkg/mod/github.com/acme/dep@v1.2.3/call.go:7",
		"(1 frame hidden)", // the runtime bootstrap tail
	}
	if !containsInOrder(out, wantOrder...) {
		t.Fatalf("medium output missing fragments %q in:\n%s", wantOrder, out)
	}

	// Dependency frames carry no snippet and no full package path.
	if strings.Contains(out, "       7 ") {
		t.Fatalf("dependency frame should have no snippet:\n%s", out)
	}
	if strings.Contains(out, " 2: github.com/acme/dep.Call") {
		t.Fatalf("medium should shorten dependency names:\n%s", out)
	}

	// Hidden frames stay off the frame list entirely.
	for _, absent := range []string{"runtime.gopanic", "runtime.goexit"} {
		if strings.Contains(out, absent) {
			t.Fatalf("%q should be hidden at medium:\n%s", absent, out)
		}
	}
}

func TestFormat_FullShowsEverything(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	out := testPrinter(VerbosityFull).Format(scenarioTrace(appFile))

	wantOrder := []string{
		" 0: runtime.gopanic",
		" 1: main.crash",
		" 2: github.com/acme/dep.Call (0x2a)",
		" 3: runtime.goexit",
	}
	if !containsInOrder(out, wantOrder...) {
		t.Fatalf("full output missing fragments %q in:\n%s", wantOrder, out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("full verbosity should hide nothing:\n%s", out)
	}
	if strings.Contains(out, EnvVerbosity+"=full") {
		t.Fatalf("full verbosity should print no escalation hint:\n%s", out)
	}
}

func TestFormat_ShowHiddenOverride(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	p := testPrinter(VerbosityMedium).
		AddFilter(func(f *Frame, _ int, _ Trace) Decision {
			return DecisionHide // hide everything
		}).
		WithShowHidden(true)

	out := p.Format(scenarioTrace(appFile))
	for _, want := range []string{"runtime.gopanic", "main.crash", "dep.Call", "runtime.goexit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("override should show %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden)") {
		t.Fatalf("override should report no hidden runs:\n%s", out)
	}
}

func TestFormat_NoFrameVanishesSilently(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	traces := []Trace{
		scenarioTrace(appFile),
		{{Function: "main.a"}, {Function: "main.b"}},
		{{Function: "runtime.gopanic"}, {Function: "runtime.goexit"}},
		{{Function: "runtime.goexit"}, {Function: "main.a"}, {Function: "runtime.goexit"}},
	}
	for _, trace := range traces {
		for i := range trace {
			trace[i].classify()
		}
		visible := computeVisibility(trace, builtinFilters(trace, VerbosityMedium), nil, false)
		total := 0
		for _, v := range visible {
			if v {
				total++
			}
		}
		for _, r := range hiddenRuns(visible) {
			total += r.count
		}
		if total != len(trace) {
			t.Fatalf("visible + hidden = %d, want %d for %v", total, len(trace), trace)
		}
	}
}

func TestFormat_Deterministic(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	p := testPrinter(VerbosityMedium)
	trace := scenarioTrace(appFile)

	first := p.Format(trace)
	second := p.Format(trace)
	if first != second {
		t.Fatalf("rendering is not deterministic:\n--- first\n%s\n--- second\n%s", first, second)
	}
}

func TestFormat_EmptyTrace(t *testing.T) {
	p := testPrinter(VerbosityMedium).WithMessage("nothing to see")
	got := p.Format(nil)
	if got != "nothing to see\n" {
		t.Fatalf("empty trace should render only the message, got %q", got)
	}
}

func TestFormat_UnreadableSourceDegrades(t *testing.T) {
	trace := Trace{
		{Function: "main.first", File: "/does/not/exist/main.go", Line: 3},
		{Function: "main.second", File: "/does/not/exist/other.go", Line: 9},
	}
	out := testPrinter(VerbosityMedium).Format(trace)

	if !containsInOrder(out, " 0: main.first", "    at /does/not/exist/main.go:3", " 1: main.second") {
		t.Fatalf("frames after an unreadable file must still render:\n%s", out)
	}
	if strings.Contains(out, " │ ") || strings.Contains(out, " > ") {
		t.Fatalf("unreadable file should produce no snippet block:\n%s", out)
	}
}

func TestFormat_MinimalIsOneLinePerFrame(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	out := testPrinter(VerbosityMinimal).Format(scenarioTrace(appFile))

	if strings.Contains(out, "    at ") {
		t.Fatalf("minimal should not print locations:\n%s", out)
	}
	if strings.Contains(out, " > ") {
		t.Fatalf("minimal should not print snippets:\n%s", out)
	}
	if !strings.Contains(out, " 1: main.crash") {
		t.Fatalf("minimal should still list visible frames:\n%s", out)
	}
}

func TestFormat_DegradedFrameData(t *testing.T) {
	trace := Trace{
		{PC: 0xdeadbeef}, // nothing resolved
		{Function: "main.known", File: "", Line: 0},
	}
	out := testPrinter(VerbosityFull).Format(trace)
	if !containsInOrder(out, " 0: <unknown> (0xdeadbeef)", " 1: main.known", "    at <unknown source file>") {
		t.Fatalf("degraded data should render placeholders:\n%s", out)
	}
}

func TestUserFilters_FirstMatchWins(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	hideDep := func(f *Frame, _ int, _ Trace) Decision {
		if strings.Contains(f.Function, "dep.Call") {
			return DecisionHide
		}
		return DecisionPass
	}
	showDep := func(f *Frame, _ int, _ Trace) Decision {
		if strings.Contains(f.Function, "dep.Call") {
			return DecisionShow
		}
		return DecisionPass
	}

	p := testPrinter(VerbosityMedium).AddFilter(hideDep).AddFilter(showDep)
	out := p.Format(scenarioTrace(appFile))
	if strings.Contains(out, "dep.Call") {
		t.Fatalf("first registered filter must win:\n%s", out)
	}

	// Built-in filters run before user filters: a user DecisionShow
	// cannot resurrect the post-panic marker below Full.
	showAll := func(_ *Frame, _ int, _ Trace) Decision { return DecisionShow }
	out = testPrinter(VerbosityMedium).AddFilter(showAll).Format(scenarioTrace(appFile))
	if strings.Contains(out, "runtime.gopanic") {
		t.Fatalf("user filter must not override built-in hiding:\n%s", out)
	}
}

func TestPrinter_CopyOnWrite(t *testing.T) {
	base := testPrinter(VerbosityMedium)
	withFilter := base.AddFilter(func(_ *Frame, _ int, _ Trace) Decision { return DecisionHide })

	if len(base.filters) != 0 {
		t.Fatalf("AddFilter mutated the receiver: %d filters", len(base.filters))
	}
	if len(withFilter.filters) != 1 {
		t.Fatalf("AddFilter did not register: %d filters", len(withFilter.filters))
	}
	if cleared := withFilter.ClearFilters(); len(cleared.filters) != 0 || len(withFilter.filters) != 1 {
		t.Fatalf("ClearFilters must not mutate the receiver")
	}

	loud := base.WithMessage("changed")
	if base.message != defaultMessage || loud.message != "changed" {
		t.Fatalf("WithMessage mutated the receiver")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestFprint_ReportsSinkError(t *testing.T) {
	err := testPrinter(VerbosityMinimal).Fprint(failingWriter{}, Trace{{Function: "main.a"}})
	if err == nil || !strings.Contains(err.Error(), "sink closed") {
		t.Fatalf("Fprint should surface the sink write error, got %v", err)
	}
}

func TestFormatPanic_BannerBlock(t *testing.T) {
	appFile := writeSourceFile(t, 12)
	p := testPrinter(VerbosityMedium).WithMessage("well, this is embarrassing")
	out := p.FormatPanic("index out of range", scenarioTrace(appFile))

	if !containsInOrder(out,
		"well, this is embarrassing",
		"Message:  index out of range",
		"Location: "+appFile+":10",
		" BACKTRACE ",
		" 1: main.crash",
	) {
		t.Fatalf("panic banner incomplete:\n%s", out)
	}
}

func TestFormatPanic_ErrorAndNilPayloads(t *testing.T) {
	p := testPrinter(VerbosityMinimal)
	if out := p.FormatPanic(errors.New("boom"), nil); !strings.Contains(out, "Message:  boom") {
		t.Fatalf("error payload not rendered: %q", out)
	}
	if out := p.FormatPanic(nil, nil); !strings.Contains(out, "Message:  <nil>") {
		t.Fatalf("nil payload not rendered: %q", out)
	}
	if out := p.FormatPanic("x", nil); !strings.Contains(out, "Location: <unknown>") {
		t.Fatalf("empty trace should yield unknown location: %q", out)
	}
}
