// printer.go — the backtrace printer: configuration and rendering.
//
// Scope:
//   - Printer owns the report configuration (message, verbosity, color
//     scheme, filter chain, snippet radius) and drives the pipeline:
//     classify → filter → snippet lookup → render.
//   - Copy-on-write everywhere: each With*/Add* method returns a fresh
//     Printer, so a configured Printer is an immutable snapshot that
//     any number of concurrent renders may share without locks.
//   - Rendering is total. Format cannot fail: missing symbols render as
//     placeholders, unreadable sources drop their snippet, and write
//     errors into the in-memory buffer are ignored by construction.
//     Only the final sink write (Fprint/Print) can return an error.
package colorbacktrace

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-colorable"
	"github.com/muesli/termenv"
)

// defaultMessage is the banner shown when no custom message is set.
const defaultMessage = "Oh noez! Panic! 💥"

// reportWidth is the column budget for section rules and centered notes.
const reportWidth = 80

// Printer renders captured traces as colorized reports.
//
// The zero value is not usable; construct with NewPrinter. All
// configuration methods are non-mutating and return a new Printer, so
// reconfiguration publishes a new snapshot instead of racing an
// in-flight render.
type Printer struct {
	message    string
	verbosity  Verbosity
	scheme     ColorScheme
	filters    []Filter
	showHidden bool
	radius     int
	colorMode  ColorMode
	profile    termenv.Profile
	hl         *highlighter
	out        io.Writer
}

// NewPrinter returns a Printer with environment-driven defaults:
// verbosity from COLORBT_VERBOSITY/GOTRACEBACK, the show-hidden
// override from COLORBT_SHOW_HIDDEN, and color enablement from
// NO_COLOR/FORCE_COLOR or the terminal. The environment is read here,
// once; never during a render.
func NewPrinter() *Printer {
	return &Printer{
		message:    defaultMessage,
		verbosity:  VerbosityFromEnv(),
		scheme:     DefaultScheme(),
		showHidden: showHiddenFromEnv(),
		radius:     defaultSnippetRadius,
		colorMode:  ColorAuto,
		profile:    colorProfile(colorEnabled(ColorAuto, os.Stderr)),
		out:        DefaultOutputStream(),
	}
}

// DefaultOutputStream returns the stream reports go to when no explicit
// writer is given: stderr, wrapped for ANSI handling on Windows.
func DefaultOutputStream() io.Writer {
	return colorable.NewColorableStderr()
}

func (p *Printer) clone() *Printer {
	n := *p
	if len(p.filters) > 0 {
		n.filters = make([]Filter, len(p.filters))
		copy(n.filters, p.filters)
	}
	if len(p.scheme) > 0 {
		n.scheme = make(ColorScheme, len(p.scheme))
		for role, st := range p.scheme {
			n.scheme[role] = st
		}
	}
	return &n
}

// WithMessage sets the banner text printed above the trace.
func (p *Printer) WithMessage(msg string) *Printer {
	n := p.clone()
	n.message = msg
	return n
}

// WithVerbosity overrides the environment-derived verbosity.
func (p *Printer) WithVerbosity(v Verbosity) *Printer {
	n := p.clone()
	n.verbosity = v
	return n
}

// WithScheme replaces the color scheme. The scheme is copied; missing
// roles fall back to the built-in defaults at paint time.
func (p *Printer) WithScheme(cs ColorScheme) *Printer {
	n := p.clone()
	n.scheme = make(ColorScheme, len(cs))
	for role, st := range cs {
		n.scheme[role] = st
	}
	return n
}

// WithColorMode pins color on or off, or returns to environment/tty
// detection with ColorAuto.
func (p *Printer) WithColorMode(mode ColorMode) *Printer {
	n := p.clone()
	n.colorMode = mode
	n.profile = colorProfile(colorEnabled(mode, os.Stderr))
	return n
}

// WithOutput redirects Print to w. When w is a file and the color mode
// is ColorAuto, enablement is re-resolved against that file.
func (p *Printer) WithOutput(w io.Writer) *Printer {
	n := p.clone()
	n.out = w
	if f, ok := w.(*os.File); ok && n.colorMode == ColorAuto {
		n.profile = colorProfile(colorEnabled(ColorAuto, f))
	}
	return n
}

// WithShowHidden forces every frame visible, bypassing all filters.
func (p *Printer) WithShowHidden(show bool) *Printer {
	n := p.clone()
	n.showHidden = show
	return n
}

// WithSnippetRadius sets how many context lines surround the faulting
// line. Negative values restore the default.
func (p *Printer) WithSnippetRadius(radius int) *Printer {
	n := p.clone()
	if radius < 0 {
		radius = defaultSnippetRadius
	}
	n.radius = radius
	return n
}

// WithSyntaxHighlight colorizes snippet context lines with the named
// chroma style. Only takes effect while color is enabled.
func (p *Printer) WithSyntaxHighlight(styleName string) *Printer {
	n := p.clone()
	n.hl = newHighlighter(styleName)
	return n
}

// AddFilter appends a user filter to the chain. User filters run after
// the built-in ones, in registration order; the first definite decision
// wins.
func (p *Printer) AddFilter(f Filter) *Printer {
	n := p.clone()
	n.filters = append(n.filters, f)
	return n
}

// ClearFilters removes all user filters. Built-in filtering is
// unaffected; use WithShowHidden to bypass it.
func (p *Printer) ClearFilters() *Printer {
	n := p.clone()
	n.filters = nil
	return n
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

// Format renders the trace to a string. It is deterministic for a given
// trace and configuration, and it cannot fail: degraded frame data
// renders as placeholders.
func (p *Printer) Format(trace Trace) string {
	var b strings.Builder
	b.WriteString(p.paint(RoleMessage, p.message))
	b.WriteByte('\n')
	p.renderTrace(&b, trace)
	return b.String()
}

// Fprint renders the trace and writes it to w in a single write. The
// write error, if any, is the only failure this package ever reports.
func (p *Printer) Fprint(w io.Writer, trace Trace) error {
	_, err := io.WriteString(w, p.Format(trace))
	return err
}

// Print writes the report to the configured output stream (stderr by
// default).
func (p *Printer) Print(trace Trace) error {
	return p.Fprint(p.out, trace)
}

// FormatPanic renders a recovered panic value with its banner block
// (message, payload, location) followed by the trace.
func (p *Printer) FormatPanic(recovered any, trace Trace) string {
	var b strings.Builder
	b.WriteString(p.paint(RoleMessage, p.message))
	b.WriteByte('\n')

	b.WriteString("Message:  ")
	b.WriteString(p.paint(RoleComment, panicPayload(recovered)))
	b.WriteByte('\n')

	b.WriteString("Location: ")
	if f := panicLocation(trace); f != nil && f.File != "" {
		b.WriteString(p.paint(RoleFile, f.File+":"+strconv.Itoa(f.Line)))
	} else {
		b.WriteString("<unknown>")
	}
	b.WriteByte('\n')

	p.renderTrace(&b, trace)
	return b.String()
}

// PrintPanic renders a recovered panic value to w.
func (p *Printer) PrintPanic(w io.Writer, recovered any, trace Trace) error {
	_, err := io.WriteString(w, p.FormatPanic(recovered, trace))
	return err
}

func (p *Printer) paint(role Role, text string) string {
	return p.scheme.paint(p.profile, role, text)
}

// renderTrace renders the frame section: the rule header, visible
// frames, and collapsed hidden-run counts. An empty trace renders
// nothing, so a bare message remains a valid report.
func (p *Printer) renderTrace(b *strings.Builder, trace Trace) {
	if len(trace) == 0 {
		return
	}

	b.WriteString(p.paint(RoleHeader, rule(" BACKTRACE ", reportWidth)))
	b.WriteByte('\n')

	for i := range trace {
		trace[i].classify()
	}
	visible := computeVisibility(trace, builtinFilters(trace, p.verbosity), p.filters, p.showHidden)

	runAt := make(map[int]int)
	for _, r := range hiddenRuns(visible) {
		runAt[r.start] = r.count
	}

	cache := newSourceCache()
	for i := 0; i < len(trace); {
		if n, ok := runAt[i]; ok {
			b.WriteString(p.paint(RoleComment, center(hiddenNote(n), reportWidth)))
			b.WriteByte('\n')
			i += n
			continue
		}
		p.renderFrame(b, &trace[i], i, cache)
		i++
	}

	if p.verbosity < VerbosityFull {
		b.WriteString(p.paint(RoleComment,
			"Run with "+EnvVerbosity+"=full to see all frames and source snippets."))
		b.WriteByte('\n')
	}
}

func (p *Printer) renderFrame(b *strings.Builder, f *Frame, index int, cache sourceCache) {
	nameRole := RoleFunction
	if p.verbosity >= VerbosityMedium && f.IsDependencyCode() {
		nameRole = RoleDependency
	}

	b.WriteString(p.paint(RoleHeader, fmt.Sprintf("%2d: ", index)))
	if p.verbosity >= VerbosityFull {
		if f.Function == "" {
			b.WriteString(p.paint(nameRole, unknownFunction))
		} else {
			base, suffix := splitSuffix(f.Function)
			b.WriteString(p.paint(nameRole, base))
			if suffix != "" {
				b.WriteString(p.paint(RoleHash, suffix))
			}
		}
		if f.PC != 0 {
			b.WriteString(p.paint(RoleHash, fmt.Sprintf(" (%#x)", f.PC)))
		}
	} else {
		b.WriteString(p.paint(nameRole, f.shortName()))
	}
	b.WriteByte('\n')

	if p.verbosity == VerbosityMinimal {
		return
	}

	b.WriteString("    at ")
	if f.File == "" {
		b.WriteString("<unknown source file>")
	} else {
		loc := f.File + ":"
		if f.Line > 0 {
			loc += strconv.Itoa(f.Line)
		} else {
			loc += "<unknown line>"
		}
		b.WriteString(p.paint(RoleFile, loc))
	}
	b.WriteByte('\n')

	// Snippets are for application frames; dependency internals rarely
	// help and their sources are often not on disk anyway.
	if f.IsDependencyCode() {
		return
	}
	for _, ln := range cache.snippet(f.File, f.Line, p.radius) {
		gutter := fmt.Sprintf("%8d", ln.number)
		if ln.target {
			b.WriteString(p.paint(RoleLineHighlight, gutter+" > "+ln.text))
		} else {
			text := ln.text
			if p.hl != nil && p.profile != termenv.Ascii {
				text = p.hl.line(text)
			}
			b.WriteString(gutter + " │ " + text)
		}
		b.WriteByte('\n')
	}
}

// -----------------------------------------------------------------------------
// Banner helpers
// -----------------------------------------------------------------------------

func panicPayload(recovered any) string {
	switch v := recovered.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

// panicLocation picks the frame the banner's Location line points at:
// the innermost application frame past the panic machinery, falling
// back to the innermost non-marker frame.
func panicLocation(trace Trace) *Frame {
	start := 0
	for i := range trace {
		if trace[i].IsPostPanicMarker() {
			start = i + 1
		}
	}
	var fallback *Frame
	for i := start; i < len(trace); i++ {
		f := &trace[i]
		if fallback == nil {
			fallback = f
		}
		if !f.IsDependencyCode() && f.File != "" {
			return f
		}
	}
	return fallback
}

func hiddenNote(count int) string {
	if count == 1 {
		return "(1 frame hidden)"
	}
	return "(" + strconv.Itoa(count) + " frames hidden)"
}

// rule centers title in a band of box-drawing dashes, reportWidth wide.
func rule(title string, width int) string {
	n := width - utf8.RuneCountInString(title)
	if n < 2 {
		return title
	}
	left := n / 2
	return strings.Repeat("─", left) + title + strings.Repeat("─", n-left)
}

func center(s string, width int) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return strings.Repeat(" ", n/2) + s
}
