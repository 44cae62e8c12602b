// scheme.go — semantic color roles and styling for color-backtrace.
//
// Intent:
//   - A ColorScheme is a pure lookup table from semantic role to style;
//     all terminal capability handling lives in the termenv profile the
//     renderer paints through.
//   - Missing or zero entries fall back to the built-in default for
//     that role rather than failing (misconfiguration is not an error).
//   - Color enablement is resolved once, at configuration construction:
//     NO_COLOR beats FORCE_COLOR beats an interactive-terminal check.
package colorbacktrace

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Role names a semantic slot in the rendered report. Roles are
// stringly-typed so custom schemes serialize naturally; the core only
// reserves the built-ins below.
type Role string

const (
	// RoleMessage styles the panic banner and payload text.
	RoleMessage Role = "message"
	// RoleHeader styles the frame index column and section rules.
	RoleHeader Role = "frame_header"
	// RoleFunction styles application function names.
	RoleFunction Role = "function"
	// RoleDependency styles dependency-code function names (dimmed).
	RoleDependency Role = "dependency"
	// RoleHash styles disambiguation suffixes and addresses.
	RoleHash Role = "hash_suffix"
	// RoleFile styles file paths and line numbers.
	RoleFile Role = "filename"
	// RoleLineHighlight styles the faulting source line in snippets.
	RoleLineHighlight Role = "line_highlight"
	// RoleComment styles elision counts and verbosity hints.
	RoleComment Role = "comment"
)

// allBuiltinRoles is the ordered set of roles the core ships with.
// Order is stable to minimize churn in docs/examples.
var allBuiltinRoles = []Role{
	RoleMessage,
	RoleHeader,
	RoleFunction,
	RoleDependency,
	RoleHash,
	RoleFile,
	RoleLineHighlight,
	RoleComment,
}

// BuiltinRoles returns a defensive copy of the built-in roles in a
// stable order.
func BuiltinRoles() []Role {
	out := make([]Role, len(allBuiltinRoles))
	copy(out, allBuiltinRoles)
	return out
}

// Style describes how one role renders. The zero Style paints nothing.
type Style struct {
	Foreground termenv.Color
	Bold       bool
	Faint      bool
}

func (s Style) isZero() bool {
	return s.Foreground == nil && !s.Bold && !s.Faint
}

// ColorScheme maps roles to styles. Schemes are read-only during a
// render; customize by building a new map, not by mutating a shared one
// mid-render.
type ColorScheme map[Role]Style

// defaultScheme mirrors the classic color-backtrace palette: red
// application frames, green dependency frames, magenta locations,
// bright-cyan elision notes.
var defaultScheme = ColorScheme{
	RoleMessage:       {Foreground: termenv.ANSIRed, Bold: true},
	RoleHeader:        {Foreground: termenv.ANSIBrightWhite},
	RoleFunction:      {Foreground: termenv.ANSIBrightRed},
	RoleDependency:    {Foreground: termenv.ANSIGreen, Faint: true},
	RoleHash:          {Foreground: termenv.ANSIBrightBlack},
	RoleFile:          {Foreground: termenv.ANSIMagenta},
	RoleLineHighlight: {Foreground: termenv.ANSIBrightWhite, Bold: true},
	RoleComment:       {Foreground: termenv.ANSIBrightCyan},
}

// DefaultScheme returns a defensive copy of the built-in scheme,
// suitable as a starting point for customization.
func DefaultScheme() ColorScheme {
	out := make(ColorScheme, len(defaultScheme))
	for role, st := range defaultScheme {
		out[role] = st
	}
	return out
}

// style resolves a role against the scheme, falling back to the
// built-in default for missing or zero entries.
func (cs ColorScheme) style(role Role) Style {
	if st, ok := cs[role]; ok && !st.isZero() {
		return st
	}
	return defaultScheme[role]
}

// paint applies the role's style to text through the given termenv
// profile. With the Ascii profile the text passes through unmodified,
// which is how disabled color stays byte-deterministic.
func (cs ColorScheme) paint(profile termenv.Profile, role Role, text string) string {
	st := cs.style(role)
	s := profile.String(text)
	if st.Foreground != nil {
		s = s.Foreground(profile.Convert(st.Foreground))
	}
	if st.Bold {
		s = s.Bold()
	}
	if st.Faint {
		s = s.Faint()
	}
	return s.String()
}

// -----------------------------------------------------------------------------
// Color mode resolution
// -----------------------------------------------------------------------------

// ColorMode selects how color enablement is decided.
type ColorMode int8

const (
	// ColorAuto follows the environment: NO_COLOR disables, FORCE_COLOR
	// enables, otherwise color is on iff the stream is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways always emits color.
	ColorAlways
	// ColorNever never emits color.
	ColorNever
)

// colorEnabled resolves a mode against the environment and stream.
// Called once at configuration construction, never during a render.
func colorEnabled(mode ColorMode, stream *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	// NO_COLOR takes precedence over FORCE_COLOR.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	if stream == nil {
		return false
	}
	fd := stream.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// colorProfile translates the resolved enablement into the termenv
// profile every paint call goes through.
func colorProfile(enabled bool) termenv.Profile {
	if enabled {
		return termenv.ANSI
	}
	return termenv.Ascii
}
