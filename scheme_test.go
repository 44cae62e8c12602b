package colorbacktrace

import (
	"os"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestDefaultScheme_CoversAllBuiltinRoles(t *testing.T) {
	cs := DefaultScheme()
	for _, role := range BuiltinRoles() {
		st, ok := cs[role]
		require.True(t, ok, "role %q missing from default scheme", role)
		require.False(t, st.isZero(), "role %q has a zero style", role)
	}
}

func TestDefaultScheme_DefensiveCopy(t *testing.T) {
	cs := DefaultScheme()
	cs[RoleMessage] = Style{Foreground: termenv.ANSIBlue}
	require.NotEqual(t, cs[RoleMessage], DefaultScheme()[RoleMessage],
		"mutating a copy must not leak into the defaults")
}

func TestSchemeStyle_FallsBackForMissingEntries(t *testing.T) {
	sparse := ColorScheme{RoleMessage: {Foreground: termenv.ANSIBlue}}

	require.Equal(t, termenv.ANSIBlue, sparse.style(RoleMessage).Foreground)
	require.Equal(t, defaultScheme[RoleFunction], sparse.style(RoleFunction),
		"missing entries fall back to the built-in default")
	require.Equal(t, defaultScheme[RoleFile], ColorScheme{RoleFile: {}}.style(RoleFile),
		"zero entries fall back to the built-in default")
}

func TestPaint_AsciiProfilePassesThrough(t *testing.T) {
	cs := DefaultScheme()
	require.Equal(t, "plain", cs.paint(termenv.Ascii, RoleMessage, "plain"))
}

func TestPaint_ANSIProfileStyles(t *testing.T) {
	cs := DefaultScheme()
	styled := cs.paint(termenv.ANSI, RoleMessage, "bang")
	require.Contains(t, styled, "\x1b[", "expected an escape sequence")
	require.Contains(t, styled, "bang")
}

func TestColorEnabled_PrecedenceLaws(t *testing.T) {
	t.Run("NO_COLOR beats FORCE_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		t.Setenv("FORCE_COLOR", "1")
		require.False(t, colorEnabled(ColorAuto, nil))
	})
	t.Run("NO_COLOR set but empty still disables", func(t *testing.T) {
		// "Any value" includes the empty string; only absence yields
		// to FORCE_COLOR.
		t.Setenv("NO_COLOR", "")
		t.Setenv("FORCE_COLOR", "1")
		require.False(t, colorEnabled(ColorAuto, nil))
	})
	t.Run("FORCE_COLOR enables without a terminal", func(t *testing.T) {
		t.Setenv("NO_COLOR", "x") // pin for restore, then drop it
		require.NoError(t, os.Unsetenv("NO_COLOR"))
		t.Setenv("FORCE_COLOR", "1")
		require.True(t, colorEnabled(ColorAuto, nil))
	})
	t.Run("explicit modes ignore the environment", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		require.True(t, colorEnabled(ColorAlways, nil))
		t.Setenv("FORCE_COLOR", "1")
		require.False(t, colorEnabled(ColorNever, nil))
	})
	t.Run("no environment and no terminal disables color", func(t *testing.T) {
		t.Setenv("NO_COLOR", "x")
		t.Setenv("FORCE_COLOR", "x")
		require.NoError(t, os.Unsetenv("NO_COLOR"))
		require.NoError(t, os.Unsetenv("FORCE_COLOR"))
		require.False(t, colorEnabled(ColorAuto, nil))
	})
}
