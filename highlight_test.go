package colorbacktrace

import (
	"strings"
	"testing"
)

func TestHighlighter_LineKeepsContent(t *testing.T) {
	h := newHighlighter("monokai")
	if h == nil {
		t.Fatalf("expected a highlighter for the Go lexer")
	}

	got := h.line(`if err != nil {`)
	if !strings.Contains(got, "err") {
		t.Fatalf("highlighted line lost its content: %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Fatalf("highlighted line should stay a single line: %q", got)
	}
}

func TestHighlighter_UnknownStyleFallsBack(t *testing.T) {
	h := newHighlighter("no-such-style")
	if h == nil {
		t.Fatalf("unknown style should fall back, not fail")
	}
	if got := h.line("x := 1"); got == "" {
		t.Fatalf("fallback style should still render")
	}
}

func TestHighlighter_NilSafe(t *testing.T) {
	var h *highlighter
	if got := h.line("text"); got != "text" {
		t.Fatalf("nil highlighter should pass text through, got %q", got)
	}
}
