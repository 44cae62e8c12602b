// highlight.go — optional chroma-based snippet colorization.
//
// Off by default; enabled via Printer.WithSyntaxHighlight. The faulting
// line keeps its RoleLineHighlight style so it stays visually distinct
// from the highlighted context around it. Tokenization failures fall
// back to the plain line: snippets are best-effort everywhere.
package colorbacktrace

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

type highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// newHighlighter builds a Go-source highlighter for the named chroma
// style. Unknown style names fall back to chroma's fallback style.
func newHighlighter(styleName string) *highlighter {
	lexer := lexers.Get("go")
	if lexer == nil {
		return nil
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal16")
	if formatter == nil {
		return nil
	}
	return &highlighter{
		lexer:     chroma.Coalesce(lexer),
		style:     style,
		formatter: formatter,
	}
}

// line colorizes a single source line, returning it unchanged on any
// tokenization or formatting error.
func (h *highlighter) line(text string) string {
	if h == nil || text == "" {
		return text
	}
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return text
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
