// snippet.go — best-effort source snippet lookup for color-backtrace.
//
// Behavior:
//   - Each file is read from disk at most once per render; content (or
//     the fact that it was unreadable) is cached in a per-render map so
//     a stale cache can never outlive one report.
//   - Every failure mode — unreadable file, out-of-range line, invalid
//     UTF-8 — degrades to "no snippet"; nothing on this path can fail,
//     because it runs while the program is already reporting a fault.
package colorbacktrace

import (
	"bytes"
	"os"
	"strings"
)

// defaultSnippetRadius is the number of context lines shown before and
// after the target line (five lines total).
const defaultSnippetRadius = 2

// snippetLine is one line of a source window.
type snippetLine struct {
	number int    // 1-based line number
	text   string // line content without trailing newline
	target bool   // true for the faulting line (highlighted)
}

// sourceCache maps file paths to their split lines for the duration of
// one render. A nil value records that the file was unreadable, so the
// failed read is not retried within the same render.
type sourceCache map[string][]string

func newSourceCache() sourceCache {
	return make(sourceCache)
}

// snippet returns a window of radius lines around line in file, clamped
// to the file's bounds, or nil when no snippet can be produced. The
// target line carries the highlight flag.
func (c sourceCache) snippet(file string, line, radius int) []snippetLine {
	if file == "" || line <= 0 {
		return nil
	}
	if radius < 0 {
		radius = defaultSnippetRadius
	}

	lines, ok := c[file]
	if !ok {
		lines = readSourceLines(file)
		c[file] = lines
	}
	if lines == nil || line > len(lines) {
		return nil
	}

	first := max(line-radius, 1)
	last := min(line+radius, len(lines))

	out := make([]snippetLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, snippetLine{
			number: n,
			text:   lines[n-1],
			target: n == line,
		})
	}
	return out
}

// readSourceLines loads and splits a file, or returns nil when it is
// unreadable. Invalid UTF-8 is replaced rather than rejected: a lossy
// snippet still beats no snippet.
func readSourceLines(file string) []string {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	data = bytes.ToValidUTF8(data, []byte("�"))

	lines := strings.Split(string(data), "\n")
	// A trailing newline yields one spurious empty element.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
