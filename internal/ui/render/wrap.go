package render

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Wrap word-wraps text at width. Blank lines and manual line breaks are
// kept; leading and trailing spaces of each line are dropped.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			lines[i] = ""
			continue
		}
		lines[i] = wordwrap.String(line, width)
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens s to at most width runes, ending it with "…" when cut.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
