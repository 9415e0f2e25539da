// Package render formats forge data for the terminal: markdown bodies,
// wrapped text and tables.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// EnvGlamourStyle overrides the detected markdown style, e.g. "light".
const EnvGlamourStyle = "GLAMOUR_STYLE"

const detectTimeout = 50 * time.Millisecond

// MarkdownStyle picks the glamour style for output written to w.
// GLAMOUR_STYLE wins when set to anything but "auto". Writers that are not
// a color terminal get the plain "notty" style; otherwise the terminal
// background is queried, falling back to "dark" when the terminal does not
// answer in time.
func MarkdownStyle(w io.Writer) string {
	if style := os.Getenv(EnvGlamourStyle); style != "" && style != "auto" {
		return style
	}

	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return styles.NoTTYStyle
	}

	ch := make(chan string, 1)
	go func() {
		if out.HasDarkBackground() {
			ch <- styles.DarkStyle
			return
		}
		ch <- styles.LightStyle
	}()

	select {
	case style := <-ch:
		return style
	case <-time.After(detectTimeout):
		return styles.DarkStyle
	}
}

// Markdown renders md with the given glamour style, wrapped at width.
// A width of zero or less disables wrapping.
func Markdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
