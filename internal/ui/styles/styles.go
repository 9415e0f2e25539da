package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Centralized Lip Gloss styles for git-lab terminal output.
// All colors are specified using hex codes.

var (
	ColorWarning = lipgloss.Color("#ffd75f")
	ColorError   = lipgloss.Color("#ff005f")
	ColorSuccess = lipgloss.Color("#00ff5f")
	ColorAccent  = lipgloss.Color("#5fd7ff")
	ColorMuted   = lipgloss.Color("#a8a8a8")
)

// Set holds styles bound to one renderer, so color support follows the
// writer the output ends up on instead of os.Stdout.
type Set struct {
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
}

// For returns the style set for w.
func For(w io.Writer) Set {
	return ForRenderer(lipgloss.NewRenderer(w))
}

// ForRenderer returns the style set for an existing renderer.
func ForRenderer(r *lipgloss.Renderer) Set {
	bold := r.NewStyle().Bold(true)

	return Set{
		Info:    bold,
		Warning: bold.Foreground(ColorWarning),
		Error:   bold.Foreground(ColorError),
		Bold:    bold,
		Success: r.NewStyle().Foreground(ColorSuccess),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Header:  bold.Foreground(ColorAccent).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Border:  r.NewStyle().Foreground(ColorMuted),
	}
}
