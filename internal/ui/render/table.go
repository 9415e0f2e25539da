package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	uistyles "lab/internal/ui/styles"
)

// Table renders rows under headers with a rounded border, styled for w.
// It returns "" when there are no rows.
func Table(w io.Writer, headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	s := uistyles.For(w)
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})

	return t.String() + "\n"
}
