package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent    = lipgloss.Color("#7c3aed")
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0ea5e9"))
)

// RenderTable lays rows out under headers with column borders. With color,
// headers use the accent color and the first column (the token) is
// highlighted. Without color the table is plain ASCII.
func RenderTable(headers []string, rows [][]string, color bool) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderRow(false)

	if color {
		t.BorderStyle(lipgloss.NewStyle().Foreground(accent)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headStyle
				case col == 0:
					return keyStyle
				default:
					return lipgloss.NewStyle()
				}
			})
	}

	return t.Render()
}

// RenderFields renders label/value pairs as an aligned block, one per line.
func RenderFields(fields [][2]string, color bool) string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f[0]))
	}

	label := lipgloss.NewStyle().Width(width + 2)
	if color {
		label = label.Inherit(headStyle)
	}

	var b strings.Builder

	for _, f := range fields {
		b.WriteString(label.Render(f[0] + ":"))
		b.WriteString(f[1])
		b.WriteByte('\n')
	}

	return b.String()
}
