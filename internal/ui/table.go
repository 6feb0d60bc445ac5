package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	columnGap      = 2
	minColumnWidth = 8
)

// Table accumulates rows for aligned terminal output. Column widths
// track the widest cell seen and are clipped to the terminal on render.
// Cells may carry ANSI styling; widths are measured on the visible text.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends one row. The value count must match the headers.
func (t *Table) AddRow(values ...string) {
	if len(values) != len(t.headers) {
		panic(fmt.Sprintf("table row has %d values, want %d", len(values), len(t.headers)))
	}
	for i, value := range values {
		if width := lipgloss.Width(value); width > t.widths[i] {
			t.widths[i] = width
		}
	}
	t.rows = append(t.rows, values)
}

// RenderTable renders the table with a header rule and striped rows.
func RenderTable(t *Table) string {
	widths := t.fitWidths(TerminalWidth())

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(tableHeaderStyle.Render(formatRow(t.headers, widths)))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(strings.Repeat("─", totalWidth(widths))))
	for i, row := range t.rows {
		b.WriteString("\n")
		style := tableRowStyle
		if i%2 == 1 {
			style = tableStripeStyle
		}
		b.WriteString(style.Render(formatRow(row, widths)))
	}
	b.WriteString("\n")
	return b.String()
}

// fitWidths shrinks the widest columns one cell at a time until the
// table fits the terminal, never going below minColumnWidth.
func (t *Table) fitWidths(termWidth int) []int {
	widths := make([]int, len(t.widths))
	copy(widths, t.widths)

	for totalWidth(widths) > termWidth {
		widest := 0
		for i, width := range widths {
			if width > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

// formatRow pads each cell to its column width, measuring the visible
// text so styled cells stay aligned.
func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		cell = clip(cell, widths[i])
		b.WriteString(cell)
		if i < len(cells)-1 {
			if pad := widths[i] - lipgloss.Width(cell); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(strings.Repeat(" ", columnGap))
		}
	}
	return b.String()
}

// clip truncates a cell to the column width, keeping an ellipsis.
func clip(cell string, width int) string {
	if lipgloss.Width(cell) <= width {
		return cell
	}
	return ansi.Truncate(cell, width, "…")
}

func totalWidth(widths []int) int {
	sum := columnGap * (len(widths) - 1)
	for _, width := range widths {
		sum += width
	}
	return sum
}
