package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a single column for TableGrid. Width is the visual
// width of the cell content, excluding separators.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const tableGridLeftOffset = 2

var (
	gridLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#273540"))

	gridActiveRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#d7d9da")).
				Background(lipgloss.Color("#1f2530")).
				Bold(true)
)

// TableGrid renders rows under a header rule. The last column absorbs any
// width left over so every line is exactly tableWidth wide.
func TableGrid(columns []TableColumn, rows [][]string, tableWidth int) string {
	return TableGridWithActiveRow(columns, rows, tableWidth, -1)
}

// TableGridWithActiveRow is TableGrid with one highlighted row; pass -1 for
// none.
func TableGridWithActiveRow(columns []TableColumn, rows [][]string, tableWidth int, activeRow int) string {
	if tableWidth <= 0 {
		return ""
	}
	if len(columns) == 0 {
		return padRight("", tableWidth)
	}

	border := lipgloss.RoundedBorder()
	cols := fitGridColumns(columns, lipgloss.Width(border.Left), tableWidth)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}

	out := []string{
		renderGridRow(cols, header, border.Left, tableWidth, boxLabelStyle),
		renderGridRule(cols, border.Middle, border.Top, tableWidth),
	}
	for i, row := range rows {
		style := lipgloss.NewStyle()
		if i == activeRow {
			style = gridActiveRowStyle
		}
		out = append(out, renderGridRow(cols, row, border.Left, tableWidth, style))
	}
	return strings.Join(out, "\n")
}

func fitGridColumns(columns []TableColumn, sepW, tableWidth int) []TableColumn {
	fitted := append([]TableColumn(nil), columns...)
	if sepW < 1 {
		sepW = 1
	}
	sum := (len(fitted) - 1) * sepW
	for i := range fitted {
		if fitted[i].Width < 1 {
			fitted[i].Width = 1
		}
		sum += fitted[i].Width
	}
	last := &fitted[len(fitted)-1]
	last.Width += tableWidth - tableGridLeftOffset - sum
	if last.Width < 1 {
		last.Width = 1
	}
	return fitted
}

func renderGridRow(columns []TableColumn, cells []string, sep string, tableWidth int, style lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", tableGridLeftOffset))
	for i, col := range columns {
		if i > 0 {
			b.WriteString(gridLineStyle.Inline(true).Render(sep))
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		b.WriteString(style.Inline(true).Render(renderGridCell(text, col.Width, col.Align)))
	}
	return padRight(b.String(), tableWidth)
}

func renderGridRule(columns []TableColumn, cross, horiz string, tableWidth int) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = strings.Repeat(horiz, col.Width)
	}
	line := strings.Repeat(" ", tableGridLeftOffset) + strings.Join(parts, cross)
	return gridLineStyle.Inline(true).Render(padRight(line, tableWidth))
}

func renderGridCell(text string, width int, align lipgloss.Position) string {
	clamped := ClampTextWidthEllipsis(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return clamped
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + clamped + strings.Repeat(" ", pad-left)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
