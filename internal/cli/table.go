package cli

import (
	"strings"
	"unicode/utf8"
)

// Table formats rows into aligned columns under a header and a dashed rule.
type Table struct {
	headers    []string
	rows       [][]string
	padding    int
	alignRight map[int]bool
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:    headers,
		padding:    2,
		alignRight: make(map[int]bool),
	}
}

// SetAlignRight right-aligns the column at colIndex, e.g. for numbers.
func (t *Table) SetAlignRight(colIndex int) {
	t.alignRight[colIndex] = true
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var sb strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = t.pad(cell, widths[i], i)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		sb.WriteByte('\n')
	}

	writeLine(t.headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeLine(rule)
	for _, row := range t.rows {
		writeLine(row)
	}
	return sb.String()
}

func (t *Table) pad(s string, width, col int) string {
	fill := width - utf8.RuneCountInString(s)
	if fill <= 0 {
		return s
	}
	if t.alignRight[col] {
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}
