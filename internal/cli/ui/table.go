// Package ui renders the terminal output of the restgen commands.
package ui

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows in aligned columns below a highlighted header
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	styles  map[int]func(string) *color.Color
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		styles:  make(map[int]func(string) *color.Color),
		noColor: noColor,
	}
}

// StyleColumn colors the cells of a column by their content
func (t *Table) StyleColumn(col int, style func(cell string) *color.Color) {
	t.styles[col] = style
}

// AddRow adds a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := t.color(color.Bold, color.FgCyan)
	rule := t.color(color.FgHiBlack)

	t.line(t.headers, widths, func(int, string) *color.Color { return header })

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	t.line(rules, widths, func(int, string) *color.Color { return rule })

	for _, row := range t.rows {
		t.line(row, widths, func(col int, cell string) *color.Color {
			if style, ok := t.styles[col]; ok {
				c := style(cell)
				if c != nil && t.noColor {
					c.DisableColor()
				}
				return c
			}
			return nil
		})
	}
}

func (t *Table) line(cells []string, widths []int, colorOf func(int, string) *color.Color) {
	for i, cell := range cells {
		text := cell
		if i < len(cells)-1 {
			text = padRight(cell, widths[i]) + "  "
		}
		if c := colorOf(i, cell); c != nil {
			c.Fprint(t.writer, text)
		} else {
			fmt.Fprint(t.writer, text)
		}
	}
	fmt.Fprintln(t.writer)
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// MethodColor colors an HTTP method the way the route listing shows it
func MethodColor(method string) *color.Color {
	switch method {
	case http.MethodGet:
		return color.New(color.FgGreen)
	case http.MethodPost:
		return color.New(color.FgYellow)
	case http.MethodPut:
		return color.New(color.FgBlue)
	case http.MethodDelete:
		return color.New(color.FgRed)
	}
	return nil
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs with the values aligned
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		if n := utf8.RuneCountInString(k); n > width {
			width = n
		}
	}

	cyan := color.New(color.FgCyan)
	if t.noColor {
		cyan.DisableColor()
	}
	for i, k := range t.keys {
		cyan.Fprint(t.writer, padRight(k+":", width+1))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Header writes a bold title underlined to its length
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		gray.DisableColor()
	}
	bold.Fprintln(w, title)
	gray.Fprintln(w, strings.Repeat("─", utf8.RuneCountInString(title)))
}
