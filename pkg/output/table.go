package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ajxudir/appupdate/pkg/utils"
)

// Column represents a single table column with its header and current width.
//
// Fields:
//   - Header: The display text for this column's header
//   - Width: The current display width for this column in cells
//   - MaxWidth: Cap on Width; longer values are truncated. Zero means no cap
type Column struct {
	Header   string
	Width    int
	MaxWidth int
	hidden   bool
}

// Table formats rows into aligned columns. Widths are measured in terminal
// cells, so wide and combining characters line up.
type Table struct {
	columns   []Column
	separator string
}

// NewTable creates a new table formatter with a two-space separator.
func NewTable() *Table {
	return &Table{
		columns:   make([]Column, 0),
		separator: "  ",
	}
}

// WithSeparator sets a custom column separator and returns the table.
func (t *Table) WithSeparator(sep string) *Table {
	t.separator = sep
	return t
}

// AddColumn adds a column with the given header and returns the table.
func (t *Table) AddColumn(header string) *Table {
	t.columns = append(t.columns, Column{Header: header, Width: utils.DisplayWidth(header)})
	return t
}

// AddColumnWithMaxWidth adds a column whose width never exceeds maxWidth.
//
// Parameters:
//   - header: The text to display in the column header
//   - maxWidth: Widest value shown; longer values end in an ellipsis
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddColumnWithMaxWidth(header string, maxWidth int) *Table {
	t.columns = append(t.columns, Column{Header: header, Width: utils.DisplayWidth(header), MaxWidth: maxWidth})
	return t
}

// AddConditionalColumn adds a column with configurable visibility and returns the table.
//
// This is useful for columns that only matter when some row has data,
// such as PUBLISHER for registry listings.
func (t *Table) AddConditionalColumn(header string, visible bool) *Table {
	t.columns = append(t.columns, Column{Header: header, Width: utils.DisplayWidth(header), hidden: !visible})
	return t
}

// UpdateWidths widens columns to fit a row of values and returns the table.
//
// Parameters:
//   - values: One string per column, hidden ones included
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) UpdateWidths(values ...string) *Table {
	for i, val := range values {
		if i >= len(t.columns) {
			break
		}
		col := &t.columns[i]
		width := utils.DisplayWidth(val)
		if col.MaxWidth > 0 && width > col.MaxWidth {
			width = col.MaxWidth
		}
		if width > col.Width {
			col.Width = width
		}
	}
	return t
}

// HeaderRow returns the formatted header row string.
func (t *Table) HeaderRow() string {
	var parts []string
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, utils.ToWidth(col.Header, col.Width))
		}
	}
	return strings.TrimRight(strings.Join(parts, t.separator), " ")
}

// SeparatorRow returns a separator row with dashes matching column widths.
func (t *Table) SeparatorRow() string {
	var parts []string
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, strings.Repeat("-", col.Width))
		}
	}
	return strings.Join(parts, t.separator)
}

// FormatRow formats a data row with proper padding for each column.
//
// Values for hidden columns must still be passed; they are skipped.
// Missing values are treated as empty strings and trailing padding is trimmed.
//
// Parameters:
//   - values: One string per column
//
// Returns:
//   - string: Formatted row with values separated by the separator
func (t *Table) FormatRow(values ...string) string {
	var parts []string
	for i, col := range t.columns {
		if col.hidden {
			continue
		}
		val := ""
		if i < len(values) {
			val = values[i]
		}
		if col.MaxWidth > 0 {
			val = utils.Truncate(val, col.MaxWidth)
		}
		parts = append(parts, utils.ToWidth(val, col.Width))
	}
	return strings.TrimRight(strings.Join(parts, t.separator), " ")
}

// ColumnCount returns the total number of columns including hidden ones.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// GetColumnWidth returns the width of a column by index, 0 if out of bounds.
func (t *Table) GetColumnWidth(index int) int {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].Width
	}
	return 0
}

// IsColumnHidden returns whether a column is hidden by index.
func (t *Table) IsColumnHidden(index int) bool {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].hidden
	}
	return true
}

// Fprint outputs the table header and separator to the given writer.
func (t *Table) Fprint(w io.Writer) {
	_, _ = fmt.Fprintln(w, t.HeaderRow())
	_, _ = fmt.Fprintln(w, t.SeparatorRow())
}
