// Package output renders command results: aligned tables for the terminal,
// JSON and CSV for machines, and the live update sink that reports
// dispatcher events while a batch runs.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ajxudir/appupdate/pkg/constants"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable is the default terminal table output.
	FormatTable Format = constants.FormatTable
	// FormatJSON outputs data as JSON.
	FormatJSON Format = constants.FormatJSON
	// FormatCSV outputs data as comma-separated values.
	FormatCSV Format = "csv"
)

// ParseFormat parses a format string into a Format type.
//
// The parsing is case-insensitive and an empty string selects the table.
//
// Parameters:
//   - s: Format string to parse (e.g., "json", "CSV")
//
// Returns:
//   - Format: The parsed format
//   - error: When s names no known format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, json or csv)", s)
	}
}

// IsStructuredFormat returns true if the format is meant for machines.
//
// Structured output goes to stdout alone, so progress lines are suppressed.
func IsStructuredFormat(f Format) bool {
	return f == FormatJSON || f == FormatCSV
}

// Formatter handles writing data in a specific format.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a new formatter for the given format and writer.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{format: format, writer: writer}
}

// Format returns the current format.
func (f *Formatter) Format() Format {
	return f.format
}

// WriteCSV writes a header row and data rows as CSV.
//
// Note: csv.Writer buffers all writes and only reports errors via Error() after Flush().
//
// Parameters:
//   - headers: Column headers for the CSV
//   - rows: Data rows, each with the same number of columns as headers
//
// Returns:
//   - error: When write or flush fails
func (f *Formatter) WriteCSV(headers []string, rows [][]string) error {
	w := csv.NewWriter(f.writer)

	_ = w.Write(headers)
	for _, row := range rows {
		_ = w.Write(row)
	}

	w.Flush()
	return w.Error()
}

// WriteJSON writes data as indented JSON followed by a newline.
//
// HTML characters are not escaped, so names like "Tom & Jerry" stay readable.
//
// Parameters:
//   - data: Data structure to encode as JSON
//
// Returns:
//   - error: When encoding fails
func (f *Formatter) WriteJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
