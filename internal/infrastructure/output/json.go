// Package output renders built fixtures.
package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats records as a JSON array.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the records as JSON.
func (f *JSONFormatter) Format(records []map[string]any) error {
	if records == nil {
		records = []map[string]any{}
	}

	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(records)
}
