package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats records as a human-readable table with one column
// per attribute.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the records as a table.
func (f *TableFormatter) Format(records []map[string]any) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(f.writer, "No records.")
		return err
	}

	columns := columnsOf(records)
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, record := range records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			if v, ok := record[c]; ok {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// columnsOf returns every attribute name used by records, sorted.
func columnsOf(records []map[string]any) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, record := range records {
		for name := range record {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)
	return columns
}
