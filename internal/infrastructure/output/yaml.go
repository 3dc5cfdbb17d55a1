package output

import (
	"io"

	"github.com/goccy/go-yaml"
)

// YAMLFormatter formats records as a YAML sequence.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the records as YAML.
func (f *YAMLFormatter) Format(records []map[string]any) error {
	if records == nil {
		records = []map[string]any{}
	}

	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(records); err != nil {
		return err
	}

	return encoder.Close()
}
