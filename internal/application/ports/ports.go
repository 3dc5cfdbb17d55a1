// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"io"

	"github.com/reglet-dev/machinist"
	"github.com/reglet-dev/machinist/internal/infrastructure/config"
)

// DocumentLoader reads blueprint documents and registers them in a catalog.
type DocumentLoader interface {
	LoadDocument(path string) (*config.Document, error)
	Register(catalog *machinist.Catalog, docs ...*config.Document) error
}

// OutputFormatter formats built records.
type OutputFormatter interface {
	Format(records []map[string]any) error
}

// FormatterFactory creates output formatters by name.
type FormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}

// FormatterOptions tunes formatter output.
type FormatterOptions struct {
	Indent bool
}
