package machinist

import (
	"maps"

	"github.com/reglet-dev/machinist/internal/domain/entities"
)

var (
	_ entities.Object      = (*Record)(nil)
	_ entities.Snapshotter = (*Record)(nil)
)

// Record is a schemaless object built from a record model blueprint.
type Record map[string]any

// Attribute returns the value of name.
func (r *Record) Attribute(name string) (any, bool) {
	v, ok := (*r)[name]
	return v, ok
}

// SetAttribute sets name to value.
func (r *Record) SetAttribute(name string, value any) error {
	if *r == nil {
		*r = make(Record)
	}
	(*r)[name] = value
	return nil
}

// Snapshot returns a copy of the record's attributes.
func (r *Record) Snapshot() map[string]any {
	return maps.Clone(map[string]any(*r))
}
