package entities

import (
	"maps"
	"time"

	"github.com/reglet-dev/machinist/internal/domain/values"
)

// StoredRecord is a persisted copy of a built object.
type StoredRecord struct {
	SavedAt    time.Time
	Attributes map[string]any
	Model      string
	ID         values.RecordID
}

// NewStoredRecord captures the attributes of obj. obj must be a Snapshotter.
func NewStoredRecord(id values.RecordID, model string, obj Object) (*StoredRecord, error) {
	s, ok := obj.(Snapshotter)
	if !ok {
		return nil, &NotSnapshottableError{Model: model}
	}
	return &StoredRecord{
		ID:         id,
		Model:      model,
		Attributes: s.Snapshot(),
		SavedAt:    time.Now(),
	}, nil
}

// Clone returns a copy whose attribute map can be modified freely.
func (r *StoredRecord) Clone() *StoredRecord {
	clone := *r
	clone.Attributes = maps.Clone(r.Attributes)
	return &clone
}
