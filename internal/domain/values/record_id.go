package values

import (
	"fmt"

	"github.com/google/uuid"
)

// RecordID identifies a persisted fixture record.
type RecordID struct {
	value uuid.UUID
}

// NewRecordID creates a new random record ID
func NewRecordID() RecordID {
	return RecordID{value: uuid.New()}
}

// ParseRecordID parses a string into a RecordID
func ParseRecordID(s string) (RecordID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RecordID{}, fmt.Errorf("invalid record ID: %w", err)
	}
	return RecordID{value: id}, nil
}

// MustParseRecordID parses a string or panics (for tests only)
func MustParseRecordID(s string) RecordID {
	id, err := ParseRecordID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (r RecordID) String() string {
	return r.value.String()
}

// IsZero returns true if this is the zero value
func (r RecordID) IsZero() bool {
	return r.value == uuid.Nil
}

// Equals checks if two RecordIDs are equal
func (r RecordID) Equals(other RecordID) bool {
	return r.value == other.value
}
