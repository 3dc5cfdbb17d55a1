// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

import (
	"fmt"
	"strings"
)

const masterBlueprintName = "master"

// BlueprintName identifies a blueprint within one owner.
// Enforces non-empty, trimmed names.
type BlueprintName struct {
	value string
}

// Master returns the default blueprint name.
func Master() BlueprintName {
	return BlueprintName{value: masterBlueprintName}
}

// NewBlueprintName creates a BlueprintName with validation
func NewBlueprintName(name string) (BlueprintName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return BlueprintName{}, fmt.Errorf("blueprint name cannot be empty")
	}
	return BlueprintName{value: name}, nil
}

// MustNewBlueprintName creates a BlueprintName or panics
func MustNewBlueprintName(name string) BlueprintName {
	bn, err := NewBlueprintName(name)
	if err != nil {
		panic(err)
	}
	return bn
}

// String returns the string representation
func (b BlueprintName) String() string {
	return b.value
}

// IsMaster reports whether this is the default blueprint name.
func (b BlueprintName) IsMaster() bool {
	return b.value == masterBlueprintName
}

// IsEmpty returns true if this is the zero value
func (b BlueprintName) IsEmpty() bool {
	return b.value == ""
}

// Equals checks if two blueprint names are equal
func (b BlueprintName) Equals(other BlueprintName) bool {
	return b.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (b BlueprintName) MarshalText() ([]byte, error) {
	return []byte(b.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BlueprintName) UnmarshalText(data []byte) error {
	name, err := NewBlueprintName(string(data))
	if err != nil {
		return err
	}
	*b = name
	return nil
}
