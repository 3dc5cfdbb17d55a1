package entities

import (
	"errors"
	"fmt"
)

// ErrBlankAttributeName is the cause of an AttributeError for an attribute
// or override whose name is blank.
var ErrBlankAttributeName = errors.New("attribute name is blank")

// ArgumentError indicates make arguments could not be decoded into
// (count, name, overrides).
type ArgumentError struct {
	Message string
	Args    []any
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("couldn't understand arguments: %s", e.Message)
}

// NoBlueprintError indicates the requested blueprint is not defined.
type NoBlueprintError struct {
	Owner string
	Name  string
}

func (e *NoBlueprintError) Error() string {
	return fmt.Sprintf("no %s blueprint defined for %s", e.Name, e.Owner)
}

// CantSaveError indicates make-and-save was requested for an owner that
// has no persistence capability.
type CantSaveError struct {
	Owner string
	Name  string
}

func (e *CantSaveError) Error() string {
	return fmt.Sprintf("make! is not supported by blueprint %s of %s", e.Name, e.Owner)
}

// AttributeError indicates an attribute could not be computed or assigned.
type AttributeError struct {
	Cause     error
	Owner     string
	Attribute string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute %s of %s: %v", e.Attribute, e.Owner, e.Cause)
}

func (e *AttributeError) Unwrap() error {
	return e.Cause
}

// InheritanceCycleError indicates a blueprint is its own ancestor.
type InheritanceCycleError struct {
	Owner string
	Name  string
}

func (e *InheritanceCycleError) Error() string {
	return fmt.Sprintf("circular blueprint inheritance detected: %s of %s", e.Name, e.Owner)
}

// NotSnapshottableError indicates an object whose attributes cannot be listed
// and therefore cannot be stored as a record.
type NotSnapshottableError struct {
	Model string
}

func (e *NotSnapshottableError) Error() string {
	return fmt.Sprintf("cannot store %s: object does not expose its attributes", e.Model)
}
