// Package dto contains data transfer objects for application layer use cases.
package dto

// MakeRequest encapsulates all inputs needed to build fixtures.
type MakeRequest struct {
	Overrides map[string]any
	Model     string
	Blueprint string
	Documents []string
	Count     int
	Save      bool
}

// ListRequest encapsulates inputs for listing declared blueprints.
type ListRequest struct {
	Documents []string
}
