package dto

// MakeResponse contains the built fixtures.
type MakeResponse struct {
	Records []map[string]any
	Saved   int
}

// ListResponse describes the models declared by a set of documents.
type ListResponse struct {
	Models []ModelInfo
}

// ModelInfo describes one record model.
type ModelInfo struct {
	Name       string
	Extends    string
	Blueprints []string
}
