// Package config loads blueprint documents: YAML files declaring record
// models and their blueprints.
//
//	version: 1.0.0
//	models:
//	  User:
//	    blueprints:
//	      master:
//	        name: John
//	        email: "{{ name + '@example.com' }}"
//	  Admin:
//	    extends: User
//	    blueprints:
//	      master:
//	        role: admin
//
// Attribute order inside a blueprint is significant and preserved.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/machinist"
	"github.com/reglet-dev/machinist/internal/infrastructure/expression"
)

// SupportedVersions is the document version constraint this loader reads.
const SupportedVersions = "^1"

// Document is a parsed blueprint document.
type Document struct {
	Models  map[string]ModelSpec `yaml:"models"`
	Version string               `yaml:"version"`
	Path    string               `yaml:"-"`
}

// ModelSpec declares one record model.
type ModelSpec struct {
	Blueprints map[string]yaml.MapSlice `yaml:"blueprints"`
	Extends    string                   `yaml:"extends"`
}

// BlueprintLoader reads blueprint documents and registers them in a
// catalog.
type BlueprintLoader struct {
	compiler   *expression.Compiler
	schema     *jsonschema.Schema
	constraint *semver.Constraints
}

// NewBlueprintLoader creates a loader.
func NewBlueprintLoader() (*BlueprintLoader, error) {
	schema, err := compileDocumentSchema()
	if err != nil {
		return nil, err
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint: %w", err)
	}
	return &BlueprintLoader{
		compiler:   expression.NewCompiler(),
		schema:     schema,
		constraint: constraint,
	}, nil
}

// LoadDocument loads and validates a document from a YAML file.
func (l *BlueprintLoader) LoadDocument(path string) (*Document, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open blueprint directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open blueprint document: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	doc, err := l.LoadDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// LoadDocumentFromReader loads and validates a document from r.
func (l *BlueprintLoader) LoadDocumentFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint document: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode blueprint YAML: %w", err)
	}
	if err := validateDocument(l.schema, raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode blueprint YAML: %w", err)
	}

	version, err := semver.NewVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid document version %q: %w", doc.Version, err)
	}
	if !l.constraint.Check(version) {
		return nil, fmt.Errorf("unsupported document version %s (supported: %s)", version, SupportedVersions)
	}

	return &doc, nil
}

// Register declares every model of docs in catalog and defines their
// blueprints. Later documents replace same-named blueprints of earlier ones.
// Every extends must name a known model and inheritance may not cycle.
func (l *BlueprintLoader) Register(catalog *machinist.Catalog, docs ...*Document) error {
	for _, doc := range docs {
		for _, model := range sortedKeys(doc.Models) {
			spec := doc.Models[model]
			extends := spec.Extends
			if extends == "" {
				extends = catalog.Extends(model)
			}
			catalog.Model(model, extends)
		}
	}

	for _, doc := range docs {
		for _, model := range sortedKeys(doc.Models) {
			spec := doc.Models[model]
			for _, name := range sortedKeys(spec.Blueprints) {
				attrs, err := l.compileAttributes(spec.Blueprints[name])
				if err != nil {
					return fmt.Errorf("model %s, blueprint %s: %w", model, name, err)
				}
				if _, err := catalog.Define(model, machinist.Name(name), attrs); err != nil {
					return fmt.Errorf("model %s, blueprint %s: %w", model, name, err)
				}
			}
		}
	}

	return checkInheritance(catalog)
}

// compileAttributes turns an ordered attribute mapping into recipes.
func (l *BlueprintLoader) compileAttributes(items yaml.MapSlice) ([]machinist.Attribute, error) {
	attrs := make([]machinist.Attribute, 0, len(items))
	for _, item := range items {
		name := fmt.Sprintf("%v", item.Key)
		recipe, err := l.compiler.Compile(item.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		attrs = append(attrs, machinist.Attribute{Name: name, Recipe: recipe})
	}
	return attrs, nil
}

// checkInheritance rejects unknown parents and circular inheritance.
func checkInheritance(catalog *machinist.Catalog) error {
	known := make(map[string]bool)
	for _, model := range catalog.Models() {
		known[model] = true
	}

	for _, model := range catalog.Models() {
		visited := map[string]bool{model: true}
		for current := catalog.Extends(model); current != ""; current = catalog.Extends(current) {
			if !known[current] {
				return fmt.Errorf("model %s extends unknown model %s", model, current)
			}
			if visited[current] {
				return fmt.Errorf("circular inheritance detected: %s", model)
			}
			visited[current] = true
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
