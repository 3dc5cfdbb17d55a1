// Package entities contains the blueprint domain model: attribute recipes,
// blueprints and the per-owner registry that stores them.
package entities

import (
	"context"

	"github.com/reglet-dev/machinist/internal/domain/values"
)

// Object is an instance under construction.
// Attributes are assigned one at a time in resolved order, so a recipe may
// read any attribute assigned before it.
type Object interface {
	Attribute(name string) (any, bool)
	SetAttribute(name string, value any) error
}

// Snapshotter is implemented by objects that can list their attributes.
type Snapshotter interface {
	Snapshot() map[string]any
}

// Recipe computes an attribute value at make time.
// It is never called when the blueprint is defined.
type Recipe func(obj Object) (any, error)

// Attribute is a named recipe.
type Attribute struct {
	Name   string
	Recipe Recipe
}

// ParentFunc resolves the parent blueprint when it is needed.
// It returns nil when there is no parent.
type ParentFunc func() *Blueprint

// Blueprint holds the attribute recipes one definition declared, plus a
// reference to the blueprint it inherits from.
type Blueprint struct {
	parent     ParentFunc
	owner      string
	name       values.BlueprintName
	attributes []Attribute
}

// NewBlueprint creates a blueprint. attributes are copied.
func NewBlueprint(owner string, name values.BlueprintName, parent ParentFunc, attributes []Attribute) *Blueprint {
	attrs := make([]Attribute, len(attributes))
	copy(attrs, attributes)
	return &Blueprint{
		owner:      owner,
		name:       name,
		parent:     parent,
		attributes: attrs,
	}
}

// Owner returns the name of the model this blueprint builds.
func (b *Blueprint) Owner() string {
	return b.owner
}

// Name returns the blueprint name.
func (b *Blueprint) Name() values.BlueprintName {
	return b.name
}

// Parent returns the parent blueprint, or nil.
func (b *Blueprint) Parent() *Blueprint {
	if b.parent == nil {
		return nil
	}
	return b.parent()
}

// Attributes returns the blueprint's own recipes in declaration order.
// Inherited recipes are not included.
func (b *Blueprint) Attributes() []Attribute {
	attrs := make([]Attribute, len(b.attributes))
	copy(attrs, b.attributes)
	return attrs
}

// Lineage returns the parent chain from the root ancestor down to b.
func (b *Blueprint) Lineage() ([]*Blueprint, error) {
	seen := make(map[*Blueprint]bool)
	var chain []*Blueprint
	for current := b; current != nil; current = current.Parent() {
		if seen[current] {
			return nil, &InheritanceCycleError{Owner: b.owner, Name: b.name.String()}
		}
		seen[current] = true
		chain = append(chain, current)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// AttributeRecorder collects recipes while a blueprint body runs.
type AttributeRecorder struct {
	index      map[string]int
	attributes []Attribute
}

// NewAttributeRecorder creates an empty recorder.
func NewAttributeRecorder() *AttributeRecorder {
	return &AttributeRecorder{index: make(map[string]int)}
}

// Record adds a recipe. Recording a name twice replaces the recipe but keeps
// the position of the first declaration.
func (r *AttributeRecorder) Record(name string, recipe Recipe) {
	if i, ok := r.index[name]; ok {
		r.attributes[i].Recipe = recipe
		return
	}
	r.index[name] = len(r.attributes)
	r.attributes = append(r.attributes, Attribute{Name: name, Recipe: recipe})
}

// Attributes returns the recorded recipes in declaration order.
func (r *AttributeRecorder) Attributes() []Attribute {
	attrs := make([]Attribute, len(r.attributes))
	copy(attrs, r.attributes)
	return attrs
}

// Engine builds instances from a blueprint.
type Engine interface {
	Blueprint() *Blueprint
	Make(obj Object, overrides map[string]any) error
}

// SavingEngine is an Engine that can also persist what it builds.
type SavingEngine interface {
	Engine
	MakeSaved(ctx context.Context, obj Object, overrides map[string]any) error
}

// EngineFactory creates the engine for a newly defined blueprint.
type EngineFactory func(bp *Blueprint) Engine

// Persister stores a fully built object. owner names the class or model
// the object was built for.
type Persister interface {
	Persist(ctx context.Context, owner string, obj Object) error
}
