package entities

import (
	"sort"
	"sync"

	"github.com/reglet-dev/machinist/internal/domain/values"
)

// Registry stores the named blueprints of one owner.
//
// Define and Clear belong to the setup phase of a test suite. The map is
// guarded so that Make calls against an already populated registry may run
// concurrently, but redefining blueprints while instances are being built
// gives no ordering guarantees.
type Registry struct {
	super      func() *Registry
	blueprints map[values.BlueprintName]Engine
	owner      string
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry for owner. super returns the
// registry of the owner's superclass, or nil when the superclass does not
// define blueprints; it may itself be nil.
func NewRegistry(owner string, super func() *Registry) *Registry {
	return &Registry{
		owner:      owner,
		super:      super,
		blueprints: make(map[values.BlueprintName]Engine),
	}
}

// Owner returns the owner name.
func (r *Registry) Owner() string {
	return r.owner
}

// Define runs body against a fresh recorder and stores the resulting
// blueprint under name, replacing any previous definition.
func (r *Registry) Define(name values.BlueprintName, body func(rec *AttributeRecorder), factory EngineFactory) Engine {
	rec := NewAttributeRecorder()
	if body != nil {
		body(rec)
	}

	bp := NewBlueprint(r.owner, name, r.parentFor(name), rec.Attributes())
	engine := factory(bp)

	r.mu.Lock()
	r.blueprints[name] = engine
	r.mu.Unlock()

	return engine
}

// Lookup returns the engine for name or a *NoBlueprintError.
func (r *Registry) Lookup(name values.BlueprintName) (Engine, error) {
	engine := r.Fetch(name)
	if engine == nil {
		return nil, &NoBlueprintError{Owner: r.owner, Name: name.String()}
	}
	return engine, nil
}

// Fetch returns the engine for name, or nil.
func (r *Registry) Fetch(name values.BlueprintName) Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blueprints[name]
}

// Clear removes every blueprint.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.blueprints = make(map[values.BlueprintName]Engine)
	r.mu.Unlock()
}

// Names returns the defined blueprint names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.blueprints))
	for name := range r.blueprints {
		names = append(names, name.String())
	}
	sort.Strings(names)
	return names
}

// parentFor decides where a blueprint inherits from. The master blueprint
// inherits from the superclass master, any other blueprint from the
// owner's own master. Both are looked up when the blueprint is used.
func (r *Registry) parentFor(name values.BlueprintName) ParentFunc {
	if !name.IsMaster() {
		return func() *Blueprint {
			return masterOf(r)
		}
	}
	return func() *Blueprint {
		if r.super == nil {
			return nil
		}
		return masterOf(r.super())
	}
}

func masterOf(r *Registry) *Blueprint {
	if r == nil {
		return nil
	}
	engine := r.Fetch(values.Master())
	if engine == nil {
		return nil
	}
	return engine.Blueprint()
}
