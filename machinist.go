// Package machinist builds test fixtures from blueprints.
//
// A blueprint is a named, ordered list of attribute recipes for a type.
// Recipes run lazily, once per built instance, in declaration order, and
// may read attributes assigned before them:
//
//	machinist.Define[Post](machinist.Master, func(r *machinist.Recorder[Post]) {
//		r.Value("Title", "A Post")
//		r.Attr("Slug", func(p *Post) any { return slug(p.Title) })
//	})
//
//	post, err := machinist.Make[Post](machinist.Attrs{"Title": "Hi"})
//	drafts, err := machinist.MakeN[Post](3, machinist.Name("draft"))
//
// Blueprints other than master inherit the recipes of the type's master
// blueprint. The master blueprint of a type that embeds another struct
// inherits the embedded type's master blueprint. A descendant's recipe
// replaces the inherited recipe of the same name.
//
// Blueprints are meant to be defined during test setup. Defining or
// clearing blueprints while other goroutines build instances is not
// supported; building instances concurrently is.
package machinist

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/services"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// Aliases for the blueprint domain types, for use by custom engines.
type (
	Object        = entities.Object
	Recipe        = entities.Recipe
	Attribute     = entities.Attribute
	Blueprint     = entities.Blueprint
	Engine        = entities.Engine
	SavingEngine  = entities.SavingEngine
	EngineFactory = entities.EngineFactory
	Persister     = entities.Persister
)

// Errors returned by Make and friends.
type (
	ArgumentError    = entities.ArgumentError
	NoBlueprintError = entities.NoBlueprintError
	CantSaveError    = entities.CantSaveError
	AttributeError   = entities.AttributeError
)

// ErrBlankAttributeName is wrapped by the AttributeError returned for a
// blank attribute or override name.
var ErrBlankAttributeName = entities.ErrBlankAttributeName

// DefaultEngine is the engine factory used when a type does not choose one.
func DefaultEngine(bp *Blueprint) Engine {
	return services.NewEngine(bp)
}

// PersistingEngine returns an engine factory whose engines save through p.
func PersistingEngine(p Persister) EngineFactory {
	return services.PersistingEngineFactory(p)
}

// Recorder collects the attribute recipes of a blueprint body.
type Recorder[T any] struct {
	rec *entities.AttributeRecorder
}

// Attr records a recipe computed from the instance being built.
func (r *Recorder[T]) Attr(name string, fn func(obj *T) any) {
	r.AttrE(name, func(obj *T) (any, error) {
		return fn(obj), nil
	})
}

// AttrE records a recipe that may fail.
func (r *Recorder[T]) AttrE(name string, fn func(obj *T) (any, error)) {
	r.rec.Record(name, func(obj entities.Object) (any, error) {
		ptr, err := viewAs[T](obj)
		if err != nil {
			return nil, err
		}
		return fn(ptr)
	})
}

// Value records a constant. Every instance receives the same value, so
// maps and slices are shared between instances.
func (r *Recorder[T]) Value(name string, v any) {
	r.rec.Record(name, func(entities.Object) (any, error) {
		return v, nil
	})
}

// Sequence records a recipe receiving a counter that starts at 1 and
// grows each time the recipe runs.
func (r *Recorder[T]) Sequence(name string, fn func(n int) any) {
	var counter atomic.Int64
	r.rec.Record(name, func(entities.Object) (any, error) {
		return fn(int(counter.Add(1))), nil
	})
}

// Recipe records an untyped recipe.
func (r *Recorder[T]) Recipe(name string, recipe Recipe) {
	r.rec.Record(name, recipe)
}

// Define registers the blueprint name for T, replacing any previous
// blueprint of that name. An empty name means Master.
func Define[T any](name Name, body func(r *Recorder[T])) Engine {
	registry := ensureRegistry(reflect.TypeFor[T]())
	bn := blueprintName(name)
	engine := registry.Define(bn, func(rec *entities.AttributeRecorder) {
		if body != nil {
			body(&Recorder[T]{rec: rec})
		}
	}, engineFactoryFor[T]())

	slog.Debug("defined blueprint",
		"owner", registry.Owner(),
		"name", bn.String(),
		"attributes", len(engine.Blueprint().Attributes()))
	return engine
}

// Lookup returns the blueprint engine registered as name for T, or nil.
func Lookup[T any](name Name) Engine {
	registry := registryOf(reflect.TypeFor[T]())
	if registry == nil {
		return nil
	}
	return registry.Fetch(blueprintName(name))
}

// Clear removes every blueprint of T.
func Clear[T any]() {
	ensureRegistry(reflect.TypeFor[T]()).Clear()
}

// Make builds one T.
//
// args are, in order and each optional: a blueprint Name (or string) and
// an Attrs (or map[string]any) of overrides. Overridden attributes are
// assigned verbatim and their recipes never run.
func Make[T any](args ...any) (*T, error) {
	c, err := decodeSingle(args)
	if err != nil {
		return nil, err
	}
	engine, err := lookupEngine[T](c.name)
	if err != nil {
		return nil, err
	}
	return build[T](engine, c.overrides)
}

// MakeN builds count independent instances of T. args are as for Make.
func MakeN[T any](count int, args ...any) ([]*T, error) {
	c, err := decodeCounted(count, args)
	if err != nil {
		return nil, err
	}
	engine, err := lookupEngine[T](c.name)
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, *c.count)
	for range *c.count {
		item, err := build[T](engine, c.overrides)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// MakeSaved builds one T and saves it. It fails with *CantSaveError,
// before building anything, when the blueprint's engine cannot save.
func MakeSaved[T any](ctx context.Context, args ...any) (*T, error) {
	c, err := decodeSingle(args)
	if err != nil {
		return nil, err
	}
	engine, err := lookupSavingEngine[T](c.name)
	if err != nil {
		return nil, err
	}
	return buildSaved[T](ctx, engine, c.overrides)
}

// MakeSavedN builds and saves count instances of T.
func MakeSavedN[T any](ctx context.Context, count int, args ...any) ([]*T, error) {
	c, err := decodeCounted(count, args)
	if err != nil {
		return nil, err
	}
	engine, err := lookupSavingEngine[T](c.name)
	if err != nil {
		return nil, err
	}

	items := make([]*T, 0, *c.count)
	for range *c.count {
		item, err := buildSaved[T](ctx, engine, c.overrides)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func blueprintName(name Name) values.BlueprintName {
	bn, err := values.NewBlueprintName(string(name))
	if err != nil {
		return values.Master()
	}
	return bn
}

func lookupEngine[T any](name values.BlueprintName) (Engine, error) {
	return ensureRegistry(reflect.TypeFor[T]()).Lookup(name)
}

func lookupSavingEngine[T any](name values.BlueprintName) (SavingEngine, error) {
	engine, err := lookupEngine[T](name)
	if err != nil {
		return nil, err
	}
	saving, ok := engine.(SavingEngine)
	if !ok {
		bp := engine.Blueprint()
		return nil, &CantSaveError{Owner: bp.Owner(), Name: bp.Name().String()}
	}
	return saving, nil
}

func build[T any](engine Engine, overrides map[string]any) (*T, error) {
	ptr := new(T)
	obj, err := objectFor(ptr)
	if err != nil {
		return nil, err
	}
	if err := engine.Make(obj, overrides); err != nil {
		return nil, err
	}
	return ptr, nil
}

func buildSaved[T any](ctx context.Context, engine SavingEngine, overrides map[string]any) (*T, error) {
	ptr := new(T)
	obj, err := objectFor(ptr)
	if err != nil {
		return nil, err
	}
	if err := engine.MakeSaved(ctx, obj, overrides); err != nil {
		return nil, err
	}
	return ptr, nil
}
