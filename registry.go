package machinist

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/services"
)

// typeRegistries associates each Go type with its blueprint registry.
// Entries are created on first Define or Make and live for the process.
var typeRegistries = struct {
	byType map[reflect.Type]*entities.Registry
	sync.RWMutex
}{byType: make(map[reflect.Type]*entities.Registry)}

// registryOf returns the registry of t, or nil if t never took part.
func registryOf(t reflect.Type) *entities.Registry {
	typeRegistries.RLock()
	defer typeRegistries.RUnlock()
	return typeRegistries.byType[t]
}

// ensureRegistry returns the registry of t, creating it if needed.
func ensureRegistry(t reflect.Type) *entities.Registry {
	if r := registryOf(t); r != nil {
		return r
	}

	typeRegistries.Lock()
	defer typeRegistries.Unlock()
	if r, ok := typeRegistries.byType[t]; ok {
		return r
	}
	r := entities.NewRegistry(t.String(), func() *entities.Registry {
		if super := superclassOf(t); super != nil {
			return registryOf(super)
		}
		return nil
	})
	typeRegistries.byType[t] = r
	return r
}

// superclassOf returns the first struct t embeds by value, or nil.
func superclassOf(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			return f.Type
		}
	}
	return nil
}

// Saver is implemented by types that can persist themselves. Blueprints of
// such types support MakeSaved.
type Saver interface {
	Save(ctx context.Context) error
}

// EngineProvider lets a type choose the engine used for its blueprints.
// The method is consulted once per Define; types embedding a provider
// inherit its choice.
type EngineProvider interface {
	BlueprintEngine() EngineFactory
}

// engineFactoryFor picks the engine factory for T.
func engineFactoryFor[T any]() EngineFactory {
	ptr := any(new(T))
	if p, ok := ptr.(EngineProvider); ok {
		if factory := p.BlueprintEngine(); factory != nil {
			return factory
		}
	}
	if _, ok := ptr.(Saver); ok {
		return services.PersistingEngineFactory(saverPersister{})
	}
	return services.NewEngine
}

// saverPersister persists objects that implement Saver.
type saverPersister struct{}

func (saverPersister) Persist(ctx context.Context, _ string, obj entities.Object) error {
	target := any(obj)
	if so, ok := obj.(*structObject); ok {
		target = so.Ptr()
	}
	saver, ok := target.(Saver)
	if !ok {
		return fmt.Errorf("%T does not implement Save", target)
	}
	return saver.Save(ctx)
}
