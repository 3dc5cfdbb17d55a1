package machinist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/services"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// UnknownModelError indicates a record model that was never declared.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.Model)
}

// Catalog holds record models: named, schemaless models whose instances are
// Records. A model may extend another model, in which case its master
// blueprint inherits the master blueprint of that model.
type Catalog struct {
	persister Persister
	models    map[string]*recordModel
	mu        sync.RWMutex
}

type recordModel struct {
	registry *entities.Registry
	extends  string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithPersister makes every model of the catalog savable through p.
func WithPersister(p Persister) CatalogOption {
	return func(c *Catalog) {
		c.persister = p
	}
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{models: make(map[string]*recordModel)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model declares a record model. extends names the parent model and may be
// empty; it is resolved when blueprints are used. Declaring a model again
// keeps its blueprints and updates extends.
func (c *Catalog) Model(name, extends string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		m.extends = extends
		return
	}
	m := &recordModel{extends: extends}
	m.registry = entities.NewRegistry(name, func() *entities.Registry {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if parent, ok := c.models[m.extends]; ok && m.extends != "" {
			return parent.registry
		}
		return nil
	})
	c.models[name] = m
}

// Define registers blueprint name of model with the given attributes,
// replacing any previous blueprint of that name.
func (c *Catalog) Define(model string, name Name, attrs []Attribute) (Engine, error) {
	registry, err := c.registry(model)
	if err != nil {
		return nil, err
	}

	factory := services.NewEngine
	if c.persister != nil {
		factory = services.PersistingEngineFactory(c.persister)
	}
	bn := blueprintName(name)
	engine := registry.Define(bn, func(rec *entities.AttributeRecorder) {
		for _, attr := range attrs {
			rec.Record(attr.Name, attr.Recipe)
		}
	}, factory)

	slog.Debug("defined blueprint",
		"owner", model,
		"name", bn.String(),
		"attributes", len(attrs),
		"savable", c.persister != nil)
	return engine, nil
}

// Clear removes every blueprint of model.
func (c *Catalog) Clear(model string) error {
	registry, err := c.registry(model)
	if err != nil {
		return err
	}
	registry.Clear()
	return nil
}

// Models returns the declared model names, sorted.
func (c *Catalog) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extends returns the parent model of model, or "".
func (c *Catalog) Extends(model string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.models[model]; ok {
		return m.extends
	}
	return ""
}

// Blueprints returns the blueprint names defined for model, sorted.
func (c *Catalog) Blueprints(model string) ([]string, error) {
	registry, err := c.registry(model)
	if err != nil {
		return nil, err
	}
	return registry.Names(), nil
}

// Make builds one record of model. args are as for the package-level Make.
func (c *Catalog) Make(model string, args ...any) (*Record, error) {
	dc, err := decodeSingle(args)
	if err != nil {
		return nil, err
	}
	engine, err := c.lookup(model, dc.name)
	if err != nil {
		return nil, err
	}
	return build[Record](engine, dc.overrides)
}

// MakeN builds count independent records of model.
func (c *Catalog) MakeN(model string, count int, args ...any) ([]*Record, error) {
	dc, err := decodeCounted(count, args)
	if err != nil {
		return nil, err
	}
	engine, err := c.lookup(model, dc.name)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, *dc.count)
	for range *dc.count {
		r, err := build[Record](engine, dc.overrides)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// MakeSaved builds one record of model and persists it.
func (c *Catalog) MakeSaved(ctx context.Context, model string, args ...any) (*Record, error) {
	records, err := c.makeSaved(ctx, model, nil, args)
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

// MakeSavedN builds and persists count records of model.
func (c *Catalog) MakeSavedN(ctx context.Context, model string, count int, args ...any) ([]*Record, error) {
	return c.makeSaved(ctx, model, &count, args)
}

func (c *Catalog) makeSaved(ctx context.Context, model string, count *int, args []any) ([]*Record, error) {
	var (
		dc  call
		err error
	)
	if count == nil {
		dc, err = decodeSingle(args)
	} else {
		dc, err = decodeCounted(*count, args)
	}
	if err != nil {
		return nil, err
	}

	engine, err := c.lookup(model, dc.name)
	if err != nil {
		return nil, err
	}
	saving, ok := engine.(SavingEngine)
	if !ok {
		return nil, &CantSaveError{Owner: model, Name: dc.name.String()}
	}

	n := 1
	if dc.count != nil {
		n = *dc.count
	}
	records := make([]*Record, 0, n)
	for range n {
		r, err := buildSaved[Record](ctx, saving, dc.overrides)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (c *Catalog) registry(model string) (*entities.Registry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[model]
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}
	return m.registry, nil
}

func (c *Catalog) lookup(model string, name values.BlueprintName) (Engine, error) {
	registry, err := c.registry(model)
	if err != nil {
		return nil, err
	}
	return registry.Lookup(name)
}
