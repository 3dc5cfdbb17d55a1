package services

import (
	"context"
	"fmt"

	"github.com/reglet-dev/machinist/internal/domain/entities"
)

// Ensure interface compliance
var (
	_ entities.Engine       = (*Engine)(nil)
	_ entities.SavingEngine = (*PersistingEngine)(nil)
)

// Engine is the default blueprint engine. It builds objects but cannot
// save them.
type Engine struct {
	blueprint *entities.Blueprint
	resolver  *AttributeResolver
}

// NewEngine is the default entities.EngineFactory.
func NewEngine(bp *entities.Blueprint) entities.Engine {
	return newEngine(bp)
}

func newEngine(bp *entities.Blueprint) *Engine {
	return &Engine{
		blueprint: bp,
		resolver:  NewAttributeResolver(),
	}
}

// Blueprint returns the blueprint this engine builds from.
func (e *Engine) Blueprint() *entities.Blueprint {
	return e.blueprint
}

// Make assigns every attribute of the resolved plan to obj, in order.
// Each recipe sees the attributes assigned before it.
func (e *Engine) Make(obj entities.Object, overrides map[string]any) error {
	steps, err := e.resolver.Plan(e.blueprint, overrides)
	if err != nil {
		return err
	}

	for _, step := range steps {
		value := step.Value
		if !step.Overridden {
			value, err = step.Recipe(obj)
			if err != nil {
				return e.attributeError(step.Name, err)
			}
		}
		if err := obj.SetAttribute(step.Name, value); err != nil {
			return e.attributeError(step.Name, err)
		}
	}
	return nil
}

func (e *Engine) attributeError(name string, cause error) error {
	return &entities.AttributeError{
		Owner:     e.blueprint.Owner(),
		Attribute: name,
		Cause:     cause,
	}
}

// PersistingEngine builds objects like Engine and can persist them.
type PersistingEngine struct {
	*Engine
	persister entities.Persister
}

// PersistingEngineFactory returns an entities.EngineFactory whose engines
// save through p.
func PersistingEngineFactory(p entities.Persister) entities.EngineFactory {
	return func(bp *entities.Blueprint) entities.Engine {
		return &PersistingEngine{
			Engine:    newEngine(bp),
			persister: p,
		}
	}
}

// MakeSaved builds obj and persists it.
func (e *PersistingEngine) MakeSaved(ctx context.Context, obj entities.Object, overrides map[string]any) error {
	if err := e.Make(obj, overrides); err != nil {
		return err
	}
	if err := e.persister.Persist(ctx, e.blueprint.Owner(), obj); err != nil {
		return fmt.Errorf("saving %s: %w", e.blueprint.Owner(), err)
	}
	return nil
}
