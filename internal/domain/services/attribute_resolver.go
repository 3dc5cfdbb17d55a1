// Package services contains the blueprint construction logic: attribute
// resolution across a parent chain and evaluation against an instance.
package services

import (
	"sort"
	"strings"

	"github.com/reglet-dev/machinist/internal/domain/entities"
)

// Step is one attribute assignment of a make plan.
// Overridden steps carry a verbatim Value and no recipe is run for them.
type Step struct {
	Value      any
	Recipe     entities.Recipe
	Name       string
	Overridden bool
}

// AttributeResolver composes a blueprint's recipes with those of its
// ancestors.
//
// Resolution Semantics:
//   - Lineage is walked from the root ancestor down to the blueprint
//   - Recipes are appended in declaration order
//   - A name declared again by a descendant moves to the descendant's
//     position and its earlier recipe is discarded (no blending)
//   - Names only declared by ancestors keep their relative order
type AttributeResolver struct{}

// NewAttributeResolver creates a new attribute resolver.
func NewAttributeResolver() *AttributeResolver {
	return &AttributeResolver{}
}

// Resolve returns the effective recipe sequence for bp.
func (r *AttributeResolver) Resolve(bp *entities.Blueprint) ([]entities.Attribute, error) {
	lineage, err := bp.Lineage()
	if err != nil {
		return nil, err
	}

	var (
		slots    []entities.Attribute
		live     []bool
		position = make(map[string]int)
	)
	for _, b := range lineage {
		for _, attr := range b.Attributes() {
			if i, shadowed := position[attr.Name]; shadowed {
				live[i] = false
			}
			position[attr.Name] = len(slots)
			slots = append(slots, attr)
			live = append(live, true)
		}
	}

	resolved := make([]entities.Attribute, 0, len(position))
	for i, attr := range slots {
		if live[i] {
			resolved = append(resolved, attr)
		}
	}
	return resolved, nil
}

// Plan returns the assignments needed to build one instance of bp.
// Overrides naming no recipe come first, sorted by name, so that recipes
// can read them. Every resolved attribute follows in order; those present
// in overrides take the override value instead of running the recipe.
// A blank attribute or override name fails the plan.
func (r *AttributeResolver) Plan(bp *entities.Blueprint, overrides map[string]any) ([]Step, error) {
	resolved, err := r.Resolve(bp)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(resolved))
	for _, attr := range resolved {
		if err := checkAttributeName(bp, attr.Name); err != nil {
			return nil, err
		}
		declared[attr.Name] = true
	}

	var extra []string
	for name := range overrides {
		if err := checkAttributeName(bp, name); err != nil {
			return nil, err
		}
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	steps := make([]Step, 0, len(extra)+len(resolved))
	for _, name := range extra {
		steps = append(steps, Step{Name: name, Value: overrides[name], Overridden: true})
	}
	for _, attr := range resolved {
		if value, ok := overrides[attr.Name]; ok {
			steps = append(steps, Step{Name: attr.Name, Value: value, Overridden: true})
			continue
		}
		steps = append(steps, Step{Name: attr.Name, Recipe: attr.Recipe})
	}
	return steps, nil
}

func checkAttributeName(bp *entities.Blueprint, name string) error {
	if strings.TrimSpace(name) == "" {
		return &entities.AttributeError{
			Owner:     bp.Owner(),
			Attribute: name,
			Cause:     entities.ErrBlankAttributeName,
		}
	}
	return nil
}
