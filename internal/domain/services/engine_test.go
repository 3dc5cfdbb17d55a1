package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// orderedObject records assignment order.
type orderedObject struct {
	attrs map[string]any
	order []string
}

func newOrderedObject() *orderedObject {
	return &orderedObject{attrs: make(map[string]any)}
}

func (o *orderedObject) Attribute(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

func (o *orderedObject) SetAttribute(name string, value any) error {
	o.attrs[name] = value
	o.order = append(o.order, name)
	return nil
}

type recordingPersister struct {
	err   error
	saved []entities.Object
}

func (p *recordingPersister) Persist(_ context.Context, _ string, obj entities.Object) error {
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, obj)
	return nil
}

func define(owner string, parent *entities.Blueprint, attrs ...entities.Attribute) *entities.Blueprint {
	return entities.NewBlueprint(owner, values.Master(), func() *entities.Blueprint { return parent }, attrs)
}

func Test_Engine_Make_AssignsInResolvedOrder(t *testing.T) {
	t.Parallel()
	bp := define("Post", nil,
		entities.Attribute{Name: "title", Recipe: literal("A Post")},
		entities.Attribute{Name: "body", Recipe: literal("Lorem ipsum")},
	)

	obj := newOrderedObject()
	require.NoError(t, NewEngine(bp).Make(obj, map[string]any{"title": "Hi"}))

	assert.Equal(t, "Hi", obj.attrs["title"])
	assert.Equal(t, "Lorem ipsum", obj.attrs["body"])
	assert.Equal(t, []string{"title", "body"}, obj.order)
}

func Test_Engine_Make_RecipeReadsEarlierAttributes(t *testing.T) {
	t.Parallel()
	bp := define("User", nil,
		entities.Attribute{Name: "name", Recipe: literal("john")},
		entities.Attribute{Name: "email", Recipe: func(obj entities.Object) (any, error) {
			name, _ := obj.Attribute("name")
			return fmt.Sprintf("%s@example.com", name), nil
		}},
	)

	obj := newOrderedObject()
	require.NoError(t, NewEngine(bp).Make(obj, map[string]any{"name": "jane"}))
	assert.Equal(t, "jane@example.com", obj.attrs["email"])
}

func Test_Engine_Make_OverrideSkipsRecipe(t *testing.T) {
	t.Parallel()
	calls := 0
	bp := define("Post", nil, entities.Attribute{Name: "title", Recipe: func(entities.Object) (any, error) {
		calls++
		return "A Post", nil
	}})

	obj := newOrderedObject()
	require.NoError(t, NewEngine(bp).Make(obj, map[string]any{"title": nil}))

	assert.Equal(t, 0, calls)
	v, ok := obj.Attribute("title")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func Test_Engine_Make_StatefulRecipeRunsPerInstance(t *testing.T) {
	t.Parallel()
	counter := 0
	bp := define("Post", nil, entities.Attribute{Name: "n", Recipe: func(entities.Object) (any, error) {
		counter++
		return counter, nil
	}})
	engine := NewEngine(bp)

	var got []any
	for range 3 {
		obj := newOrderedObject()
		require.NoError(t, engine.Make(obj, nil))
		got = append(got, obj.attrs["n"])
	}
	assert.Equal(t, []any{1, 2, 3}, got)
}

func Test_Engine_Make_RecipeError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	bp := define("Post", nil, entities.Attribute{Name: "title", Recipe: func(entities.Object) (any, error) {
		return nil, boom
	}})

	err := NewEngine(bp).Make(newOrderedObject(), nil)

	var attrErr *entities.AttributeError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, "title", attrErr.Attribute)
	assert.Equal(t, "Post", attrErr.Owner)
	assert.ErrorIs(t, err, boom)
}

func Test_Engine_IsNotSaving(t *testing.T) {
	t.Parallel()
	_, ok := NewEngine(define("Post", nil)).(entities.SavingEngine)
	assert.False(t, ok)
}

func Test_PersistingEngine_MakeSaved(t *testing.T) {
	t.Parallel()
	persister := &recordingPersister{}
	bp := define("Post", nil, entities.Attribute{Name: "title", Recipe: literal("A Post")})

	engine, ok := PersistingEngineFactory(persister)(bp).(entities.SavingEngine)
	require.True(t, ok)

	obj := newOrderedObject()
	require.NoError(t, engine.MakeSaved(context.Background(), obj, nil))
	require.Len(t, persister.saved, 1)
	assert.Same(t, obj, persister.saved[0])
	assert.Equal(t, "A Post", obj.attrs["title"])
}

func Test_PersistingEngine_MakeSaved_PersistError(t *testing.T) {
	t.Parallel()
	persister := &recordingPersister{err: errors.New("disk full")}
	engine := PersistingEngineFactory(persister)(define("Post", nil)).(entities.SavingEngine)

	err := engine.MakeSaved(context.Background(), newOrderedObject(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving Post")
}
