package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/machinist/internal/domain/values"
)

type stubEngine struct {
	bp *Blueprint
}

func (e *stubEngine) Blueprint() *Blueprint { return e.bp }

func (e *stubEngine) Make(Object, map[string]any) error { return nil }

func stubFactory(bp *Blueprint) Engine {
	return &stubEngine{bp: bp}
}

func literal(v any) Recipe {
	return func(Object) (any, error) { return v, nil }
}

func attributeNames(attrs []Attribute) []string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return names
}

func Test_Registry_Define_RecordsAttributesInOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)

	engine := r.Define(values.Master(), func(rec *AttributeRecorder) {
		rec.Record("title", literal("A Post"))
		rec.Record("body", literal("Lorem ipsum"))
	}, stubFactory)

	bp := engine.Blueprint()
	assert.Equal(t, "Post", bp.Owner())
	assert.True(t, bp.Name().IsMaster())
	assert.Equal(t, []string{"title", "body"}, attributeNames(bp.Attributes()))
	assert.Nil(t, bp.Parent())
}

func Test_Registry_Define_RedeclaredAttributeKeepsPosition(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)

	engine := r.Define(values.Master(), func(rec *AttributeRecorder) {
		rec.Record("title", literal("first"))
		rec.Record("body", literal("Lorem ipsum"))
		rec.Record("title", literal("second"))
	}, stubFactory)

	attrs := engine.Blueprint().Attributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "title", attrs[0].Name)

	v, err := attrs[0].Recipe(nil)
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func Test_Registry_Define_ReplacesWholeBlueprint(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)

	r.Define(values.Master(), func(rec *AttributeRecorder) {
		rec.Record("title", literal("A Post"))
		rec.Record("body", literal("Lorem ipsum"))
	}, stubFactory)
	r.Define(values.Master(), func(rec *AttributeRecorder) {
		rec.Record("summary", literal("short"))
	}, stubFactory)

	engine, err := r.Lookup(values.Master())
	require.NoError(t, err)
	assert.Equal(t, []string{"summary"}, attributeNames(engine.Blueprint().Attributes()))
}

func Test_Registry_Define_DoesNotEvaluateRecipes(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)
	called := false

	r.Define(values.Master(), func(rec *AttributeRecorder) {
		rec.Record("title", func(Object) (any, error) {
			called = true
			return "x", nil
		})
	}, stubFactory)

	assert.False(t, called)
}

func Test_Registry_Lookup_Missing(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)

	_, err := r.Lookup(values.MustNewBlueprintName("draft"))
	require.Error(t, err)

	var noBlueprint *NoBlueprintError
	require.True(t, errors.As(err, &noBlueprint))
	assert.Equal(t, "Post", noBlueprint.Owner)
	assert.Equal(t, "draft", noBlueprint.Name)
	assert.Nil(t, r.Fetch(values.MustNewBlueprintName("draft")))
}

func Test_Registry_Clear(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)
	r.Define(values.Master(), nil, stubFactory)
	r.Define(values.MustNewBlueprintName("draft"), nil, stubFactory)
	assert.Equal(t, []string{"draft", "master"}, r.Names())

	r.Clear()

	_, err := r.Lookup(values.Master())
	assert.Error(t, err)
	assert.Empty(t, r.Names())
}

func Test_Registry_NamedBlueprintInheritsOwnMaster(t *testing.T) {
	t.Parallel()
	r := NewRegistry("Post", nil)

	draft := r.Define(values.MustNewBlueprintName("draft"), nil, stubFactory)
	assert.Nil(t, draft.Blueprint().Parent(), "no master defined yet")

	master := r.Define(values.Master(), nil, stubFactory)
	assert.Same(t, master.Blueprint(), draft.Blueprint().Parent())
}

func Test_Registry_MasterInheritsSuperclassMaster(t *testing.T) {
	t.Parallel()
	parent := NewRegistry("User", nil)
	child := NewRegistry("Admin", func() *Registry { return parent })

	childMaster := child.Define(values.Master(), nil, stubFactory)
	assert.Nil(t, childMaster.Blueprint().Parent())

	parentMaster := parent.Define(values.Master(), nil, stubFactory)
	assert.Same(t, parentMaster.Blueprint(), childMaster.Blueprint().Parent())

	lineage, err := childMaster.Blueprint().Lineage()
	require.NoError(t, err)
	assert.Equal(t, []*Blueprint{parentMaster.Blueprint(), childMaster.Blueprint()}, lineage)
}

func Test_Registry_SuperclassWithoutRegistry(t *testing.T) {
	t.Parallel()
	child := NewRegistry("Admin", func() *Registry { return nil })

	master := child.Define(values.Master(), nil, stubFactory)
	assert.Nil(t, master.Blueprint().Parent())
}

func Test_Blueprint_Lineage_DetectsCycle(t *testing.T) {
	t.Parallel()
	var a, b *Blueprint
	a = NewBlueprint("A", values.Master(), func() *Blueprint { return b }, nil)
	b = NewBlueprint("B", values.Master(), func() *Blueprint { return a }, nil)

	_, err := a.Lineage()
	var cycle *InheritanceCycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, "A", cycle.Owner)
}
