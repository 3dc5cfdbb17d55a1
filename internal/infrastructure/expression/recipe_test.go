package expression

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapObject is a minimal entities.Object for tests.
type mapObject map[string]any

func (m mapObject) Attribute(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapObject) SetAttribute(name string, value any) error {
	m[name] = value
	return nil
}

func (m mapObject) Snapshot() map[string]any {
	return m
}

func Test_Compiler_Compile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		obj   mapObject
		want  any
		name  string
	}{
		{name: "literal string", value: "plain", want: "plain"},
		{name: "literal int", value: 42, want: 42},
		{name: "literal map", value: map[string]any{"a": 1}, want: map[string]any{"a": 1}},
		{name: "typed result", value: "{{ 1 + 2 }}", want: 3},
		{name: "reads attributes", value: "{{ name + '@example.com' }}", obj: mapObject{"name": "john"}, want: "john@example.com"},
		{name: "interpolation", value: "Hello {{ name }}, you are {{ age }}", obj: mapObject{"name": "ann", "age": 30}, want: "Hello ann, you are 30"},
		{name: "sequence", value: "{{ 'user' + string(sn) }}", want: "user1"},
		{name: "boolean", value: "{{ age > 18 }}", obj: mapObject{"age": 21}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recipe, err := NewCompiler().Compile(tt.value)
			require.NoError(t, err)

			obj := tt.obj
			if obj == nil {
				obj = mapObject{}
			}
			got, err := recipe(obj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Compiler_SequenceCountsRuns(t *testing.T) {
	t.Parallel()
	recipe, err := NewCompiler().Compile("user{{ sn }}@example.com")
	require.NoError(t, err)

	var got []any
	for range 3 {
		v, err := recipe(mapObject{})
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{"user1@example.com", "user2@example.com", "user3@example.com"}, got)
}

func Test_Compiler_UUID(t *testing.T) {
	t.Parallel()
	recipe, err := NewCompiler().Compile("{{ uuid() }}")
	require.NoError(t, err)

	v, err := recipe(mapObject{})
	require.NoError(t, err)
	_, err = uuid.Parse(v.(string))
	assert.NoError(t, err)
}

func Test_Compiler_SyntaxErrorAtCompileTime(t *testing.T) {
	t.Parallel()
	_, err := NewCompiler().Compile("{{ 1 + }}")
	assert.ErrorContains(t, err, "compiling expression")
}

func Test_Compiler_RuntimeError(t *testing.T) {
	t.Parallel()
	recipe, err := NewCompiler().Compile("{{ int(code) }}")
	require.NoError(t, err)

	_, err = recipe(mapObject{"code": "abc"})
	assert.ErrorContains(t, err, "evaluating expression")
}

func Test_Compiler_CachesPrograms(t *testing.T) {
	t.Parallel()
	c := NewCompiler()
	_, err := c.Compile("{{ a + b }}")
	require.NoError(t, err)
	_, err = c.Compile("a={{ a + b }}")
	require.NoError(t, err)

	assert.Len(t, c.programCache, 1)
}

func Test_IsTemplate(t *testing.T) {
	t.Parallel()
	assert.True(t, IsTemplate("{{ x }}"))
	assert.True(t, IsTemplate("a {{x}} b"))
	assert.False(t, IsTemplate("plain"))
	assert.False(t, IsTemplate(7))
}
