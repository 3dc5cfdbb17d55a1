package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/machinist"
)

const usersDocument = `version: 1.0.0
models:
  User:
    blueprints:
      master:
        name: John
        email: "{{ name + '@example.com' }}"
        role: member
      guest:
        role: guest
  Admin:
    extends: User
    blueprints:
      master:
        role: admin
        login: "{{ name }}-{{ sn }}"
`

func newLoader(t *testing.T) *BlueprintLoader {
	t.Helper()
	l, err := NewBlueprintLoader()
	require.NoError(t, err)
	return l
}

func loadString(t *testing.T, l *BlueprintLoader, doc string) (*Document, error) {
	t.Helper()
	return l.LoadDocumentFromReader(strings.NewReader(doc))
}

func Test_BlueprintLoader_RegisterAndMake(t *testing.T) {
	t.Parallel()
	l := newLoader(t)
	doc, err := loadString(t, l, usersDocument)
	require.NoError(t, err)

	catalog := machinist.NewCatalog()
	require.NoError(t, l.Register(catalog, doc))
	assert.Equal(t, []string{"Admin", "User"}, catalog.Models())

	user, err := catalog.Make("User")
	require.NoError(t, err)
	assert.Equal(t, machinist.Record{"name": "John", "email": "John@example.com", "role": "member"}, *user)

	guest, err := catalog.Make("User", "guest", machinist.Attrs{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann@example.com", (*guest)["email"])
	assert.Equal(t, "guest", (*guest)["role"])

	admins, err := catalog.MakeN("Admin", 2)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "admin", (*admins[0])["role"])
	assert.Equal(t, "John-1", (*admins[0])["login"])
	assert.Equal(t, "John-2", (*admins[1])["login"])
}

func Test_BlueprintLoader_PreservesAttributeOrder(t *testing.T) {
	t.Parallel()
	l := newLoader(t)
	doc, err := loadString(t, l, `version: "1"
models:
  Post:
    blueprints:
      master:
        zeta: 1
        alpha: 2
        mid: 3
`)
	require.NoError(t, err)

	items := doc.Models["Post"].Blueprints["master"]
	require.Len(t, items, 3)
	assert.Equal(t, "zeta", items[0].Key)
	assert.Equal(t, "alpha", items[1].Key)
	assert.Equal(t, "mid", items[2].Key)
}

func Test_BlueprintLoader_EmptyBlueprint(t *testing.T) {
	t.Parallel()
	l := newLoader(t)
	doc, err := loadString(t, l, `version: 1.2.0
models:
  Post:
    blueprints:
      master:
`)
	require.NoError(t, err)

	catalog := machinist.NewCatalog()
	require.NoError(t, l.Register(catalog, doc))

	post, err := catalog.Make("Post", machinist.Attrs{"title": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, machinist.Record{"title": "Hi"}, *post)
}

func Test_BlueprintLoader_InvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "not yaml",
			doc:     "models: [unclosed",
			wantErr: "failed to decode",
		},
		{
			name:    "missing version",
			doc:     "models:\n  Post: {}\n",
			wantErr: "document validation failed",
		},
		{
			name:    "unknown top-level key",
			doc:     "version: 1.0.0\nmodels:\n  Post: {}\nextra: true\n",
			wantErr: "document validation failed",
		},
		{
			name:    "blueprint is a list",
			doc:     "version: 1.0.0\nmodels:\n  Post:\n    blueprints:\n      master: [a, b]\n",
			wantErr: "document validation failed",
		},
		{
			name:    "unsupported major version",
			doc:     "version: 2.0.0\nmodels:\n  Post: {}\n",
			wantErr: "unsupported document version",
		},
		{
			name:    "version is not semver",
			doc:     "version: latest\nmodels:\n  Post: {}\n",
			wantErr: "invalid document version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadString(t, newLoader(t), tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_BlueprintLoader_Register_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown parent",
			doc:     "version: 1.0.0\nmodels:\n  Admin:\n    extends: User\n",
			wantErr: "extends unknown model User",
		},
		{
			name:    "cycle",
			doc:     "version: 1.0.0\nmodels:\n  A:\n    extends: B\n  B:\n    extends: A\n",
			wantErr: "circular inheritance detected",
		},
		{
			name:    "bad expression",
			doc:     "version: 1.0.0\nmodels:\n  Post:\n    blueprints:\n      master:\n        title: \"{{ 1 + }}\"\n",
			wantErr: "model Post, blueprint master: attribute title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newLoader(t)
			doc, err := loadString(t, l, tt.doc)
			require.NoError(t, err)

			err = l.Register(machinist.NewCatalog(), doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func Test_BlueprintLoader_Register_AcrossDocuments(t *testing.T) {
	t.Parallel()
	l := newLoader(t)
	base, err := loadString(t, l, "version: 1.0.0\nmodels:\n  User:\n    blueprints:\n      master:\n        name: John\n")
	require.NoError(t, err)
	overlay, err := loadString(t, l, "version: 1.0.0\nmodels:\n  Admin:\n    extends: User\n  User:\n    blueprints:\n      master:\n        name: Jane\n")
	require.NoError(t, err)

	catalog := machinist.NewCatalog()
	require.NoError(t, l.Register(catalog, base, overlay))

	admin, err := catalog.Make("Admin", machinist.Name("master"))
	var noBlueprint *machinist.NoBlueprintError
	require.ErrorAs(t, err, &noBlueprint, "Admin declares no blueprint")
	assert.Nil(t, admin)

	user, err := catalog.Make("User")
	require.NoError(t, err)
	assert.Equal(t, "Jane", (*user)["name"], "later document replaces the blueprint")
}

func Test_BlueprintLoader_LoadDocument(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersDocument), 0o600))

	doc, err := newLoader(t).LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "User", doc.Models["Admin"].Extends)

	_, err = newLoader(t).LoadDocument(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open blueprint document")
}
