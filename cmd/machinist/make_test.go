package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want    map[string]any
		name    string
		errMsg  string
		pairs   []string
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{
			name:  "typed scalars",
			pairs: []string{"name=Ann", "age=30", "admin=true"},
			want:  map[string]any{"name": "Ann", "age": uint64(30), "admin": true},
		},
		{
			name:  "value with equals sign",
			pairs: []string{"query=a=b"},
			want:  map[string]any{"query": "a=b"},
		},
		{
			name:  "empty value is nil",
			pairs: []string{"nickname="},
			want:  map[string]any{"nickname": nil},
		},
		{name: "missing equals", pairs: []string{"name"}, wantErr: true, errMsg: "expected key=value"},
		{name: "missing key", pairs: []string{"=x"}, wantErr: true, errMsg: "expected key=value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseSetValues(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMakeCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: 1.0.0
models:
  User:
    blueprints:
      master:
        name: John
        email: "{{ name + '@example.com' }}"
`), 0o600))

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"make", path, "User", "--count", "2", "--format", "json", "--set", "name=Ann"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		setValues = nil
	})

	require.NoError(t, rootCmd.Execute())

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Ann@example.com", got[1]["email"])
}
