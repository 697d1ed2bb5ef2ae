package yaml_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoader_Schema(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "server.yaml", `
server:
  listen: ":4842"
  workers: 8
  log_format: json
`)
	writeFile(t, dir, "types.yml", `
vertex_types:
  - name: Pump
    supertype: Machine
    fields:
      - name: speed
        type: number
        unit: rpm
        default: 1450
      - name: tags
        type: list(string)
        read_only: true
      - name: notes
edge_types:
  - name: feeds
    inverse_name: fed by
    symmetric: true
`)
	writeFile(t, dir, "empty.yaml", "")

	// Act
	model, conv, err := NewLoader().Load(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, ":4842", model.Server.Listen)
	assert.Equal(t, 8, model.Server.Workers)
	assert.Equal(t, "json", model.Server.LogFormat)

	pump := model.Types["Pump"]
	require.NotNil(t, pump)
	assert.Equal(t, "Machine", pump.SuperType)
	require.Len(t, pump.Fields, 3)

	speed := pump.Fields[0]
	assert.True(t, speed.Kind.Equals(cty.Number))
	assert.Equal(t, "rpm", speed.Unit)
	require.NotNil(t, speed.Default)
	assert.True(t, speed.Default.RawEquals(cty.NumberIntVal(1450)))

	tags := pump.Fields[1]
	assert.True(t, tags.Kind.Equals(cty.List(cty.String)))
	assert.True(t, tags.ReadOnly)
	assert.Nil(t, tags.Default)

	assert.True(t, pump.Fields[2].Kind.Equals(cty.DynamicPseudoType))

	feeds := model.EdgeTypes["feeds"]
	require.NotNil(t, feeds)
	assert.Equal(t, "fed by", feeds.InverseName)
	assert.True(t, feeds.Symmetric)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "vertex_types:\n  - name: A\n    colour: red\n"},
		{name: "bad type expression", content: "vertex_types:\n  - name: A\n    fields:\n      - name: f\n        type: list(\n"},
		{name: "unknown type keyword", content: "vertex_types:\n  - name: A\n    fields:\n      - name: f\n        type: integer\n"},
		{name: "vertex type without name", content: "vertex_types:\n  - description: x\n"},
		{name: "field without name", content: "vertex_types:\n  - name: A\n    fields:\n      - type: string\n"},
		{name: "edge type without name", content: "edge_types:\n  - inverse_name: x\n"},
		{name: "malformed yaml", content: "server: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeFile(t, dir, "schema.yaml", tc.content)

			_, _, err := NewLoader().Load(context.Background(), dir)
			assert.Error(t, err)
		})
	}
}

func TestLoader_MissingPathIsSkipped(t *testing.T) {
	t.Parallel()
	model, _, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, model.Types)
}
