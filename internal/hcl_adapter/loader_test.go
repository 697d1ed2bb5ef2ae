package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Schema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "server.hcl", `
server {
  listen           = ":4841"
  healthcheck_port = 9090
  workers          = 4
  log_level        = "debug"
}
`)
	writeFile(t, dir, "types.hcl", `
vertex_type "Pump" {
  description = "centrifugal pump"
  supertype   = "Machine"
  plugin      = "machine"

  field "speed" {
    type    = number
    unit    = "rpm"
    default = 1450
  }
  field "tags" {
    type = list(string)
  }
  field "notes" {}
}

edge_type "feeds" {
  inverse_name = "fed by"
  symmetric    = false
}
`)
	writeFile(t, dir, "ignored.txt", `not hcl`)

	// Act
	model, conv, err := NewLoader().Load(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, conv)

	assert.Equal(t, ":4841", model.Server.Listen)
	assert.Equal(t, 9090, model.Server.HealthcheckPort)
	assert.Equal(t, 4, model.Server.Workers)
	assert.Equal(t, "debug", model.Server.LogLevel)

	pump := model.Types["Pump"]
	require.NotNil(t, pump)
	assert.Equal(t, "Machine", pump.SuperType)
	assert.Equal(t, "machine", pump.Plugin)
	require.Len(t, pump.Fields, 3)

	speed := pump.Fields[0]
	assert.Equal(t, "speed", speed.Name)
	assert.True(t, speed.Kind.Equals(cty.Number))
	assert.Equal(t, "rpm", speed.Unit)
	require.NotNil(t, speed.Default)
	assert.True(t, speed.Default.RawEquals(cty.NumberIntVal(1450)))

	assert.True(t, pump.Fields[1].Kind.Equals(cty.List(cty.String)))
	assert.Nil(t, pump.Fields[1].Default)
	assert.True(t, pump.Fields[2].Kind.Equals(cty.DynamicPseudoType), "omitted type means any")

	feeds := model.EdgeTypes["feeds"]
	require.NotNil(t, feeds)
	assert.Equal(t, "fed by", feeds.InverseName)
}

func TestLoader_MissingPathIsSkipped(t *testing.T) {
	model, _, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Empty(t, model.Types)
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "syntax error", content: `vertex_type "A" {`},
		{name: "unknown type keyword", content: `
vertex_type "A" {
  field "x" { type = integer }
}`},
		{name: "any inside a collection", content: `
vertex_type "A" {
  field "x" { type = list(any) }
}`},
		{name: "unknown attribute", content: `
edge_type "e" {
  colour = "red"
}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "bad.hcl", tc.content)

			_, _, err := NewLoader().Load(context.Background(), path)
			assert.Error(t, err)
		})
	}
}

func TestParseTypeString(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		src     string
		want    cty.Type
		wantErr bool
	}{
		{src: "string", want: cty.String},
		{src: "map(number)", want: cty.Map(cty.Number)},
		{src: "set(bool)", want: cty.Set(cty.Bool)},
		{src: "object({ a = string, b = number })", want: cty.Object(map[string]cty.Type{"a": cty.String, "b": cty.Number})},
		{src: "", want: cty.DynamicPseudoType},
		{src: "tuple(string)", wantErr: true},
		{src: "list(", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := ParseTypeString(ctx, tc.src)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equals(tc.want), "got %s", got.FriendlyName())
		})
	}
}
