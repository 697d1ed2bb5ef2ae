package hcl_adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConverter_ToCtyValue(t *testing.T) {
	c := NewConverter()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		in   any
		want cty.Value
	}{
		{name: "string", in: "x", want: cty.StringVal("x")},
		{name: "int", in: 42, want: cty.NumberIntVal(42)},
		{name: "float", in: 1.5, want: cty.NumberFloatVal(1.5)},
		{name: "bool", in: true, want: cty.True},
		{name: "cty passthrough", in: cty.StringVal("y"), want: cty.StringVal("y")},
		{name: "time", in: ts, want: cty.StringVal("2024-05-01T12:00:00Z")},
		{name: "nil", in: nil, want: cty.NullVal(cty.DynamicPseudoType)},
		{name: "mixed slice", in: []any{"a", 1}, want: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)})},
		{name: "typed slice", in: []string{"a", "b"}, want: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
		{name: "map", in: map[string]any{"k": "v"}, want: cty.ObjectVal(map[string]cty.Value{"k": cty.StringVal("v")})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.ToCtyValue(tc.in)
			require.NoError(t, err)
			assert.True(t, got.RawEquals(tc.want), "got %#v", got)
		})
	}
}

func TestConverter_ToCtyValueFailure(t *testing.T) {
	_, err := NewConverter().ToCtyValue(make(chan int))
	assert.Error(t, err)

	_, err = NewConverter().ToCtyValue(map[string]any{"bad": func() {}})
	assert.Error(t, err)
}

func TestConverter_Coerce(t *testing.T) {
	c := NewConverter()

	got, err := c.Coerce(cty.StringVal("3"), cty.Number)
	require.NoError(t, err)
	assert.True(t, got.RawEquals(cty.NumberIntVal(3)))

	_, err = c.Coerce(cty.StringVal("fast"), cty.Number)
	assert.Error(t, err)

	got, err = c.Coerce(cty.True, cty.DynamicPseudoType)
	require.NoError(t, err)
	assert.True(t, got.RawEquals(cty.True))
}

func TestConverter_ParseLiteral(t *testing.T) {
	c := NewConverter()

	v, err := c.ParseLiteral(`42`)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(42)))

	v, err = c.ParseLiteral(`"on"`)
	require.NoError(t, err)
	assert.Equal(t, "on", v.AsString())

	v, err = c.ParseLiteral(`[1, 2]`)
	require.NoError(t, err)
	assert.Equal(t, 2, v.LengthInt())

	_, err = c.ParseLiteral(`on`)
	assert.Error(t, err, "bare words are variable references, not literals")
}
