package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given files or directories,
	// translates it into the format-agnostic model, and returns a matching
	// Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the bridge between native Go values, literal text and the
// tagged cty values stored in properties.
type Converter interface {
	// ToCtyValue converts a native Go value (like a map[string]any) into its
	// equivalent cty.Value.
	ToCtyValue(v any) (cty.Value, error)

	// Coerce converts v to the wanted type, e.g. a string "3" to a number.
	Coerce(v cty.Value, want cty.Type) (cty.Value, error)

	// ParseLiteral evaluates a literal expression such as `42`, `"on"` or
	// `[1, 2]` without any variables in scope.
	ParseLiteral(src string) (cty.Value, error)
}
