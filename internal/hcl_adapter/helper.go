package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// translateFieldDefinition processes a single HCL field block, handling its
// default value and type parsing.
func translateFieldDefinition(ctx context.Context, f *schema.Field, typeName string) (*config.FieldDefinition, error) {
	kind := cty.DynamicPseudoType
	if isExprDefined(ctx, f.Type, "type") {
		parsed, err := typeExprToCtyType(ctx, f.Type)
		if err != nil {
			return nil, fmt.Errorf("in vertex type '%s', field '%s': %w", typeName, f.Name, err)
		}
		kind = parsed
	}

	var defaultVal *cty.Value
	if f.Default != nil {
		val, diags := f.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default value for field '%s' in vertex type '%s': %w", f.Name, typeName, diags)
		}
		if !val.IsNull() {
			defaultVal = &val
		}
	}

	return &config.FieldDefinition{
		Name:        f.Name,
		Kind:        kind,
		Unit:        f.Unit,
		Description: f.Description,
		Default:     defaultVal,
		ReadOnly:    f.ReadOnly,
	}, nil
}
