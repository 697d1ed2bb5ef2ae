package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// reservedFields cannot be declared as schema fields because AddVertex
// consumes them before any property is written.
var reservedFields = map[string]struct{}{
	"id":        {},
	"directory": {},
	"type":      {},
	"label":     {},
}

// ValidateRegistry performs a strict parity check between the schema and the
// registered plugins, and checks every field declaration.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, typeName := range sortedKeys(r.DefinitionRegistry) {
		def := r.DefinitionRegistry[typeName]

		if def.Plugin != "" {
			plugin, ok := r.Plugins[def.Plugin]
			if !ok {
				errs = append(errs, fmt.Sprintf("vertex type '%s': plugin '%s' is not registered", typeName, def.Plugin))
			} else if plugin.OwnsType != nil && !plugin.OwnsType(typeName) {
				errs = append(errs, fmt.Sprintf("vertex type '%s': plugin '%s' does not claim this type", typeName, def.Plugin))
			}
		}
		if def.SuperType != "" {
			if _, ok := r.DefinitionRegistry[def.SuperType]; !ok && def.SuperType != "BaseVertexType" {
				errs = append(errs, fmt.Sprintf("vertex type '%s': unknown supertype '%s'", typeName, def.SuperType))
			}
		}

		seen := make(map[string]struct{}, len(def.Fields))
		for _, field := range def.Fields {
			if _, dup := seen[field.Name]; dup {
				errs = append(errs, fmt.Sprintf("vertex type '%s': field '%s' declared twice", typeName, field.Name))
				continue
			}
			seen[field.Name] = struct{}{}

			if _, reserved := reservedFields[field.Name]; reserved {
				errs = append(errs, fmt.Sprintf("vertex type '%s': field name '%s' is reserved", typeName, field.Name))
				continue
			}
			if field.Kind == cty.NilType || field.Kind.Equals(cty.DynamicPseudoType) {
				logger.Warn("Schema field has 'type = any', which disables value coercion. Consider using a specific type like 'string', 'number', or 'bool'.", "type", typeName, "field", field.Name)
				continue
			}
			if field.Default != nil {
				if _, err := convert.Convert(*field.Default, field.Kind); err != nil {
					errs = append(errs, fmt.Sprintf("vertex type '%s', field '%s': default does not convert to '%s': %v",
						typeName, field.Name, field.Kind.FriendlyName(), err))
				}
			}
		}
	}

	for _, edgeType := range sortedKeys(r.EdgeDefinitionRegistry) {
		def := r.EdgeDefinitionRegistry[edgeType]
		if def.Plugin == "" {
			continue
		}
		plugin, ok := r.Plugins[def.Plugin]
		if !ok {
			errs = append(errs, fmt.Sprintf("edge type '%s': plugin '%s' is not registered", edgeType, def.Plugin))
		} else if plugin.OnAddEdge == nil && plugin.OnRemoveEdge == nil {
			errs = append(errs, fmt.Sprintf("edge type '%s': plugin '%s' has no edge handlers", edgeType, def.Plugin))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
