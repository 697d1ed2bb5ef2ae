package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
)

// VertexSpec carries the resolved arguments of an AddVertex call to a
// plugin constructor.
type VertexSpec struct {
	ID          nodeid.ID
	BrowseName  node.QualifiedName
	Label       string
	Description string
	Type        *VertexType
	Attributes  map[string]any
}

// EdgeNotice describes an edge to the plugins that own its type.
type EdgeNotice struct {
	Edge   nodeid.ID
	Source nodeid.ID
	Target nodeid.ID
	Type   string
	Label  string
}

// RegisteredPlugin holds the compiled Go parts of a plugin. Every field is
// optional.
type RegisteredPlugin struct {
	// OwnsType reports whether the plugin claims the vertex type name.
	OwnsType func(typeName string) bool
	// OwnsEdgeType reports whether the plugin wants notifications for edges
	// of the given type.
	OwnsEdgeType func(edgeType string) bool
	// Construct builds the vertex for a claimed type. Returning a nil vertex
	// falls back to the default constructor.
	Construct func(ctx context.Context, spec VertexSpec) (*node.Vertex, error)
	// OnAddEdge is called after an owned edge is fully linked.
	OnAddEdge func(ctx context.Context, e EdgeNotice)
	// OnRemoveEdge is called before an owned edge is unlinked.
	OnRemoveEdge func(ctx context.Context, e EdgeNotice)
}

// RegisterPlugin registers a plugin under a unique name. Plugins are consulted
// in registration order.
func (r *Registry) RegisterPlugin(name string, plugin *RegisteredPlugin) {
	if _, exists := r.Plugins[name]; exists {
		panic(fmt.Sprintf("plugin with name '%s' already registered", name))
	}
	slog.Debug("Registering plugin.", "name", name)
	r.Plugins[name] = plugin
	r.pluginOrder = append(r.pluginOrder, name)
}

// PluginNames returns the registered plugin names in registration order.
func (r *Registry) PluginNames() []string {
	return append([]string(nil), r.pluginOrder...)
}

// claimingPlugin returns the first plugin, in order, that claims typeName.
func (r *Registry) claimingPlugin(typeName string) (string, *RegisteredPlugin) {
	for _, name := range r.pluginOrder {
		p := r.Plugins[name]
		if p.OwnsType != nil && p.OwnsType(typeName) {
			return name, p
		}
	}
	return "", nil
}

// EdgePlugins returns the plugins interested in edges of edgeType, in
// registration order. A plugin named by the schema's edge type is included
// even if it has no ownership predicate.
func (r *Registry) EdgePlugins(edgeType string) []*RegisteredPlugin {
	var named string
	if def, ok := r.EdgeDefinitionRegistry[edgeType]; ok {
		named = def.Plugin
	}
	var out []*RegisteredPlugin
	for _, name := range r.pluginOrder {
		p := r.Plugins[name]
		if name == named || (p.OwnsEdgeType != nil && p.OwnsEdgeType(edgeType)) {
			out = append(out, p)
		}
	}
	return out
}
