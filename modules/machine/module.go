// Package machine is an example plugin. It claims the "Machine" vertex type
// and keeps a material-flow index of the "feeds" edges between machines.
package machine

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
)

const (
	PluginName = "machine"
	TypeName   = "Machine"
	FeedsEdge  = "feeds"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	mu sync.Mutex
	// downstream maps a machine to the machines it feeds, counting parallel
	// edges.
	downstream map[nodeid.ID]map[nodeid.ID]int
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterPlugin(PluginName, &registry.RegisteredPlugin{
		OwnsType:     func(typeName string) bool { return typeName == TypeName },
		OwnsEdgeType: func(edgeType string) bool { return edgeType == FeedsEdge },
		Construct:    m.construct,
		OnAddEdge:    m.onAddEdge,
		OnRemoveEdge: m.onRemoveEdge,
	})
}

func (m *Module) construct(ctx context.Context, spec registry.VertexSpec) (*node.Vertex, error) {
	v := node.NewVertex(spec.ID, spec.BrowseName, spec.Label, spec.Type.ID)
	if spec.Description == "" {
		v.SetDescription(ctx, "Machine "+spec.ID.Identifier())
	}
	ctxlog.FromContext(ctx).Debug("Machine constructed.", "machine", spec.ID.String())
	return v, nil
}

func (m *Module) onAddEdge(ctx context.Context, e registry.EdgeNotice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downstream == nil {
		m.downstream = make(map[nodeid.ID]map[nodeid.ID]int)
	}
	targets, ok := m.downstream[e.Source]
	if !ok {
		targets = make(map[nodeid.ID]int)
		m.downstream[e.Source] = targets
	}
	targets[e.Target]++
	ctxlog.FromContext(ctx).Debug("Machine feed added.", "from", e.Source.String(), "to", e.Target.String())
}

func (m *Module) onRemoveEdge(ctx context.Context, e registry.EdgeNotice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := m.downstream[e.Source]
	if targets[e.Target] == 0 {
		return
	}
	targets[e.Target]--
	if targets[e.Target] == 0 {
		delete(targets, e.Target)
	}
	if len(targets) == 0 {
		delete(m.downstream, e.Source)
	}
	ctxlog.FromContext(ctx).Debug("Machine feed removed.", "from", e.Source.String(), "to", e.Target.String())
}

// Downstream returns the machines fed directly by id, sorted by id.
func (m *Module) Downstream(id nodeid.ID) []nodeid.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]nodeid.ID, 0, len(m.downstream[id]))
	for target := range m.downstream[id] {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
