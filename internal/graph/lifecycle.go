package graph

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
)

// semanticLocks serialize the linking and unlinking of the semantic
// reference (source, type, target) shared by parallel edges. Locks are
// striped by a hash of the triple.
type semanticLocks [64]sync.Mutex

func (l *semanticLocks) lock(ref node.Reference) (unlock func()) {
	h := fnv.New32a()
	h.Write([]byte(ref.Source.String()))
	h.Write([]byte{0})
	h.Write([]byte(ref.Type.String()))
	h.Write([]byte{0})
	h.Write([]byte(ref.Target.String()))
	mu := &l[h.Sum32()%uint32(len(l))]
	mu.Lock()
	return mu.Unlock
}

func semanticOf(e *node.Edge) node.Reference {
	return node.NewReference(e.Source(), e.ReferenceType(), e.Target())
}

// writeVertexProperties writes the well-known, caller and schema properties
// of a new vertex.
func (m *Manager) writeVertexProperties(ctx context.Context, id nodeid.ID, label string, vt *registry.VertexType, attrs map[string]any) error {
	if _, err := m.CreateOrUpdateProperty(ctx, id, attrLabel, label); err != nil {
		return err
	}
	if _, err := m.CreateOrUpdateProperty(ctx, id, attrType, vt.Name); err != nil {
		return err
	}
	if err := m.writeAttrs(ctx, id, attrs, nil); err != nil {
		return err
	}
	return m.deriveSchemaFields(ctx, id, vt.Definition, attrs)
}

// writeEdgeProperties writes the well-known and caller properties of a new
// edge. Caller values for source and target are ignored.
func (m *Manager) writeEdgeProperties(ctx context.Context, e *node.Edge, typeName string, attrs map[string]any) error {
	props := []struct {
		key   string
		value string
	}{
		{attrLabel, e.Label()},
		{attrType, typeName},
		{attrSource, e.Source().String()},
		{attrTarget, e.Target().String()},
	}
	for _, p := range props {
		if _, err := m.CreateOrUpdateProperty(ctx, e.ID(), p.key, p.value); err != nil {
			return err
		}
	}
	return m.writeAttrs(ctx, e.ID(), attrs, edgeEndpointAttrs)
}

// linkEdge adds the structural references of an inserted edge and the
// semantic reference between its endpoints. On failure the edge record is
// removed again.
func (m *Manager) linkEdge(ctx context.Context, e *node.Edge) error {
	id := e.ID()
	semantic := semanticOf(e)
	unlock := m.semantic.lock(semantic)
	defer unlock()

	refs := []node.Reference{
		node.NewReference(id, registry.HasTypeDefinition, registry.BaseEdgeType),
		node.NewReference(id, registry.HasSourceNode, e.Source()),
		node.NewReference(id, registry.HasTargetNode, e.Target()),
		node.NewReference(e.Source(), registry.HasOutgoingEdge, id),
		node.NewReference(e.Target(), registry.HasIncomingEdge, id),
		semantic,
	}
	for _, ref := range refs {
		if err := m.store.AddReference(ctx, ref); err != nil {
			if uerr := m.unlinkEdgeLocked(ctx, e); uerr != nil {
				ctxlog.FromContext(ctx).Warn("Rollback failed.", "node", id.String(), "error", uerr)
			}
			return fmt.Errorf("link edge %s: %w", id, err)
		}
	}
	return nil
}

// unlinkEdge removes the edge record. The semantic reference goes too unless
// a parallel edge of the same type still links the endpoints.
func (m *Manager) unlinkEdge(ctx context.Context, e *node.Edge) error {
	unlock := m.semantic.lock(semanticOf(e))
	defer unlock()
	return m.unlinkEdgeLocked(ctx, e)
}

func (m *Manager) unlinkEdgeLocked(ctx context.Context, e *node.Edge) error {
	if _, err := m.store.Remove(ctx, e.ID()); err != nil {
		return err
	}
	if m.parallelEdgeExists(ctx, e) {
		return nil
	}
	return m.store.RemoveReference(ctx, semanticOf(e))
}

// discard removes a vertex whose construction failed after insertion,
// together with whatever properties and methods it already has, so the same
// id can be retried.
func (m *Manager) discard(ctx context.Context, id nodeid.ID) {
	if err := m.removeOwned(ctx, id); err != nil {
		ctxlog.FromContext(ctx).Warn("Rollback failed.", "node", id.String(), "error", err)
	}
	m.rollback(ctx, id)
}

// discardEdge is discard for edges.
func (m *Manager) discardEdge(ctx context.Context, e *node.Edge) {
	if err := m.removeOwned(ctx, e.ID()); err != nil {
		ctxlog.FromContext(ctx).Warn("Rollback failed.", "node", e.ID().String(), "error", err)
	}
	if err := m.unlinkEdge(ctx, e); err != nil {
		ctxlog.FromContext(ctx).Warn("Rollback failed.", "node", e.ID().String(), "error", err)
	}
}
