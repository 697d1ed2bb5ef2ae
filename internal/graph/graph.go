package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/directory"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
)

const (
	defaultVertexLabel = "vertex"
	defaultEdgeLabel   = "edge"
)

// Keys with a structural meaning in AddVertex and AddEdge attributes. They
// are consumed by the mapper and never written verbatim as properties.
const (
	attrID        = "id"
	attrLabel     = "label"
	attrType      = "type"
	attrDirectory = "directory"
	attrName      = "name"
	attrDesc      = "description"
	attrSource    = "source"
	attrTarget    = "target"
)

var reservedAttrs = map[string]bool{
	attrID:        true,
	attrLabel:     true,
	attrType:      true,
	attrDirectory: true,
}

// edgeEndpointAttrs mirror Edge.Source and Edge.Target and are only written
// by AddEdge itself.
var edgeEndpointAttrs = map[string]bool{
	attrSource: true,
	attrTarget: true,
}

// Manager is the element mapper. It composes the store, the type registry,
// the directory builder and the event bus into the Graph API.
type Manager struct {
	store     nodestore.Store
	registry  *registry.Registry
	directory *directory.Builder
	bus       *eventbus.Bus
	conv      config.Converter
	namespace uint16

	semantic semanticLocks
}

var _ Graph = (*Manager)(nil)

// New creates a Manager over a bootstrapped registry. bus may be nil, in
// which case no change events are published.
func New(reg *registry.Registry, dir *directory.Builder, bus *eventbus.Bus, conv config.Converter) *Manager {
	return &Manager{
		store:     reg.Store(),
		registry:  reg,
		directory: dir,
		bus:       bus,
		conv:      conv,
		namespace: reg.Namespace(),
	}
}

func (m *Manager) Store() nodestore.Store { return m.store }

func (m *Manager) Registry() *registry.Registry { return m.registry }

// AddVertex creates a vertex, links its type definition, places it under the
// vertices folder, attaches its methods and writes its initial properties.
// If any step fails the vertex is removed again so the same id can be
// retried.
func (m *Manager) AddVertex(ctx context.Context, requestedID string, attrs map[string]any) (*node.Vertex, error) {
	raw := requestedID
	if raw == "" {
		raw = stringAttr(attrs, attrID)
	}
	id, err := m.elementID(raw)
	if err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "vertex", id.String())

	label := stringAttr(attrs, attrLabel)
	if label == "" {
		label = defaultVertexLabel
	}

	vt, err := m.registry.ResolveVertexType(ctx, stringAttr(attrs, attrType))
	if err != nil {
		return nil, err
	}

	browseName := node.NewQualifiedName(m.namespace, id.Identifier())
	var v *node.Vertex
	if vt.Plugin != nil && vt.Plugin.Construct != nil {
		v, err = vt.Plugin.Construct(ctx, registry.VertexSpec{
			ID:          id,
			BrowseName:  browseName,
			Label:       label,
			Description: stringAttr(attrs, attrDesc),
			Type:        vt,
			Attributes:  attrs,
		})
		if err != nil {
			return nil, fmt.Errorf("plugin %q failed to construct vertex %s: %w", vt.PluginName, id, err)
		}
	}
	if v == nil {
		v = node.NewVertex(id, browseName, label, vt.ID)
	}

	if err := m.insert(ctx, v); err != nil {
		return nil, err
	}
	if err := m.link(ctx, id, registry.HasTypeDefinition, vt.ID); err != nil {
		m.rollback(ctx, id)
		return nil, err
	}
	if err := m.directory.Place(ctx, id, registry.VerticesFolder, stringAttr(attrs, attrDirectory)); err != nil {
		m.rollback(ctx, id)
		return nil, err
	}
	if err := m.attachMethods(ctx, id); err != nil {
		m.discard(ctx, id)
		return nil, err
	}

	if err := m.writeVertexProperties(ctx, id, label, vt, attrs); err != nil {
		m.discard(ctx, id)
		return nil, err
	}

	logger.Debug("Vertex added.", "type", vt.Name, "label", label)
	m.publish(eventbus.Event{Kind: eventbus.VertexAdded, Node: id, Name: label})
	return v, nil
}

// AddEdge creates an edge between two existing nodes. The edge type is
// attrs["type"], falling back to the label, and the label falls back to the
// type. Structural references and methods come before any property. If any
// step fails the edge is removed again so the same id can be retried.
func (m *Manager) AddEdge(ctx context.Context, source, target nodeid.ID, label string, attrs map[string]any) (*node.Edge, error) {
	typeName := stringAttr(attrs, attrType)
	if typeName == "" {
		typeName = label
	}
	if typeName == "" {
		typeName = defaultEdgeLabel
	}
	if label == "" {
		label = typeName
	}

	id, err := m.elementID(stringAttr(attrs, attrID))
	if err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "edge", id.String())

	if _, err := m.store.Get(ctx, source); err != nil {
		return nil, fmt.Errorf("edge source: %w", err)
	}
	if _, err := m.store.Get(ctx, target); err != nil {
		return nil, fmt.Errorf("edge target: %w", err)
	}

	refType, err := m.registry.ResolveOrCreateReferenceType(ctx, typeName)
	if err != nil {
		return nil, err
	}

	e := node.NewEdge(id, node.NewQualifiedName(m.namespace, id.Identifier()), label, source, target, refType)
	if err := m.insert(ctx, e); err != nil {
		return nil, err
	}

	if err := m.linkEdge(ctx, e); err != nil {
		return nil, err
	}
	if err := m.directory.Place(ctx, id, registry.EdgesFolder, stringAttr(attrs, attrDirectory)); err != nil {
		m.discardEdge(ctx, e)
		return nil, err
	}
	if err := m.attachMethods(ctx, id); err != nil {
		m.discardEdge(ctx, e)
		return nil, err
	}
	if err := m.writeEdgeProperties(ctx, e, typeName, attrs); err != nil {
		m.discardEdge(ctx, e)
		return nil, err
	}

	notice := registry.EdgeNotice{Edge: id, Source: source, Target: target, Type: typeName, Label: label}
	for _, p := range m.registry.EdgePlugins(typeName) {
		if p.OnAddEdge != nil {
			p.OnAddEdge(ctx, notice)
		}
	}

	logger.Debug("Edge added.", "type", typeName, "source", source.String(), "target", target.String())
	m.publish(eventbus.Event{Kind: eventbus.EdgeAdded, Node: id, Owner: source, Name: typeName})
	return e, nil
}

// RemoveVertex removes a vertex together with its properties and methods.
// Edges attached to it stay in the store and remain reachable by id.
func (m *Manager) RemoveVertex(ctx context.Context, id nodeid.ID) error {
	v, err := m.Vertex(ctx, id)
	if err != nil {
		return err
	}
	if err := m.removeOwned(ctx, id); err != nil {
		return err
	}
	if _, err := m.store.Remove(ctx, id); err != nil {
		return err
	}
	v.Notify(ctx, node.Change{Kind: node.Removed})

	ctxlog.FromContext(ctx).Debug("Vertex removed.", "vertex", id.String())
	m.publish(eventbus.Event{Kind: eventbus.VertexRemoved, Node: id, Name: v.Label()})
	return nil
}

// RemoveEdge removes an edge. Plugins are told before it is unlinked. The
// semantic reference between the endpoints is removed only when no other
// edge of the same type still links them.
func (m *Manager) RemoveEdge(ctx context.Context, id nodeid.ID) error {
	e, err := m.Edge(ctx, id)
	if err != nil {
		return err
	}

	typeName := e.Label()
	if p, err := m.Property(ctx, id, attrType); err == nil {
		if s, ok := stringValue(p.Value()); ok && s != "" {
			typeName = s
		}
	}
	notice := registry.EdgeNotice{Edge: id, Source: e.Source(), Target: e.Target(), Type: typeName, Label: e.Label()}
	for _, p := range m.registry.EdgePlugins(typeName) {
		if p.OnRemoveEdge != nil {
			p.OnRemoveEdge(ctx, notice)
		}
	}

	if err := m.removeOwned(ctx, id); err != nil {
		return err
	}
	if err := m.unlinkEdge(ctx, e); err != nil {
		return err
	}
	e.Notify(ctx, node.Change{Kind: node.Removed})

	ctxlog.FromContext(ctx).Debug("Edge removed.", "edge", id.String(), "type", typeName)
	m.publish(eventbus.Event{Kind: eventbus.EdgeRemoved, Node: id, Owner: e.Source(), Name: typeName})
	return nil
}

// parallelEdgeExists reports whether another live edge links the endpoints
// of e with the same reference type.
func (m *Manager) parallelEdgeExists(ctx context.Context, e *node.Edge) bool {
	out, err := m.OutEdges(ctx, e.Source())
	if err != nil {
		return false
	}
	for _, other := range out {
		if other.ID() != e.ID() && other.Target() == e.Target() && other.ReferenceType() == e.ReferenceType() {
			return true
		}
	}
	return false
}

// removeOwned removes the properties and methods of owner.
func (m *Manager) removeOwned(ctx context.Context, owner nodeid.ID) error {
	for _, refType := range []nodeid.ID{registry.HasProperty, registry.HasComponent} {
		refs, err := m.store.References(ctx, owner, node.Forward, refType)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if _, err := m.store.Remove(ctx, ref.Target); err != nil && !errors.Is(err, nodestore.ErrNotFound) {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) Vertex(ctx context.Context, id nodeid.ID) (*node.Vertex, error) {
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok := n.(*node.Vertex)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a vertex", nodestore.ErrNotFound, id)
	}
	return v, nil
}

func (m *Manager) Edge(ctx context.Context, id nodeid.ID) (*node.Edge, error) {
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e, ok := n.(*node.Edge)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an edge", nodestore.ErrNotFound, id)
	}
	return e, nil
}

// OutEdges returns the edges whose source is id, in creation order.
func (m *Manager) OutEdges(ctx context.Context, id nodeid.ID) ([]*node.Edge, error) {
	return m.edgesVia(ctx, id, registry.HasOutgoingEdge)
}

// InEdges returns the edges whose target is id, in creation order.
func (m *Manager) InEdges(ctx context.Context, id nodeid.ID) ([]*node.Edge, error) {
	return m.edgesVia(ctx, id, registry.HasIncomingEdge)
}

func (m *Manager) edgesVia(ctx context.Context, id, refType nodeid.ID) ([]*node.Edge, error) {
	refs, err := m.store.References(ctx, id, node.Forward, refType)
	if err != nil {
		return nil, err
	}
	edges := make([]*node.Edge, 0, len(refs))
	for _, ref := range refs {
		if e, err := m.Edge(ctx, ref.Target); err == nil {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

func (m *Manager) Adjacent(ctx context.Context, id nodeid.ID, dir node.Direction, label string) ([]*node.Vertex, error) {
	if _, err := m.store.Get(ctx, id); err != nil {
		return nil, err
	}

	var out []*node.Vertex
	seen := make(map[nodeid.ID]bool)
	collect := func(edges []*node.Edge, far func(*node.Edge) nodeid.ID) {
		for _, e := range edges {
			if label != "" && e.Label() != label {
				continue
			}
			other := far(e)
			if seen[other] {
				continue
			}
			if v, err := m.Vertex(ctx, other); err == nil {
				seen[other] = true
				out = append(out, v)
			}
		}
	}

	if dir == node.Forward || dir == node.Both {
		edges, err := m.OutEdges(ctx, id)
		if err != nil {
			return nil, err
		}
		collect(edges, (*node.Edge).Target)
	}
	if dir == node.Inverse || dir == node.Both {
		edges, err := m.InEdges(ctx, id)
		if err != nil {
			return nil, err
		}
		collect(edges, (*node.Edge).Source)
	}
	return out, nil
}

func (m *Manager) Vertices(ctx context.Context) []*node.Vertex {
	var out []*node.Vertex
	for _, n := range m.store.All(ctx) {
		if v, ok := n.(*node.Vertex); ok {
			out = append(out, v)
		}
	}
	return out
}

func (m *Manager) Edges(ctx context.Context) []*node.Edge {
	var out []*node.Edge
	for _, n := range m.store.All(ctx) {
		if e, ok := n.(*node.Edge); ok {
			out = append(out, e)
		}
	}
	return out
}

// elementID turns a caller-supplied id into a node id, generating one when
// raw is empty. Ids in the space of on-demand type and folder nodes are
// refused.
func (m *Manager) elementID(raw string) (nodeid.ID, error) {
	if raw == "" {
		return nodeid.NewString(m.namespace, uuid.New().String()), nil
	}
	id, err := nodeid.ParseOrString(m.namespace, raw)
	if err != nil {
		return nodeid.Null, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if m.registry.IsReserved(id) {
		return nodeid.Null, fmt.Errorf("%w: identifier %s is reserved for type and folder nodes", ErrInvalidArgument, id)
	}
	return id, nil
}

func (m *Manager) insert(ctx context.Context, n node.Node) error {
	if err := m.store.Insert(ctx, n); err != nil {
		if errors.Is(err, nodestore.ErrDuplicateIdentifier) {
			return fmt.Errorf("%w: %s", ErrIdentifierAlreadyExists, n.ID())
		}
		return err
	}
	return nil
}

func (m *Manager) link(ctx context.Context, source, refType, target nodeid.ID) error {
	if err := m.store.AddReference(ctx, node.NewReference(source, refType, target)); err != nil {
		return fmt.Errorf("link %s -> %s: %w", source, target, err)
	}
	return nil
}

// rollback removes a half-built element. Removing the record detaches every
// reference it took part in.
func (m *Manager) rollback(ctx context.Context, id nodeid.ID) {
	if _, err := m.store.Remove(ctx, id); err != nil {
		ctxlog.FromContext(ctx).Warn("Rollback failed.", "node", id.String(), "error", err)
	}
}

// writeAttrs writes every attribute that is neither reserved nor in skip as
// a property, in key order.
func (m *Manager) writeAttrs(ctx context.Context, owner nodeid.ID, attrs map[string]any, skip map[string]bool) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if !reservedAttrs[k] && !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := m.CreateOrUpdateProperty(ctx, owner, k, attrs[k]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) publish(e eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

func stringAttr(attrs map[string]any, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}
