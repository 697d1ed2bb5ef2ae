package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/zclconf/go-cty/cty"
)

// CreateOrUpdateProperty writes value under key on a vertex or edge. The
// property node is created on first write and updated in place afterwards,
// so concurrent writers of the same key always end up sharing one node.
//
// A value that cannot be converted to the declared field kind is still
// stored, with status BadTypeMismatch, and the call succeeds.
func (m *Manager) CreateOrUpdateProperty(ctx context.Context, owner nodeid.ID, key string, value any) (*node.Property, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty property key", ErrInvalidArgument)
	}
	ownerNode, err := m.store.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	scope, ok := scopeOf(ownerNode)
	if !ok {
		return nil, fmt.Errorf("%w: %s is neither a vertex nor an edge", ErrInvalidArgument, owner)
	}

	dv := m.toDataValue(ctx, ownerNode, key, value)
	if err := checkWellKnown(key, dv); err != nil {
		return nil, err
	}

	id := owner.Child(".", key)
	p, err := m.upsertProperty(ctx, ownerNode, id, key, scope, dv)
	if err != nil {
		return nil, err
	}
	if err := m.syncWellKnown(ctx, ownerNode, key, dv); err != nil {
		return nil, err
	}

	m.publish(eventbus.Event{Kind: eventbus.PropertyChanged, Node: id, Owner: owner, Name: key, Attribute: node.AttributeValue, Value: dv})
	return p, nil
}

func (m *Manager) upsertProperty(ctx context.Context, owner node.Node, id nodeid.ID, key string, scope node.Scope, dv node.DataValue) (*node.Property, error) {
	if p, err := m.existingProperty(ctx, id); err == nil {
		p.SetValue(ctx, dv)
		return p, nil
	} else if !errors.Is(err, nodestore.ErrNotFound) {
		return nil, err
	}

	p := node.NewProperty(id, owner.ID(), key, scope, dv)
	if err := m.store.Insert(ctx, p); err != nil {
		if !errors.Is(err, nodestore.ErrDuplicateIdentifier) {
			return nil, err
		}
		// Lost the race against a concurrent writer of the same key.
		existing, err := m.existingProperty(ctx, id)
		if err != nil {
			return nil, err
		}
		existing.SetValue(ctx, dv)
		return existing, nil
	}
	if err := m.link(ctx, owner.ID(), registry.HasProperty, id); err != nil {
		m.rollback(ctx, id)
		return nil, err
	}

	owner.Base().Notify(ctx, node.Change{Kind: node.PropertyAdded, Related: id, Value: dv})
	ctxlog.FromContext(ctx).Debug("Property created.", "owner", owner.ID().String(), "key", key)
	return p, nil
}

func (m *Manager) existingProperty(ctx context.Context, id nodeid.ID) (*node.Property, error) {
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, ok := n.(*node.Property)
	if !ok {
		return nil, fmt.Errorf("%w: %s is taken by a %s", ErrIdentifierAlreadyExists, id, n.Class())
	}
	return p, nil
}

// RemoveProperty detaches the property key from owner. It is a no-op when
// the property does not exist.
func (m *Manager) RemoveProperty(ctx context.Context, owner nodeid.ID, key string) error {
	p, err := m.Property(ctx, owner, key)
	if errors.Is(err, nodestore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := m.store.Remove(ctx, p.ID()); err != nil && !errors.Is(err, nodestore.ErrNotFound) {
		return err
	}
	p.Notify(ctx, node.Change{Kind: node.Removed})
	if ownerNode, err := m.store.Get(ctx, owner); err == nil {
		ownerNode.Base().Notify(ctx, node.Change{Kind: node.PropertyRemoved, Related: p.ID()})
	}

	ctxlog.FromContext(ctx).Debug("Property removed.", "owner", owner.String(), "key", key)
	m.publish(eventbus.Event{Kind: eventbus.PropertyRemoved, Node: p.ID(), Owner: owner, Name: key})
	return nil
}

func (m *Manager) Property(ctx context.Context, owner nodeid.ID, key string) (*node.Property, error) {
	n, err := m.store.Get(ctx, owner.Child(".", key))
	if err != nil {
		return nil, err
	}
	p, ok := n.(*node.Property)
	if !ok || p.Owner() != owner {
		return nil, fmt.Errorf("%w: property %q of %s", nodestore.ErrNotFound, key, owner)
	}
	return p, nil
}

// Properties returns the properties of owner in creation order.
func (m *Manager) Properties(ctx context.Context, owner nodeid.ID) ([]*node.Property, error) {
	refs, err := m.store.References(ctx, owner, node.Forward, registry.HasProperty)
	if err != nil {
		return nil, err
	}
	props := make([]*node.Property, 0, len(refs))
	for _, ref := range refs {
		n, err := m.store.Get(ctx, ref.Target)
		if err != nil {
			continue
		}
		if p, ok := n.(*node.Property); ok {
			props = append(props, p)
		}
	}
	return props, nil
}

// WriteAttribute applies a protocol write. Values of properties and the
// display name and description of vertices and edges go through the same
// path as graph-level property writes, so the two views stay in step.
func (m *Manager) WriteAttribute(ctx context.Context, id nodeid.ID, attr node.AttributeID, value cty.Value) error {
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	switch el := n.(type) {
	case *node.Property:
		if attr == node.AttributeValue {
			if !el.Writable() {
				return fmt.Errorf("%w: value of %s", ErrNotWritable, id)
			}
			_, err := m.CreateOrUpdateProperty(ctx, el.Owner(), el.Key(), value)
			return err
		}
	case *node.Vertex, *node.Edge:
		key := ""
		switch attr {
		case node.AttributeDisplayName:
			key = attrName
		case node.AttributeDescription:
			key = attrDesc
		}
		if key != "" {
			if err := n.Base().CheckWritable(attr); err != nil {
				return err
			}
			if value == cty.NilVal || value.IsNull() || value.Type() != cty.String {
				return fmt.Errorf("%w: %s expects a string", node.ErrTypeMismatch, attr)
			}
			_, err := m.CreateOrUpdateProperty(ctx, id, key, value)
			return err
		}
	}

	if err := n.WriteAttribute(ctx, attr, value); err != nil {
		return err
	}
	m.publish(eventbus.Event{Kind: eventbus.AttributeChanged, Node: id, Attribute: attr, Value: node.GoodValue(value)})
	return nil
}

// toDataValue converts value and, when the owner's schema declares the key,
// coerces it to the declared kind.
func (m *Manager) toDataValue(ctx context.Context, owner node.Node, key string, value any) node.DataValue {
	logger := ctxlog.FromContext(ctx)

	v, err := m.conv.ToCtyValue(value)
	if err != nil {
		logger.Warn("Property value is not representable.", "owner", owner.ID().String(), "key", key, "error", err)
		return node.NewDataValue(cty.NullVal(cty.DynamicPseudoType), status.BadTypeMismatch)
	}

	if field := m.schemaField(owner, key); field != nil {
		coerced, err := m.conv.Coerce(v, field.Kind)
		if err != nil {
			logger.Warn("Property value does not match its declared kind.",
				"owner", owner.ID().String(), "key", key, "kind", field.Kind.FriendlyName(), "error", err)
			return node.NewDataValue(v, status.BadTypeMismatch)
		}
		v = coerced
	}
	return node.GoodValue(v)
}

// schemaField returns the declared field key of a vertex's schema type,
// searching supertypes when the type itself does not declare it.
func (m *Manager) schemaField(owner node.Node, key string) *config.FieldDefinition {
	v, ok := owner.(*node.Vertex)
	if !ok {
		return nil
	}
	vt, ok := m.registry.VertexTypeOf(v.TypeDefinition())
	if !ok {
		return nil
	}
	for _, f := range m.schemaFields(vt.Definition) {
		if f.Name == key {
			return f
		}
	}
	return nil
}

// schemaFields flattens the fields of def and its supertypes. A field of a
// subtype hides a supertype field with the same name.
func (m *Manager) schemaFields(def *config.TypeDefinition) []*config.FieldDefinition {
	var out []*config.FieldDefinition
	seen := make(map[string]bool)
	visited := make(map[string]bool)
	for def != nil && !visited[def.Name] {
		visited[def.Name] = true
		for _, f := range def.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				out = append(out, f)
			}
		}
		def = m.registry.DefinitionRegistry[def.SuperType]
	}
	return out
}

// deriveSchemaFields writes every declared field that attrs did not supply,
// using the declared default or the zero value of its kind, and applies
// field metadata to all declared properties.
func (m *Manager) deriveSchemaFields(ctx context.Context, owner nodeid.ID, def *config.TypeDefinition, attrs map[string]any) error {
	for _, f := range m.schemaFields(def) {
		if reservedAttrs[f.Name] {
			continue
		}
		if _, supplied := attrs[f.Name]; !supplied {
			value := zeroValue(f.Kind)
			if f.Default != nil {
				value = *f.Default
			}
			if _, err := m.CreateOrUpdateProperty(ctx, owner, f.Name, value); err != nil {
				return err
			}
		}

		p, err := m.Property(ctx, owner, f.Name)
		if err != nil {
			return err
		}
		if desc := fieldDescription(f); desc != "" {
			p.SetDescription(ctx, desc)
		}
		if f.ReadOnly {
			p.SetReadOnly()
		}
	}
	return nil
}

func fieldDescription(f *config.FieldDefinition) string {
	switch {
	case f.Unit == "":
		return f.Description
	case f.Description == "":
		return "unit: " + f.Unit
	default:
		return f.Description + " (unit: " + f.Unit + ")"
	}
}

func zeroValue(t cty.Type) cty.Value {
	switch {
	case t == cty.String:
		return cty.StringVal("")
	case t == cty.Number:
		return cty.Zero
	case t == cty.Bool:
		return cty.False
	case t.IsListType():
		return cty.ListValEmpty(t.ElementType())
	case t.IsMapType():
		return cty.MapValEmpty(t.ElementType())
	case t.IsSetType():
		return cty.SetValEmpty(t.ElementType())
	}
	return cty.NullVal(t)
}

// checkWellKnown rejects values that would leave a well-known attribute
// empty.
func checkWellKnown(key string, dv node.DataValue) error {
	if key != attrLabel && key != attrName {
		return nil
	}
	if s, ok := stringValue(dv); ok && s == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, key)
	}
	return nil
}

// syncWellKnown mirrors label, name and description onto the element.
func (m *Manager) syncWellKnown(ctx context.Context, owner node.Node, key string, dv node.DataValue) error {
	s, ok := stringValue(dv)
	if !ok {
		return nil
	}
	rec := owner.Base()
	switch key {
	case attrLabel:
		switch el := owner.(type) {
		case *node.Vertex:
			return el.SetLabel(ctx, s)
		case *node.Edge:
			return el.SetLabel(ctx, s)
		}
	case attrName:
		if err := rec.SetBrowseName(ctx, node.NewQualifiedName(m.namespace, s)); err != nil {
			return err
		}
		rec.SetDisplayName(ctx, s)
	case attrDesc:
		rec.SetDescription(ctx, s)
	}
	return nil
}

func scopeOf(n node.Node) (node.Scope, bool) {
	switch n.(type) {
	case *node.Vertex:
		return node.VertexScope, true
	case *node.Edge:
		return node.EdgeScope, true
	}
	return 0, false
}

// stringValue returns the string held by a good data value.
func stringValue(dv node.DataValue) (string, bool) {
	v := dv.Value
	if !dv.Status.IsGood() || v == cty.NilVal || v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}
