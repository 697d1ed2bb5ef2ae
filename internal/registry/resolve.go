package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
)

// VertexType is a resolved vertex type: its object type id and whatever the
// registry knows about constructing it.
type VertexType struct {
	ID         nodeid.ID
	Name       string
	PluginName string
	Plugin     *RegisteredPlugin
	Definition *config.TypeDefinition
}

// ResolveOrCreateReferenceType returns the id of the reference type whose
// browse name is label, creating it as a subtype of NonHierarchicalReferences
// when none exists. The same label always yields the same id.
func (r *Registry) ResolveOrCreateReferenceType(ctx context.Context, label string) (nodeid.ID, error) {
	if label == "" {
		return nodeid.Null, fmt.Errorf("%w: empty reference type name", ErrInvalidTypeReference)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.resolveReferenceTypeLocked(ctx, label)
}

func (r *Registry) resolveReferenceTypeLocked(ctx context.Context, label string) (nodeid.ID, error) {
	if id, ok := r.refTypes[label]; ok {
		return id, nil
	}

	inverse := "is a " + label + " of"
	symmetric := false
	var description string
	if def, ok := r.EdgeDefinitionRegistry[label]; ok {
		if def.InverseName != "" {
			inverse = def.InverseName
		}
		symmetric = def.Symmetric
		description = def.Description
	}

	id := nodeid.NewString(r.namespace, ReferenceTypePrefix+label)
	rt := node.NewReferenceType(id, node.NewQualifiedName(r.namespace, label), inverse, NonHierarchicalReferences, symmetric, false)
	if description != "" {
		rt.SetDescription(ctx, description)
	}
	if err := r.store.Insert(ctx, rt); err != nil {
		return nodeid.Null, fmt.Errorf("create reference type %q: %w", label, err)
	}
	if err := r.link(ctx, NonHierarchicalReferences, HasSubtype, id); err != nil {
		r.store.Remove(ctx, id)
		return nodeid.Null, err
	}
	if err := r.link(ctx, ReferenceTypesFolder, Organizes, id); err != nil {
		r.store.Remove(ctx, id)
		return nodeid.Null, err
	}

	r.refTypes[label] = id
	r.supertypes[id] = NonHierarchicalReferences
	ctxlog.FromContext(ctx).Debug("Reference type created.", "label", label, "id", id.String())
	return id, nil
}

// ReferenceType returns the id of an existing reference type by browse name.
func (r *Registry) ReferenceType(label string) (nodeid.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.refTypes[label]
	return id, ok
}

// ResolveVertexType resolves a requested type. In order: a plugin-claimed
// name, a schema or already registered object type name, the literal id of
// an existing object type, and, for an empty request, BaseVertexType.
func (r *Registry) ResolveVertexType(ctx context.Context, requested string) (*VertexType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requested == "" {
		return r.vertexTypeLocked(BaseVertexType, "BaseVertexType"), nil
	}

	if pluginName, plugin := r.claimingPlugin(requested); plugin != nil {
		vt, err := r.ensureSchemaTypeLocked(ctx, requested, nil)
		if err != nil {
			return nil, err
		}
		vt.PluginName, vt.Plugin = pluginName, plugin
		return vt, nil
	}

	if id, ok := r.objTypes[requested]; ok {
		return r.vertexTypeLocked(id, requested), nil
	}
	if _, ok := r.DefinitionRegistry[requested]; ok {
		return r.ensureSchemaTypeLocked(ctx, requested, nil)
	}

	if id, err := nodeid.Parse(requested); err == nil {
		n, err := r.store.Get(ctx, id)
		if err == nil && n.Class() == node.ClassObjectType {
			return r.vertexTypeLocked(id, n.Base().BrowseName().Name), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidTypeReference, requested)
}

// vertexTypeLocked returns the cached VertexType for id, creating the entry
// for types that were registered without one.
func (r *Registry) vertexTypeLocked(id nodeid.ID, name string) *VertexType {
	if vt, ok := r.vertexTypes[id]; ok {
		return vt
	}
	vt := &VertexType{ID: id, Name: name}
	r.vertexTypes[id] = vt
	return vt
}

// ensureSchemaTypeLocked makes sure an object type named name exists. Schema
// definitions supply the supertype, description and plugin binding; names
// without a definition become direct subtypes of BaseVertexType.
func (r *Registry) ensureSchemaTypeLocked(ctx context.Context, name string, visiting map[string]bool) (*VertexType, error) {
	if id, ok := r.objTypes[name]; ok {
		return r.vertexTypeLocked(id, name), nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: supertype cycle at %q", ErrInvalidTypeReference, name)
	}

	def := r.DefinitionRegistry[name]
	supertype := BaseVertexType
	if def != nil && def.SuperType != "" {
		if visiting == nil {
			visiting = make(map[string]bool)
		}
		visiting[name] = true
		if _, ok := r.DefinitionRegistry[def.SuperType]; !ok {
			if _, ok := r.objTypes[def.SuperType]; !ok {
				return nil, fmt.Errorf("%w: unknown supertype %q of %q", ErrInvalidTypeReference, def.SuperType, name)
			}
		}
		parent, err := r.ensureSchemaTypeLocked(ctx, def.SuperType, visiting)
		if err != nil {
			return nil, err
		}
		supertype = parent.ID
	}

	id := nodeid.NewString(r.namespace, ObjectTypePrefix+name)
	ot := node.NewObjectType(id, node.NewQualifiedName(r.namespace, name), supertype, false)
	if def != nil && def.Description != "" {
		ot.SetDescription(ctx, def.Description)
	}
	if err := r.store.Insert(ctx, ot); err != nil && !errors.Is(err, nodestore.ErrDuplicateIdentifier) {
		return nil, fmt.Errorf("create object type %q: %w", name, err)
	}
	if err := r.link(ctx, supertype, HasSubtype, id); err != nil {
		return nil, err
	}
	if err := r.link(ctx, ObjectTypesFolder, Organizes, id); err != nil {
		return nil, err
	}

	r.objTypes[name] = id
	r.supertypes[id] = supertype
	vt := r.vertexTypeLocked(id, name)
	vt.Definition = def
	if def != nil && def.Plugin != "" {
		vt.PluginName, vt.Plugin = def.Plugin, r.Plugins[def.Plugin]
	}
	ctxlog.FromContext(ctx).Debug("Object type created.", "name", name, "id", id.String(), "supertype", supertype.String())
	return vt, nil
}

// IsSubtype reports whether typ equals ancestor or descends from it.
func (r *Registry) IsSubtype(typ, ancestor nodeid.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for seen := 0; !typ.IsNull() && seen < 64; seen++ {
		if typ == ancestor {
			return true
		}
		typ = r.supertypes[typ]
	}
	return false
}

// VertexTypeOf returns the resolved vertex type with the given object type id.
func (r *Registry) VertexTypeOf(id nodeid.ID) (*VertexType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vt, ok := r.vertexTypes[id]
	return vt, ok
}
