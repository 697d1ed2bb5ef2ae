package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
)

type stdReferenceType struct {
	id        nodeid.ID
	name      string
	inverse   string
	supertype nodeid.ID
	symmetric bool
	abstract  bool
}

// standardReferenceTypes is ordered so that every supertype precedes its
// subtypes.
var standardReferenceTypes = []stdReferenceType{
	{id: References, name: "References", symmetric: true, abstract: true},
	{id: HierarchicalReferences, name: "HierarchicalReferences", inverse: "InverseHierarchicalReferences", supertype: References, abstract: true},
	{id: NonHierarchicalReferences, name: "NonHierarchicalReferences", supertype: References, symmetric: true, abstract: true},
	{id: HasChild, name: "HasChild", inverse: "ChildOf", supertype: HierarchicalReferences, abstract: true},
	{id: Aggregates, name: "Aggregates", inverse: "AggregatedBy", supertype: HasChild, abstract: true},
	{id: Organizes, name: "Organizes", inverse: "OrganizedBy", supertype: HierarchicalReferences},
	{id: HasSubtype, name: "HasSubtype", inverse: "SubtypeOf", supertype: HasChild},
	{id: HasComponent, name: "HasComponent", inverse: "ComponentOf", supertype: Aggregates},
	{id: HasProperty, name: "HasProperty", inverse: "PropertyOf", supertype: Aggregates},
	{id: HasTypeDefinition, name: "HasTypeDefinition", inverse: "TypeDefinitionOf", supertype: NonHierarchicalReferences},
	{id: HasSourceNode, name: "HasSourceNode", inverse: "SourceNodeOf", supertype: NonHierarchicalReferences},
	{id: HasTargetNode, name: "HasTargetNode", inverse: "TargetNodeOf", supertype: NonHierarchicalReferences},
	{id: HasOutgoingEdge, name: "HasOutgoingEdge", inverse: "OutgoingEdgeOf", supertype: NonHierarchicalReferences},
	{id: HasIncomingEdge, name: "HasIncomingEdge", inverse: "IncomingEdgeOf", supertype: NonHierarchicalReferences},
}

type stdObjectType struct {
	id        nodeid.ID
	name      string
	supertype nodeid.ID
	abstract  bool
}

var standardObjectTypes = []stdObjectType{
	{id: BaseObjectType, name: "BaseObjectType"},
	{id: FolderType, name: "FolderType", supertype: BaseObjectType},
	{id: BaseVertexType, name: "BaseVertexType", supertype: BaseObjectType},
	{id: BaseEdgeType, name: "BaseEdgeType", supertype: BaseObjectType},
}

type stdFolder struct {
	id     nodeid.ID
	name   string
	ns     uint16
	parent nodeid.ID
}

var standardFolders = []stdFolder{
	{id: RootFolder, name: "Root"},
	{id: ObjectsFolder, name: "Objects", parent: RootFolder},
	{id: TypesFolder, name: "Types", parent: RootFolder},
	{id: ObjectTypesFolder, name: "ObjectTypes", parent: TypesFolder},
	{id: ReferenceTypesFolder, name: "ReferenceTypes", parent: TypesFolder},
	{id: GraphFolder, name: "Graph", ns: GraphNamespace, parent: ObjectsFolder},
	{id: VerticesFolder, name: "Vertices", ns: GraphNamespace, parent: GraphFolder},
	{id: EdgesFolder, name: "Edges", ns: GraphNamespace, parent: GraphFolder},
}

// Bootstrap inserts the standard address space and materializes every
// schema-declared type. Calling it again is a no-op.
func (r *Registry) Bootstrap(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bootstrapped {
		return nil
	}

	// Records first: references require both endpoints to be live.
	for _, f := range standardFolders {
		if err := r.store.Insert(ctx, node.NewFolder(f.id, node.NewQualifiedName(f.ns, f.name), f.name)); err != nil {
			return fmt.Errorf("bootstrap folder %s: %w", f.name, err)
		}
	}
	for _, t := range standardReferenceTypes {
		rt := node.NewReferenceType(t.id, node.NewQualifiedName(t.id.Namespace, t.name), t.inverse, t.supertype, t.symmetric, t.abstract)
		if err := r.store.Insert(ctx, rt); err != nil {
			return fmt.Errorf("bootstrap reference type %s: %w", t.name, err)
		}
		r.refTypes[t.name] = t.id
		r.supertypes[t.id] = t.supertype
	}
	for _, t := range standardObjectTypes {
		ot := node.NewObjectType(t.id, node.NewQualifiedName(t.id.Namespace, t.name), t.supertype, t.abstract)
		if err := r.store.Insert(ctx, ot); err != nil {
			return fmt.Errorf("bootstrap object type %s: %w", t.name, err)
		}
		r.objTypes[t.name] = t.id
		r.supertypes[t.id] = t.supertype
	}

	for _, f := range standardFolders {
		if err := r.link(ctx, f.id, HasTypeDefinition, FolderType); err != nil {
			return err
		}
		if !f.parent.IsNull() {
			if err := r.link(ctx, f.parent, Organizes, f.id); err != nil {
				return err
			}
		}
	}
	if err := r.link(ctx, ReferenceTypesFolder, Organizes, References); err != nil {
		return err
	}
	for _, t := range standardReferenceTypes {
		if !t.supertype.IsNull() {
			if err := r.link(ctx, t.supertype, HasSubtype, t.id); err != nil {
				return err
			}
		}
	}
	if err := r.link(ctx, ObjectTypesFolder, Organizes, BaseObjectType); err != nil {
		return err
	}
	for _, t := range standardObjectTypes {
		if !t.supertype.IsNull() {
			if err := r.link(ctx, t.supertype, HasSubtype, t.id); err != nil {
				return err
			}
		}
	}

	r.vertexTypes[BaseVertexType] = &VertexType{ID: BaseVertexType, Name: "BaseVertexType"}
	r.bootstrapped = true

	// Schema types; supertypes are resolved recursively.
	for _, name := range sortedKeys(r.DefinitionRegistry) {
		if _, err := r.ensureSchemaTypeLocked(ctx, name, nil); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(r.EdgeDefinitionRegistry) {
		if _, err := r.resolveReferenceTypeLocked(ctx, name); err != nil {
			return err
		}
	}

	logger.Debug("Address space bootstrapped.",
		"reference_types", len(r.refTypes), "object_types", len(r.objTypes), "nodes", r.store.Len(ctx))
	return nil
}

func (r *Registry) link(ctx context.Context, source, refType, target nodeid.ID) error {
	if err := r.store.AddReference(ctx, node.NewReference(source, refType, target)); err != nil {
		return fmt.Errorf("link %s -> %s: %w", source, target, err)
	}
	return nil
}
