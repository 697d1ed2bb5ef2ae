package registry

import (
	"strings"

	"github.com/specialistvlad/graphua/internal/nodeid"
)

// GraphNamespace holds the graph-specific standard nodes.
const GraphNamespace uint16 = 1

// Standard folders.
var (
	RootFolder           = nodeid.NewNumeric(0, 84)
	ObjectsFolder        = nodeid.NewNumeric(0, 85)
	TypesFolder          = nodeid.NewNumeric(0, 86)
	ObjectTypesFolder    = nodeid.NewNumeric(0, 88)
	ReferenceTypesFolder = nodeid.NewNumeric(0, 91)

	GraphFolder    = nodeid.NewString(GraphNamespace, "Graph")
	VerticesFolder = nodeid.NewString(GraphNamespace, "Graph/Vertices")
	EdgesFolder    = nodeid.NewString(GraphNamespace, "Graph/Edges")
)

// Standard reference types.
var (
	References                = nodeid.NewNumeric(0, 31)
	NonHierarchicalReferences = nodeid.NewNumeric(0, 32)
	HierarchicalReferences    = nodeid.NewNumeric(0, 33)
	HasChild                  = nodeid.NewNumeric(0, 34)
	Organizes                 = nodeid.NewNumeric(0, 35)
	HasTypeDefinition         = nodeid.NewNumeric(0, 40)
	Aggregates                = nodeid.NewNumeric(0, 44)
	HasSubtype                = nodeid.NewNumeric(0, 45)
	HasProperty               = nodeid.NewNumeric(0, 46)
	HasComponent              = nodeid.NewNumeric(0, 47)

	HasSourceNode   = nodeid.NewString(GraphNamespace, "HasSourceNode")
	HasTargetNode   = nodeid.NewString(GraphNamespace, "HasTargetNode")
	HasOutgoingEdge = nodeid.NewString(GraphNamespace, "HasOutgoingEdge")
	HasIncomingEdge = nodeid.NewString(GraphNamespace, "HasIncomingEdge")
)

// Standard object types.
var (
	BaseObjectType = nodeid.NewNumeric(0, 58)
	FolderType     = nodeid.NewNumeric(0, 61)
	BaseVertexType = nodeid.NewString(GraphNamespace, "BaseVertexType")
	BaseEdgeType   = nodeid.NewString(GraphNamespace, "BaseEdgeType")
)

// Identifier prefixes of the nodes created on demand in the graph namespace:
// reference types per edge label, object types per schema type, and the
// directory folders under Graph/Vertices and Graph/Edges.
const (
	ReferenceTypePrefix = "ReferenceTypes/"
	ObjectTypePrefix    = "ObjectTypes/"
	FolderPrefix        = "Graph/"
)

var reservedPrefixes = []string{ReferenceTypePrefix, ObjectTypePrefix, FolderPrefix}

// IsReserved reports whether id lies in the identifier space of nodes the
// registry or the directory builder create on demand. Element ids must not.
func (r *Registry) IsReserved(id nodeid.ID) bool {
	if id.Kind != nodeid.String || id.Namespace != r.namespace {
		return false
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(id.Name, prefix) {
			return true
		}
	}
	return false
}
