package graph

import (
	"context"
	"errors"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrIdentifierAlreadyExists is returned when a vertex or edge is added
	// with an id that is already in use.
	ErrIdentifierAlreadyExists = errors.New("identifier already exists")
	// ErrNotWritable is returned when an attribute or property may not be
	// written.
	ErrNotWritable = node.ErrNotWritable
	// ErrInvalidArgument is returned for malformed call arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMethodInvalid is returned when a call targets something that is not
	// a known method.
	ErrMethodInvalid = errors.New("invalid method")
	// ErrArgumentsMissing is returned when a call supplies too few arguments.
	ErrArgumentsMissing = errors.New("arguments missing")
)

// Graph is the property graph view of the address space.
//
// All methods are safe for concurrent use. Structural mutations are not
// cancellable once they begin, so ctx only carries the logger.
type Graph interface {
	// AddVertex creates a vertex. The id is requestedID, or attrs["id"], or a
	// generated UUID.
	AddVertex(ctx context.Context, requestedID string, attrs map[string]any) (*node.Vertex, error)
	// AddEdge creates an edge from source to target.
	AddEdge(ctx context.Context, source, target nodeid.ID, label string, attrs map[string]any) (*node.Edge, error)
	// RemoveVertex removes a vertex with its properties and methods. Edges
	// that reference it are left in place.
	RemoveVertex(ctx context.Context, id nodeid.ID) error
	// RemoveEdge removes an edge with its properties and methods.
	RemoveEdge(ctx context.Context, id nodeid.ID) error

	// CreateOrUpdateProperty sets a property of a vertex or edge.
	CreateOrUpdateProperty(ctx context.Context, owner nodeid.ID, key string, value any) (*node.Property, error)
	// RemoveProperty detaches a property. Removing an absent key is a no-op.
	RemoveProperty(ctx context.Context, owner nodeid.ID, key string) error

	Vertex(ctx context.Context, id nodeid.ID) (*node.Vertex, error)
	Edge(ctx context.Context, id nodeid.ID) (*node.Edge, error)
	Property(ctx context.Context, owner nodeid.ID, key string) (*node.Property, error)
	Properties(ctx context.Context, owner nodeid.ID) ([]*node.Property, error)
	OutEdges(ctx context.Context, id nodeid.ID) ([]*node.Edge, error)
	InEdges(ctx context.Context, id nodeid.ID) ([]*node.Edge, error)
	// Adjacent returns the neighbours of a vertex reached over edges with the
	// given label. An empty label matches every edge.
	Adjacent(ctx context.Context, id nodeid.ID, dir node.Direction, label string) ([]*node.Vertex, error)
	Vertices(ctx context.Context) []*node.Vertex
	Edges(ctx context.Context) []*node.Edge

	// WriteAttribute writes an attribute of any node on behalf of a protocol
	// client.
	WriteAttribute(ctx context.Context, id nodeid.ID, attr node.AttributeID, value cty.Value) error
	// Call invokes a method node.
	Call(ctx context.Context, methodID nodeid.ID, args []cty.Value) CallResult
	// PostEvent raises an application event on a node.
	PostEvent(ctx context.Context, id nodeid.ID, name string, data map[string]cty.Value) error
}

// CallResult is the outcome of a method call. Error is empty and Status is
// Good on success.
type CallResult struct {
	Output []cty.Value
	Error  string
	Status status.Code
}
