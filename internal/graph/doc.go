// Package graph maps a mutable property graph onto the node address space.
//
// # Why Graph Package Exists
//
// Protocol clients only understand nodes, attributes and typed references.
// Graph callers only understand vertices, edges and properties. The Manager
// keeps both views consistent: every graph mutation is expressed as a set of
// node records and references in the store, and every protocol write that
// touches a graph element re-enters the Manager so the graph view follows.
//
// # Architecture
//
//	┌──────────────────────────────────────┐
//	│            graph.Manager             │
//	│ (vertices, edges, properties, calls) │
//	└──────┬────────────┬───────────┬──────┘
//	       │            │           │
//	       ▼            ▼           ▼
//	┌──────────┐ ┌────────────┐ ┌──────────┐
//	│ registry │ │ directory  │ │ eventbus │
//	│  (types) │ │ (folders)  │ │ (changes)│
//	└────┬─────┘ └─────┬──────┘ └──────────┘
//	     │             │
//	     ▼             ▼
//	┌──────────────────────────┐
//	│      nodestore.Store     │
//	│ (records + reference set)│
//	└──────────────────────────┘
//
// Records never point at each other. A vertex finds its properties, edges
// and neighbours by following references through the store.
//
// # Layout of a Vertex
//
//	Objects/Graph/Vertices/<directory...>
//	  └─ Organizes ─> vertex (Object)
//	        ├─ HasTypeDefinition ─> object type
//	        ├─ HasProperty ─> <id>.label, <id>.type, <id>.<key> (Variables)
//	        ├─ HasComponent ─> <id>:delete, <id>:property (Methods)
//	        ├─ HasOutgoingEdge ─> edge
//	        ├─ HasIncomingEdge ─> edge
//	        └─ <edge type> ─> neighbour vertex
//
// An edge is an Object of its own with HasSourceNode and HasTargetNode
// references, and the same property and method layout.
//
// # Well-Known Properties
//
// Writing the property "label" renames the element's label, "name" renames
// both its browse name and display name, and "description" replaces its
// description.
package graph
