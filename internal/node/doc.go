// Package node defines the in-memory records that make up the address space.
//
// Every addressable thing (a graph vertex, a graph edge, a property value, a
// folder, a method, a type definition) is a Record with a protocol node class
// and a set of attributes. The typed elements embed *Record and add the state
// that only their class carries. References between records are not stored
// here; they live in the reference table owned by the node store, so a record
// never holds a pointer to another record.
//
// # Mutation
//
// Attributes are mutated only through the setters on Record and the typed
// elements. Each setter validates its input, bumps the record's version
// counter and then notifies the record's observers. Observers are always
// invoked after the record lock has been released; a panicking observer is
// recovered and logged so it can never corrupt the record or block a writer.
package node
