// internal/nodeid/doc.go

/*
Package nodeid provides a structured, comparable representation of the
identifiers that address every node in the address space: vertices, edges,
properties, folders, methods and type definitions.

The canonical text form follows the protocol's NodeId notation:

	i=85          numeric identifier in namespace 0
	ns=1;s=pump   string identifier in namespace 1

This package enforces the identifier schema and centralizes all
formatting and parsing logic. IDs are plain values and can be used directly
as map keys.
*/
package nodeid
