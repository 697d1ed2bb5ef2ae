// Package topologystore defines the interface of the reference table: the
// set of typed, directed links between nodes.
//
// # Why Topology Store Exists
//
// References are kept apart from records so that a record never holds a
// pointer to another record. Each stored triple (source, type, target)
// exists once and answers both the forward lookup from its source and the
// inverse lookup from its target.
//
// The table knows nothing about record liveness. The node store, which wraps
// it, is responsible for only linking live records and for detaching a
// record's references when the record is removed.
package topologystore

import (
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
)

// Store is the reference table.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// Add stores ref in its forward form and reports whether it was new.
	Add(ref node.Reference) bool

	// Remove deletes ref and reports whether it was present.
	Remove(ref node.Reference) bool

	// Has reports whether ref is stored.
	Has(ref node.Reference) bool

	// Forward returns references whose source is id, seen from id.
	// A non-null refType filters by exact type.
	Forward(id nodeid.ID, refType nodeid.ID) []node.Reference

	// Inverse returns references whose target is id, seen from id: Source is
	// id, Target is the stored source and IsForward is false.
	Inverse(id nodeid.ID, refType nodeid.ID) []node.Reference

	// Detach removes every reference touching id and returns them in
	// forward form.
	Detach(id nodeid.ID) []node.Reference

	// Len returns the number of stored references.
	Len() int
}
