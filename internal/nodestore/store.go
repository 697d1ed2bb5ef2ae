// Package nodestore defines the interface of the arena that holds every
// record of the address space.
//
// # Why Node Store Exists
//
// All components address nodes by identifier only. The store is the single
// place that turns an identifier into a live record, and the single place
// that knows which references exist between records. Keeping both behind one
// interface lets removal detach a record and all of its references as one
// operation.
//
// # Ownership
//
// The store owns record lifetimes: a record is live from a successful Insert
// until Remove. References are owned by the reference table
// (topologystore.Store) that the store wraps; callers never touch the table
// directly.
//
// # Locking
//
// Implementations guard records with one lock and the reference table with
// another. The record lock is always acquired first.
package nodestore

import (
	"context"
	"errors"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
)

var (
	// ErrNotFound is returned when no live record has the identifier.
	ErrNotFound = errors.New("node not found")
	// ErrDuplicateIdentifier is returned when inserting an identifier that is
	// already live.
	ErrDuplicateIdentifier = errors.New("duplicate node identifier")
)

// Store is the arena of records plus the global reference set.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. Readers must never observe
// a reference whose endpoints are not both live.
type Store interface {
	// Insert adds a record. It returns ErrDuplicateIdentifier if the id is
	// already live.
	Insert(ctx context.Context, n node.Node) error

	// Get returns the live record for id or ErrNotFound.
	Get(ctx context.Context, id nodeid.ID) (node.Node, error)

	// Remove detaches the record and every reference where it is the source
	// or the target. It returns the removed record or ErrNotFound.
	Remove(ctx context.Context, id nodeid.ID) (node.Node, error)

	// AddReference stores a reference. Both endpoints must be live
	// (ErrNotFound otherwise). Adding an existing reference is a no-op.
	AddReference(ctx context.Context, ref node.Reference) error

	// RemoveReference deletes a reference. Removing an absent reference is a
	// no-op and returns nil.
	RemoveReference(ctx context.Context, ref node.Reference) error

	// HasReference reports whether the exact reference is stored.
	HasReference(ctx context.Context, ref node.Reference) bool

	// References lists the references of id in the requested direction, in
	// insertion order. A non-null refType keeps only references of exactly
	// that type. It returns ErrNotFound if id is not live.
	References(ctx context.Context, id nodeid.ID, dir node.Direction, refType nodeid.ID) ([]node.Reference, error)

	// Len returns the number of live records.
	Len(ctx context.Context) int

	// All returns a snapshot of every live record.
	All(ctx context.Context) []node.Node
}
