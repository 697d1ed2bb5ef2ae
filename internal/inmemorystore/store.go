package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/inmemorytopology"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/topologystore"
)

// Store is an in-memory implementation of nodestore.Store.
//
// Records live in a map guarded by mu. References live in a separate
// topologystore.Store with its own lock. Every method that touches both takes
// mu first, which keeps reference endpoints live for as long as the
// reference exists.
type Store struct {
	mu      sync.RWMutex
	records map[nodeid.ID]node.Node
	order   []nodeid.ID
	refs    topologystore.Store
}

// New creates a new, empty store backed by an in-memory reference table.
func New() nodestore.Store {
	return NewWithTopology(inmemorytopology.New())
}

// NewWithTopology creates a store over the given reference table.
func NewWithTopology(refs topologystore.Store) nodestore.Store {
	return &Store{
		records: make(map[nodeid.ID]node.Node),
		refs:    refs,
	}
}

// Insert adds a record.
func (s *Store) Insert(ctx context.Context, n node.Node) error {
	id := n.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return fmt.Errorf("%w: %s", nodestore.ErrDuplicateIdentifier, id)
	}
	s.records[id] = n
	s.order = append(s.order, id)
	ctxlog.FromContext(ctx).Debug("Node inserted.", "node", id.String(), "class", n.Class().String())
	return nil
}

// Get returns the live record for id.
func (s *Store) Get(ctx context.Context, id nodeid.ID) (node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", nodestore.ErrNotFound, id)
	}
	return n, nil
}

// Remove detaches the record and all references that touch it.
func (s *Store) Remove(ctx context.Context, id nodeid.ID) (node.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", nodestore.ErrNotFound, id)
	}
	delete(s.records, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	detached := s.refs.Detach(id)
	ctxlog.FromContext(ctx).Debug("Node removed.", "node", id.String(), "references", len(detached))
	return n, nil
}

// AddReference stores ref if both endpoints are live.
func (s *Store) AddReference(ctx context.Context, ref node.Reference) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[ref.Source]; !ok {
		return fmt.Errorf("%w: reference source %s", nodestore.ErrNotFound, ref.Source)
	}
	if _, ok := s.records[ref.Target]; !ok {
		return fmt.Errorf("%w: reference target %s", nodestore.ErrNotFound, ref.Target)
	}
	s.refs.Add(ref)
	return nil
}

// RemoveReference deletes ref. Absent references are ignored.
func (s *Store) RemoveReference(ctx context.Context, ref node.Reference) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.refs.Remove(ref)
	return nil
}

// HasReference reports whether ref is stored.
func (s *Store) HasReference(ctx context.Context, ref node.Reference) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refs.Has(ref)
}

// References lists the references of id.
func (s *Store) References(ctx context.Context, id nodeid.ID, dir node.Direction, refType nodeid.ID) ([]node.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[id]; !ok {
		return nil, fmt.Errorf("%w: %s", nodestore.ErrNotFound, id)
	}

	switch dir {
	case node.Forward:
		return s.refs.Forward(id, refType), nil
	case node.Inverse:
		return s.refs.Inverse(id, refType), nil
	default:
		return append(s.refs.Forward(id, refType), s.refs.Inverse(id, refType)...), nil
	}
}

// Len returns the number of live records.
func (s *Store) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns every live record in insertion order.
func (s *Store) All(ctx context.Context) []node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]node.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}
