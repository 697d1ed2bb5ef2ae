package inmemorytopology

import (
	"sync"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	set   map[node.Reference]struct{}
	bySrc map[nodeid.ID][]node.Reference // Key: source, Value: refs in insertion order
	byDst map[nodeid.ID][]node.Reference // Key: target, Value: refs in insertion order
}

// New creates a new, empty in-memory reference table.
func New() topologystore.Store {
	return &Store{
		set:   make(map[node.Reference]struct{}),
		bySrc: make(map[nodeid.ID][]node.Reference),
		byDst: make(map[nodeid.ID][]node.Reference),
	}
}

func canonical(ref node.Reference) node.Reference {
	ref.IsForward = true
	return ref
}

// Add stores the reference unless it is already present.
func (s *Store) Add(ref node.Reference) bool {
	ref = canonical(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[ref]; exists {
		return false
	}
	s.set[ref] = struct{}{}
	s.bySrc[ref.Source] = append(s.bySrc[ref.Source], ref)
	s.byDst[ref.Target] = append(s.byDst[ref.Target], ref)
	return true
}

// Remove deletes the reference if present.
func (s *Store) Remove(ref node.Reference) bool {
	ref = canonical(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ref)
}

func (s *Store) removeLocked(ref node.Reference) bool {
	if _, exists := s.set[ref]; !exists {
		return false
	}
	delete(s.set, ref)
	s.bySrc[ref.Source] = without(s.bySrc[ref.Source], ref)
	if len(s.bySrc[ref.Source]) == 0 {
		delete(s.bySrc, ref.Source)
	}
	s.byDst[ref.Target] = without(s.byDst[ref.Target], ref)
	if len(s.byDst[ref.Target]) == 0 {
		delete(s.byDst, ref.Target)
	}
	return true
}

// Has reports whether the reference is stored.
func (s *Store) Has(ref node.Reference) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.set[canonical(ref)]
	return exists
}

// Forward returns the references leaving id.
func (s *Store) Forward(id nodeid.ID, refType nodeid.ID) []node.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]node.Reference, 0, len(s.bySrc[id]))
	for _, ref := range s.bySrc[id] {
		if !refType.IsNull() && ref.Type != refType {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// Inverse returns the references arriving at id, flipped so that Source is id.
func (s *Store) Inverse(id nodeid.ID, refType nodeid.ID) []node.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]node.Reference, 0, len(s.byDst[id]))
	for _, ref := range s.byDst[id] {
		if !refType.IsNull() && ref.Type != refType {
			continue
		}
		out = append(out, node.Reference{Source: id, Type: ref.Type, Target: ref.Source, IsForward: false})
	}
	return out
}

// Detach removes every reference that has id as source or target.
func (s *Store) Detach(id nodeid.ID) []node.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make([]node.Reference, 0, len(s.bySrc[id])+len(s.byDst[id]))
	touched = append(touched, s.bySrc[id]...)
	touched = append(touched, s.byDst[id]...)

	removed := make([]node.Reference, 0, len(touched))
	for _, ref := range touched {
		// A self reference is listed twice.
		if s.removeLocked(ref) {
			removed = append(removed, ref)
		}
	}
	return removed
}

// Len returns the number of stored references.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set)
}

func without(refs []node.Reference, ref node.Reference) []node.Reference {
	for i, r := range refs {
		if r == ref {
			out := make([]node.Reference, 0, len(refs)-1)
			out = append(out, refs[:i]...)
			return append(out, refs[i+1:]...)
		}
	}
	return refs
}
