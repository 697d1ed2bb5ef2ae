package node

import "github.com/specialistvlad/graphua/internal/nodeid"

// Reference is a typed, directed link between two nodes. Stored references
// are always forward: Source points at Target. When a reference is returned
// from a lookup it is expressed from the point of view of the queried node:
// Source is that node, Target the other end, and IsForward tells whether the
// stored link points away from it.
type Reference struct {
	Source    nodeid.ID
	Type      nodeid.ID
	Target    nodeid.ID
	IsForward bool
}

// NewReference returns a stored-form reference.
func NewReference(source, refType, target nodeid.ID) Reference {
	return Reference{Source: source, Type: refType, Target: target, IsForward: true}
}

// Direction selects which references of a node a lookup returns.
type Direction uint8

const (
	// Forward returns references where the node is the source.
	Forward Direction = iota
	// Inverse returns references where the node is the target.
	Inverse
	// Both returns forward and inverse references.
	Both
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return "both"
	}
}

// ParseDirection converts "forward", "inverse" or "both". Anything else,
// including the empty string, is Forward.
func ParseDirection(s string) Direction {
	switch s {
	case "inverse":
		return Inverse
	case "both":
		return Both
	default:
		return Forward
	}
}
