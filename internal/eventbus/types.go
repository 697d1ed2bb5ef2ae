package eventbus

import (
	"time"

	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Kind classifies an Event.
type Kind string

const (
	VertexAdded      Kind = "vertex_added"
	VertexRemoved    Kind = "vertex_removed"
	EdgeAdded        Kind = "edge_added"
	EdgeRemoved      Kind = "edge_removed"
	PropertyChanged  Kind = "property_changed"
	PropertyRemoved  Kind = "property_removed"
	AttributeChanged Kind = "attribute_changed"
	EventPosted      Kind = "event_posted"
)

// Event is one notification of the change stream.
type Event struct {
	ID   string
	Kind Kind
	// Node is the subject of the event: the vertex, edge or property.
	Node nodeid.ID
	// Owner is the vertex or edge a property belongs to, when Node is a
	// property. It is also set for edge events to the edge's source vertex.
	Owner     nodeid.ID
	Attribute node.AttributeID
	Value     node.DataValue
	// Name is the application event name for EventPosted, or the property
	// key for property events.
	Name string
	Data map[string]cty.Value
	Time time.Time
}

// Filter selects events for a subscriber. Empty lists match everything.
type Filter struct {
	Kinds []Kind
	// Nodes matches an event whose Node or Owner is listed.
	Nodes []nodeid.ID
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e Event) bool {
	if len(f.Kinds) > 0 {
		matched := false
		for _, k := range f.Kinds {
			if k == e.Kind {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Nodes) > 0 {
		matched := false
		for _, id := range f.Nodes {
			if id == e.Node || (!e.Owner.IsNull() && id == e.Owner) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Stats are running totals since the bus was created.
type Stats struct {
	Published uint64
	Dropped   uint64
	Delivered uint64
	Queued    int
}
