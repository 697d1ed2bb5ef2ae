package node

import (
	"context"

	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// ChangeKind classifies a Change.
type ChangeKind uint8

const (
	// AttributeChanged is emitted by every attribute setter.
	AttributeChanged ChangeKind = iota
	// ValueChanged is emitted when a Variable's value is written.
	ValueChanged
	// PropertyAdded is emitted on an owner when a new property is attached.
	PropertyAdded
	// PropertyRemoved is emitted on an owner when a property is detached.
	PropertyRemoved
	// EventPosted is emitted when an application event is posted on a node.
	EventPosted
	// Removed is emitted once, when the node leaves the address space.
	Removed
)

var changeKindNames = [...]string{
	AttributeChanged: "attribute_changed",
	ValueChanged:     "value_changed",
	PropertyAdded:    "property_added",
	PropertyRemoved:  "property_removed",
	EventPosted:      "event_posted",
	Removed:          "removed",
}

func (k ChangeKind) String() string {
	if int(k) < len(changeKindNames) {
		return changeKindNames[k]
	}
	return "unknown"
}

// Change describes one mutation of a record.
type Change struct {
	Kind      ChangeKind
	Node      nodeid.ID
	Attribute AttributeID
	// Related is the property that was added or removed, when applicable.
	Related nodeid.ID
	Value   DataValue
	// Payload carries the fields of a posted event.
	Payload map[string]cty.Value
	Version uint64
}

// Observer receives changes of a record. It is called without any record lock
// held, on the goroutine that performed the mutation.
type Observer func(ctx context.Context, change Change)
