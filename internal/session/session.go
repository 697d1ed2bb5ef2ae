// Package session defines the protocol-facing view of the address space. A
// Session is what a connected client talks to: it browses references, reads
// and writes attributes, calls methods and subscribes to changes. Failures
// are reported as status codes, never as Go errors, so transports can pass
// them to clients unchanged.
package session

import (
	"context"

	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/zclconf/go-cty/cty"
)

// SessionFactory creates sessions. Transports create one session per
// connected client.
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is one client's view of the address space.
type Session interface {
	ID() string
	Browse(ctx context.Context, req BrowseRequest) BrowseResult
	Read(ctx context.Context, nodes []ReadValueID) []node.DataValue
	Write(ctx context.Context, values []WriteValue) []status.Code
	Call(ctx context.Context, calls []CallMethodRequest) []CallMethodResult
	// Subscribe registers handler for matching change events and returns
	// the subscription id.
	Subscribe(ctx context.Context, req SubscriptionRequest, handler NotificationHandler) (string, status.Code)
	Unsubscribe(ctx context.Context, subscriptionID string) status.Code
	// Close cancels all subscriptions. Every later call fails with
	// BadSessionClosed.
	Close(ctx context.Context) error
}

// BrowseRequest selects the references of one node.
type BrowseRequest struct {
	NodeID    nodeid.ID
	Direction node.Direction
	// ReferenceType restricts the result. Null means every type.
	ReferenceType   nodeid.ID
	IncludeSubtypes bool
	// NodeClassMask is a bitmask of node.Class values. Zero means every class.
	NodeClassMask uint32
}

// ReferenceDescription describes one reference and its target.
type ReferenceDescription struct {
	ReferenceType  nodeid.ID
	IsForward      bool
	NodeID         nodeid.ID
	BrowseName     node.QualifiedName
	DisplayName    string
	NodeClass      node.Class
	TypeDefinition nodeid.ID
}

type BrowseResult struct {
	Status     status.Code
	References []ReferenceDescription
}

// ReadValueID names one attribute of one node.
type ReadValueID struct {
	NodeID    nodeid.ID
	Attribute node.AttributeID
}

// WriteValue is one attribute write.
type WriteValue struct {
	NodeID    nodeid.ID
	Attribute node.AttributeID
	Value     cty.Value
}

type CallMethodRequest struct {
	MethodID  nodeid.ID
	Arguments []cty.Value
}

type CallMethodResult struct {
	Status  status.Code
	Error   string
	Outputs []cty.Value
}

// SubscriptionRequest filters the change stream. Empty lists match all.
type SubscriptionRequest struct {
	Nodes []nodeid.ID
	Kinds []eventbus.Kind
}

// NotificationHandler receives the events of a subscription. It runs on the
// event bus goroutine and must not block.
type NotificationHandler func(ctx context.Context, e eventbus.Event)
