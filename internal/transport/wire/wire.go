// Package wire defines the JSON messages exchanged over the socket.io
// transport.
//
// A client emits EventRequest with a Request and receives EventResponse with
// the Response carrying the same ID. Subscriptions push EventNotification
// messages. Values travel as ctyjson "simple" values, which keep their cty
// type next to the JSON value.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Socket.io event names.
const (
	EventRequest      = "request"
	EventResponse     = "response"
	EventNotification = "notification"
)

// Op names a session operation.
type Op string

const (
	OpBrowse      Op = "browse"
	OpRead        Op = "read"
	OpWrite       Op = "write"
	OpCall        Op = "call"
	OpSubscribe   Op = "subscribe"
	OpUnsubscribe Op = "unsubscribe"
)

// Value is a cty value on the wire.
type Value = ctyjson.SimpleJSONValue

// NewValue wraps v. The zero cty.Value travels as a dynamic null.
func NewValue(v cty.Value) Value {
	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	return Value{Value: v}
}

type Request struct {
	ID           string            `json:"id"`
	Op           Op                `json:"op"`
	Browse       *BrowseRequest    `json:"browse,omitempty"`
	Read         []ReadValueID     `json:"read,omitempty"`
	Write        []WriteValue      `json:"write,omitempty"`
	Call         []CallRequest     `json:"call,omitempty"`
	Subscribe    *SubscribeRequest `json:"subscribe,omitempty"`
	Subscription string            `json:"subscription,omitempty"`
}

// Response answers the Request with the same ID. Status reports failures of
// the request as a whole; per-item results carry their own codes.
type Response struct {
	ID           string        `json:"id"`
	Status       status.Code   `json:"status"`
	Error        string        `json:"error,omitempty"`
	Browse       *BrowseResult `json:"browse,omitempty"`
	Values       []DataValue   `json:"values,omitempty"`
	Codes        []status.Code `json:"codes,omitempty"`
	Calls        []CallResult  `json:"calls,omitempty"`
	Subscription string        `json:"subscription,omitempty"`
}

type Notification struct {
	Subscription string `json:"subscription"`
	Event        Event  `json:"event"`
}

type BrowseRequest struct {
	NodeID          nodeid.ID      `json:"node_id"`
	Direction       node.Direction `json:"direction"`
	ReferenceType   nodeid.ID      `json:"reference_type"`
	IncludeSubtypes bool           `json:"include_subtypes,omitempty"`
	NodeClassMask   uint32         `json:"node_class_mask,omitempty"`
}

type ReferenceDescription struct {
	ReferenceType  nodeid.ID          `json:"reference_type"`
	IsForward      bool               `json:"is_forward"`
	NodeID         nodeid.ID          `json:"node_id"`
	BrowseName     node.QualifiedName `json:"browse_name"`
	DisplayName    string             `json:"display_name"`
	NodeClass      node.Class         `json:"node_class"`
	TypeDefinition nodeid.ID          `json:"type_definition"`
}

type BrowseResult struct {
	Status     status.Code            `json:"status"`
	References []ReferenceDescription `json:"references"`
}

type ReadValueID struct {
	NodeID    nodeid.ID        `json:"node_id"`
	Attribute node.AttributeID `json:"attribute"`
}

type DataValue struct {
	Value           Value       `json:"value"`
	Status          status.Code `json:"status"`
	SourceTimestamp time.Time   `json:"source_timestamp"`
	ServerTimestamp time.Time   `json:"server_timestamp"`
}

type WriteValue struct {
	NodeID    nodeid.ID        `json:"node_id"`
	Attribute node.AttributeID `json:"attribute"`
	Value     Value            `json:"value"`
}

type CallRequest struct {
	MethodID  nodeid.ID `json:"method_id"`
	Arguments []Value   `json:"arguments,omitempty"`
}

type CallResult struct {
	Status  status.Code `json:"status"`
	Error   string      `json:"error,omitempty"`
	Outputs []Value     `json:"outputs,omitempty"`
}

type SubscribeRequest struct {
	Nodes []nodeid.ID     `json:"nodes,omitempty"`
	Kinds []eventbus.Kind `json:"kinds,omitempty"`
}

type Event struct {
	ID        string           `json:"id"`
	Kind      eventbus.Kind    `json:"kind"`
	Node      nodeid.ID        `json:"node"`
	Owner     nodeid.ID        `json:"owner"`
	Attribute node.AttributeID `json:"attribute,omitempty"`
	Value     *DataValue       `json:"value,omitempty"`
	Name      string           `json:"name,omitempty"`
	Data      map[string]Value `json:"data,omitempty"`
	Time      time.Time        `json:"time"`
}

// Encode turns a message into the generic JSON form socket.io emits.
func Encode(msg any) (any, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return out, nil
}

// Decode fills msg from an argument received from socket.io.
func Decode(data any, msg any) error {
	var b []byte
	switch d := data.(type) {
	case []byte:
		b = d
	case string:
		b = []byte(d)
	default:
		var err error
		if b, err = json.Marshal(d); err != nil {
			return fmt.Errorf("decoding message: %w", err)
		}
	}
	if err := json.Unmarshal(b, msg); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return nil
}
