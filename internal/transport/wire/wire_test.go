package wire

import (
	"testing"
	"time"

	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// roundTrip pushes msg through the generic form socket.io carries.
func roundTrip[T any](t *testing.T, msg T) T {
	t.Helper()
	generic, err := Encode(msg)
	require.NoError(t, err)
	var out T
	require.NoError(t, Decode(generic, &out))
	return out
}

func TestRequest_KeepsTypedValues(t *testing.T) {
	t.Parallel()
	id := nodeid.NewString(1, "pump.speed")
	req := Request{
		ID: "r1",
		Op: OpWrite,
		Write: FromWriteValues([]session.WriteValue{
			{NodeID: id, Attribute: node.AttributeValue, Value: cty.NumberIntVal(1200)},
			{NodeID: id, Attribute: node.AttributeValue, Value: cty.ListVal([]cty.Value{cty.StringVal("a")})},
			{NodeID: id, Attribute: node.AttributeValue},
		}),
	}

	got := SessionWriteValues(roundTrip(t, req).Write)

	require.Len(t, got, 3)
	assert.Equal(t, id, got[0].NodeID)
	assert.Equal(t, node.AttributeValue, got[0].Attribute)
	assert.True(t, got[0].Value.Equals(cty.NumberIntVal(1200)).True())
	assert.Equal(t, cty.List(cty.String), got[1].Value.Type())
	assert.True(t, got[2].Value.IsNull())
}

func TestBrowse_RoundTrip(t *testing.T) {
	t.Parallel()
	req := session.BrowseRequest{
		NodeID:          nodeid.NewNumeric(0, 85),
		Direction:       node.Inverse,
		IncludeSubtypes: true,
		NodeClassMask:   uint32(node.ClassObject),
	}
	res := session.BrowseResult{
		Status: status.Good,
		References: []session.ReferenceDescription{{
			ReferenceType: nodeid.NewNumeric(0, 35),
			IsForward:     true,
			NodeID:        nodeid.NewString(1, "Graph"),
			BrowseName:    node.NewQualifiedName(1, "Graph"),
			DisplayName:   "Graph",
			NodeClass:     node.ClassObject,
		}},
	}

	gotReq := roundTrip(t, Request{ID: "b", Op: OpBrowse, Browse: FromBrowseRequest(req)})
	gotRes := roundTrip(t, Response{ID: "b", Browse: FromBrowseResult(res)})

	assert.Equal(t, req, gotReq.Browse.Session())
	assert.Equal(t, res, gotRes.Browse.Session())
}

func TestEvent_RoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := eventbus.Event{
		ID:    "e1",
		Kind:  eventbus.PropertyChanged,
		Node:  nodeid.NewString(1, "a.temp"),
		Owner: nodeid.NewString(1, "a"),
		Name:  "temp",
		Value: node.DataValue{Value: cty.NumberIntVal(20), Status: status.Good, SourceTimestamp: now, ServerTimestamp: now},
		Data:  map[string]cty.Value{"reason": cty.StringVal("poll")},
		Time:  now,
	}

	got := roundTrip(t, Notification{Subscription: "s1", Event: FromEvent(e)})

	assert.Equal(t, "s1", got.Subscription)
	back := got.Event.Bus()
	assert.Equal(t, e.Kind, back.Kind)
	assert.Equal(t, e.Node, back.Node)
	assert.Equal(t, e.Owner, back.Owner)
	assert.True(t, back.Value.Value.Equals(cty.NumberIntVal(20)).True())
	assert.Equal(t, cty.StringVal("poll"), back.Data["reason"])
	assert.True(t, e.Time.Equal(back.Time))
}

func TestEvent_WithoutValue(t *testing.T) {
	t.Parallel()
	e := eventbus.Event{Kind: eventbus.VertexAdded, Node: nodeid.NewString(1, "a")}

	w := FromEvent(e)

	assert.Nil(t, w.Value)
	assert.Nil(t, w.Data)
	assert.Equal(t, cty.NilVal, w.Bus().Value.Value)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()
	var req Request

	assert.Error(t, Decode("not json", &req))
	assert.Error(t, Decode(map[string]any{"browse": map[string]any{"node_id": "bogus"}}, &req))
	require.NoError(t, Decode(`{"id":"x","op":"read"}`, &req))
	assert.Equal(t, OpRead, req.Op)
}
