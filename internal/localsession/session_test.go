package localsession

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/graph"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func vid(raw string) nodeid.ID {
	return nodeid.NewString(registry.GraphNamespace, raw)
}

// newTestSession builds an engine with two vertices a -feeds-> b.
func newTestSession(t *testing.T) (*testutil.Engine, session.Session) {
	t.Helper()
	ctx := context.Background()
	eng := testutil.NewEngine(t)

	_, err := eng.Graph.AddVertex(ctx, "a", map[string]any{"label": "A", "temp": 20})
	require.NoError(t, err)
	_, err = eng.Graph.AddVertex(ctx, "b", map[string]any{"label": "B"})
	require.NoError(t, err)
	_, err = eng.Graph.AddEdge(ctx, vid("a"), vid("b"), "feeds", map[string]any{"id": "a-b"})
	require.NoError(t, err)

	s, err := NewFactory(eng.Graph, eng.Bus).NewSession(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return eng, s
}

func browseTargets(res session.BrowseResult) []nodeid.ID {
	out := make([]nodeid.ID, 0, len(res.References))
	for _, r := range res.References {
		out = append(out, r.NodeID)
	}
	return out
}

func TestBrowse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, s := newTestSession(t)
	feeds, ok := eng.Registry.ReferenceType("feeds")
	require.True(t, ok)

	testCases := []struct {
		name       string
		req        session.BrowseRequest
		wantStatus status.Code
		contains   []nodeid.ID
		excludes   []nodeid.ID
	}{
		{
			name:       "hierarchical with subtypes",
			req:        session.BrowseRequest{NodeID: registry.ObjectsFolder, Direction: node.Forward, ReferenceType: registry.HierarchicalReferences, IncludeSubtypes: true},
			wantStatus: status.Good,
			contains:   []nodeid.ID{registry.GraphFolder},
		},
		{
			name:       "hierarchical without subtypes",
			req:        session.BrowseRequest{NodeID: registry.ObjectsFolder, Direction: node.Forward, ReferenceType: registry.HierarchicalReferences},
			wantStatus: status.Good,
			excludes:   []nodeid.ID{registry.GraphFolder},
		},
		{
			name:       "semantic reference",
			req:        session.BrowseRequest{NodeID: vid("a"), Direction: node.Forward, ReferenceType: feeds},
			wantStatus: status.Good,
			contains:   []nodeid.ID{vid("b")},
		},
		{
			name:       "semantic reference through its supertype",
			req:        session.BrowseRequest{NodeID: vid("a"), Direction: node.Forward, ReferenceType: registry.NonHierarchicalReferences, IncludeSubtypes: true},
			wantStatus: status.Good,
			contains:   []nodeid.ID{vid("b"), vid("a-b"), registry.BaseVertexType},
			excludes:   []nodeid.ID{vid("a.label")},
		},
		{
			name:       "inverse",
			req:        session.BrowseRequest{NodeID: vid("b"), Direction: node.Inverse, ReferenceType: feeds},
			wantStatus: status.Good,
			contains:   []nodeid.ID{vid("a")},
		},
		{
			name:       "methods only",
			req:        session.BrowseRequest{NodeID: vid("a"), Direction: node.Forward, NodeClassMask: uint32(node.ClassMethod)},
			wantStatus: status.Good,
			contains:   []nodeid.ID{graph.MethodID(vid("a"), graph.MethodDelete), graph.MethodID(vid("a"), graph.MethodProperty)},
			excludes:   []nodeid.ID{vid("a.label"), vid("b")},
		},
		{
			name:       "unknown node",
			req:        session.BrowseRequest{NodeID: vid("nope"), Direction: node.Forward},
			wantStatus: status.BadNodeIDUnknown,
		},
		{
			name:       "reference type that is not a reference type",
			req:        session.BrowseRequest{NodeID: vid("a"), Direction: node.Forward, ReferenceType: vid("b")},
			wantStatus: status.BadReferenceTypeIDInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.Browse(ctx, tc.req)
			require.Equal(t, tc.wantStatus, res.Status)
			got := browseTargets(res)
			for _, id := range tc.contains {
				assert.Contains(t, got, id)
			}
			for _, id := range tc.excludes {
				assert.NotContains(t, got, id)
			}
		})
	}
}

func TestBrowse_Description(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, s := newTestSession(t)

	res := s.Browse(ctx, session.BrowseRequest{NodeID: vid("a"), Direction: node.Forward, ReferenceType: registry.HasProperty})
	require.Equal(t, status.Good, res.Status)
	require.NotEmpty(t, res.References)

	first := res.References[0]
	assert.Equal(t, vid("a.label"), first.NodeID)
	assert.Equal(t, node.ClassVariable, first.NodeClass)
	assert.Equal(t, "label", first.BrowseName.Name)
	assert.True(t, first.IsForward)
	assert.Equal(t, registry.HasProperty, first.ReferenceType)

	res = s.Browse(ctx, session.BrowseRequest{NodeID: registry.VerticesFolder, Direction: node.Forward, ReferenceType: registry.Organizes})
	require.Len(t, res.References, 2)
	assert.Equal(t, registry.BaseVertexType, res.References[0].TypeDefinition)
}

func TestRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, s := newTestSession(t)

	values := s.Read(ctx, []session.ReadValueID{
		{NodeID: vid("a.temp"), Attribute: node.AttributeValue},
		{NodeID: vid("a"), Attribute: node.AttributeDisplayName},
		{NodeID: vid("a"), Attribute: node.AttributeNodeClass},
		{NodeID: vid("a"), Attribute: node.AttributeValue},
		{NodeID: vid("nope"), Attribute: node.AttributeValue},
		{NodeID: vid("a.temp"), Attribute: node.AttributeDataType},
	})
	require.Len(t, values, 6)

	assert.True(t, values[0].Value.Equals(cty.NumberIntVal(20)).True())
	assert.Equal(t, status.Good, values[0].Status)
	assert.Equal(t, cty.StringVal("a"), values[1].Value)
	assert.True(t, values[2].Value.Equals(cty.NumberUIntVal(uint64(node.ClassObject))).True())
	assert.Equal(t, status.BadAttributeIDInvalid, values[3].Status)
	assert.Equal(t, status.BadNodeIDUnknown, values[4].Status)
	assert.Equal(t, cty.StringVal("number"), values[5].Value)
	for _, v := range values {
		assert.False(t, v.ServerTimestamp.IsZero())
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, s := newTestSession(t)

	codes := s.Write(ctx, []session.WriteValue{
		{NodeID: vid("a.temp"), Attribute: node.AttributeValue, Value: cty.NumberIntVal(25)},
		{NodeID: vid("a"), Attribute: node.AttributeDisplayName, Value: cty.StringVal("Pump A")},
		{NodeID: vid("a"), Attribute: node.AttributeBrowseName, Value: cty.StringVal("x")},
		{NodeID: vid("a"), Attribute: node.AttributeDescription, Value: cty.True},
		{NodeID: vid("nope"), Attribute: node.AttributeValue, Value: cty.True},
	})

	assert.Equal(t, []status.Code{
		status.Good,
		status.Good,
		status.BadNotWritable,
		status.BadTypeMismatch,
		status.BadNodeIDUnknown,
	}, codes)

	p, err := eng.Graph.Property(ctx, vid("a"), "temp")
	require.NoError(t, err)
	assert.True(t, p.Value().Value.Equals(cty.NumberIntVal(25)).True())
	v, err := eng.Graph.Vertex(ctx, vid("a"))
	require.NoError(t, err)
	assert.Equal(t, "Pump A", v.DisplayName())
}

func TestCall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, s := newTestSession(t)

	results := s.Call(ctx, []session.CallMethodRequest{
		{MethodID: graph.MethodID(vid("a"), graph.MethodProperty), Arguments: []cty.Value{cty.StringVal("mode"), cty.StringVal("auto")}},
		{MethodID: graph.MethodID(vid("a"), graph.MethodProperty)},
		{MethodID: graph.MethodID(vid("a-b"), graph.MethodDelete)},
	})
	require.Len(t, results, 3)

	assert.Equal(t, status.Good, results[0].Status)
	assert.Equal(t, []cty.Value{cty.StringVal(vid("a.mode").String())}, results[0].Outputs)
	assert.Equal(t, status.BadArgumentsMissing, results[1].Status)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, status.Good, results[2].Status)

	assert.Empty(t, eng.Graph.Edges(ctx))
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, s := newTestSession(t)

	events := make(chan eventbus.Event, 16)
	subID, code := s.Subscribe(ctx, session.SubscriptionRequest{
		Nodes: []nodeid.ID{vid("a")},
		Kinds: []eventbus.Kind{eventbus.PropertyChanged},
	}, func(_ context.Context, e eventbus.Event) { events <- e })
	require.Equal(t, status.Good, code)
	require.NotEmpty(t, subID)

	// Only writes on a match the filter.
	_, err := eng.Graph.CreateOrUpdateProperty(ctx, vid("b"), "temp", 1)
	require.NoError(t, err)
	_, err = eng.Graph.CreateOrUpdateProperty(ctx, vid("a"), "temp", 30)
	require.NoError(t, err)

	// Setup events may still be queued, so skip until the update shows up.
	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case e := <-events:
			assert.Equal(t, vid("a"), e.Owner)
			if e.Name == "temp" && e.Value.Value.Equals(cty.NumberIntVal(30)).True() {
				done = true
			}
		case <-deadline:
			t.Fatal("no notification received")
		}
	}

	assert.Equal(t, status.Good, s.Unsubscribe(ctx, subID))
	assert.Equal(t, status.BadSubscriptionIDInvalid, s.Unsubscribe(ctx, subID))

	_, code = s.Subscribe(ctx, session.SubscriptionRequest{}, nil)
	assert.Equal(t, status.BadInvalidArgument, code)
}

func TestClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, s := newTestSession(t)

	_, code := s.Subscribe(ctx, session.SubscriptionRequest{}, func(context.Context, eventbus.Event) {})
	require.Equal(t, status.Good, code)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx), "closing twice is a no-op")

	assert.Equal(t, status.BadSessionClosed, s.Browse(ctx, session.BrowseRequest{NodeID: vid("a")}).Status)
	assert.Equal(t, status.BadSessionClosed, s.Read(ctx, []session.ReadValueID{{NodeID: vid("a"), Attribute: node.AttributeNodeID}})[0].Status)
	assert.Equal(t, []status.Code{status.BadSessionClosed}, s.Write(ctx, []session.WriteValue{{NodeID: vid("a.temp"), Attribute: node.AttributeValue, Value: cty.True}}))
	assert.Equal(t, status.BadSessionClosed, s.Call(ctx, []session.CallMethodRequest{{MethodID: vid("a:delete")}})[0].Status)
	_, code = s.Subscribe(ctx, session.SubscriptionRequest{}, func(context.Context, eventbus.Event) {})
	assert.Equal(t, status.BadSessionClosed, code)
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng := testutil.NewEngine(t)
	f := NewFactory(eng.Graph, eng.Bus)

	s1, err := f.NewSession(ctx)
	require.NoError(t, err)
	s2, err := f.NewSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID(), s2.ID())
}
