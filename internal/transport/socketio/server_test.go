package socketio

import (
	"context"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/executor"
	"github.com/specialistvlad/graphua/internal/localsession"
	"github.com/specialistvlad/graphua/internal/metrics"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/testutil"
	"github.com/specialistvlad/graphua/internal/transport/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func vid(raw string) nodeid.ID {
	return nodeid.NewString(registry.GraphNamespace, raw)
}

func newSession(t *testing.T) (*testutil.Engine, session.Session) {
	t.Helper()
	ctx := context.Background()
	eng := testutil.NewEngine(t)
	_, err := eng.Graph.AddVertex(ctx, "pump", map[string]any{"speed": 100})
	require.NoError(t, err)
	sess, err := localsession.NewFactory(eng.Graph, eng.Bus).NewSession(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close(context.Background()) })
	return eng, sess
}

func TestDispatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, sess := newSession(t)
	noNotify := func(wire.Notification) {}

	t.Run("browse", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{ID: "1", Op: wire.OpBrowse, Browse: wire.FromBrowseRequest(session.BrowseRequest{
			NodeID:        vid("pump"),
			Direction:     node.Forward,
			ReferenceType: registry.HasProperty,
		})}, noNotify)
		require.Equal(t, status.Good, resp.Status)
		assert.Equal(t, "1", resp.ID)
		require.NotNil(t, resp.Browse)
		var names []string
		for _, r := range resp.Browse.References {
			names = append(names, r.BrowseName.Name)
		}
		assert.Contains(t, names, "speed")
	})

	t.Run("read", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{Op: wire.OpRead, Read: []wire.ReadValueID{
			{NodeID: vid("pump.speed"), Attribute: node.AttributeValue},
		}}, noNotify)
		require.Len(t, resp.Values, 1)
		assert.True(t, resp.Values[0].Value.Value.Equals(cty.NumberIntVal(100)).True())
	})

	t.Run("write", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{Op: wire.OpWrite, Write: []wire.WriteValue{
			{NodeID: vid("pump.speed"), Attribute: node.AttributeValue, Value: wire.NewValue(cty.NumberIntVal(5))},
			{NodeID: vid("pump"), Attribute: node.AttributeBrowseName, Value: wire.NewValue(cty.StringVal("x"))},
		}}, noNotify)
		assert.Equal(t, []status.Code{status.Good, status.BadNotWritable}, resp.Codes)
	})

	t.Run("call", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{Op: wire.OpCall, Call: []wire.CallRequest{
			{MethodID: vid("pump:property"), Arguments: []wire.Value{wire.NewValue(cty.StringVal("mode")), wire.NewValue(cty.StringVal("auto"))}},
		}}, noNotify)
		require.Len(t, resp.Calls, 1)
		assert.Equal(t, status.Good, resp.Calls[0].Status)
	})

	t.Run("empty requests", func(t *testing.T) {
		for _, op := range []wire.Op{wire.OpBrowse, wire.OpRead, wire.OpWrite, wire.OpCall} {
			resp := Dispatch(ctx, sess, wire.Request{Op: op}, noNotify)
			assert.Equal(t, status.BadNothingToDo, resp.Status, op)
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{Op: "explode"}, noNotify)
		assert.Equal(t, status.BadNotSupported, resp.Status)
		assert.Contains(t, resp.Error, "explode")
	})

	t.Run("unsubscribe unknown", func(t *testing.T) {
		resp := Dispatch(ctx, sess, wire.Request{Op: wire.OpUnsubscribe, Subscription: "nope"}, noNotify)
		assert.Equal(t, status.BadSubscriptionIDInvalid, resp.Status)
	})
}

func TestDispatch_Subscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, sess := newSession(t)

	got := make(chan wire.Notification, 16)
	resp := Dispatch(ctx, sess, wire.Request{Op: wire.OpSubscribe, Subscribe: &wire.SubscribeRequest{
		Kinds: []eventbus.Kind{eventbus.EventPosted},
	}}, func(n wire.Notification) { got <- n })
	require.Equal(t, status.Good, resp.Status)
	require.NotEmpty(t, resp.Subscription)

	// Act
	require.NoError(t, eng.Graph.PostEvent(ctx, vid("pump"), "overheat", map[string]cty.Value{"temp": cty.NumberIntVal(90)}))

	// Assert
	select {
	case n := <-got:
		assert.Equal(t, resp.Subscription, n.Subscription)
		assert.Equal(t, eventbus.EventPosted, n.Event.Kind)
		assert.Equal(t, "overheat", n.Event.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
}

// recorder collects emitted messages in place of a socket.
type recorder struct {
	mu       sync.Mutex
	messages map[string][]any
	arrived  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{messages: make(map[string][]any), arrived: make(chan struct{}, 64)}
}

func (r *recorder) emit(event string, payload any) {
	r.mu.Lock()
	r.messages[event] = append(r.messages[event], payload)
	r.mu.Unlock()
	r.arrived <- struct{}{}
}

func (r *recorder) responses(t *testing.T) []wire.Response {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]wire.Response, 0, len(r.messages[wire.EventResponse]))
	for _, p := range r.messages[wire.EventResponse] {
		var resp wire.Response
		require.NoError(t, wire.Decode(p, &resp))
		out = append(out, resp)
	}
	return out
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.arrived:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d messages emitted", i, n)
		}
	}
}

func newTestServer(t *testing.T, pool executor.Dispatcher) (*Server, *testutil.Engine, *metrics.Metrics) {
	t.Helper()
	ctx, _ := testutil.LoggedContext(t)
	eng := testutil.NewEngine(t)
	_, err := eng.Graph.AddVertex(ctx, "pump", map[string]any{"speed": 100})
	require.NoError(t, err)
	m := metrics.New(nil, nil, nil)
	s := &Server{
		ctx:      ctx,
		sessions: localsession.NewFactory(eng.Graph, eng.Bus),
		pool:     pool,
		metrics:  m,
		conns:    make(map[string]*conn),
	}
	return s, eng, m
}

func TestServer_RequestLifecycle(t *testing.T) {
	t.Parallel()
	pool := executor.New(2, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	s, _, m := newTestServer(t, pool)
	rec := newRecorder()

	c, err := s.open("sock-1", rec.emit)
	require.NoError(t, err)
	require.Equal(t, 1, s.Connections())

	// Act
	s.handleRequest(c, map[string]any{
		"id": "r1",
		"op": "read",
		"read": []any{
			map[string]any{"node_id": vid("pump.speed").String(), "attribute": float64(node.AttributeValue)},
		},
	})
	s.handleRequest(c, "{broken")
	rec.wait(t, 2)

	// Assert
	byID := map[string]wire.Response{}
	for _, r := range rec.responses(t) {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "r1")
	require.Len(t, byID["r1"].Values, 1)
	assert.True(t, byID["r1"].Values[0].Value.Value.Equals(cty.NumberIntVal(100)).True())
	assert.Equal(t, status.BadDecodingError, byID[""].Status)

	s.closeConn(c)
	s.closeConn(c)
	assert.Zero(t, s.Connections())
	assert.Equal(t, status.BadSessionClosed, c.sess.Unsubscribe(context.Background(), "x"))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Requests.WithLabelValues("read", "Good")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Requests.WithLabelValues("invalid", "BadDecodingError")))
	assert.Zero(t, promtest.ToFloat64(m.Sessions))
}

// refusing is a dispatcher whose queue is always full.
type refusing struct{ err error }

func (r refusing) Submit(context.Context, string, executor.Task) error { return r.err }

func TestServer_QueueFullAndShutdown(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		err  error
		want status.Code
	}{
		{"queue full", executor.ErrQueueFull, status.BadTooManyOperations},
		{"stopped", executor.ErrStopped, status.BadShutdown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestServer(t, refusing{err: tc.err})
			rec := newRecorder()
			c, err := s.open("sock", rec.emit)
			require.NoError(t, err)

			s.handleRequest(c, map[string]any{"id": "r", "op": "read"})
			rec.wait(t, 1)

			resps := rec.responses(t)
			require.Len(t, resps, 1)
			assert.Equal(t, "r", resps[0].ID)
			assert.Equal(t, tc.want, resps[0].Status)
		})
	}
}

func TestServer_ClosingConnectionsCancelsContexts(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t, refusing{})
	rec := newRecorder()
	c1, err := s.open("a", rec.emit)
	require.NoError(t, err)
	c2, err := s.open("b", rec.emit)
	require.NoError(t, err)

	s.mu.Lock()
	n := len(s.conns)
	s.mu.Unlock()
	require.Equal(t, 2, n)

	for _, c := range []*conn{c1, c2} {
		s.closeConn(c)
	}

	assert.Zero(t, s.Connections())
	assert.Error(t, c1.ctx.Err())
	assert.Error(t, c2.ctx.Err())
}
