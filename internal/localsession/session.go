// Package localsession provides a concrete implementation of the
// session.Session and session.SessionFactory interfaces that serves requests
// in-process against a graph.Manager.
package localsession

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/graph"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
)

// SessionFactory implements session.SessionFactory for in-process sessions.
type SessionFactory struct {
	graph *graph.Manager
	bus   *eventbus.Bus
}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewFactory creates a factory whose sessions serve g. Subscriptions are
// unavailable when bus is nil.
func NewFactory(g *graph.Manager, bus *eventbus.Bus) *SessionFactory {
	return &SessionFactory{graph: g, bus: bus}
}

// NewSession creates a new local session.
func (f *SessionFactory) NewSession(ctx context.Context) (session.Session, error) {
	s := &Session{
		id:    uuid.New().String(),
		graph: f.graph,
		bus:   f.bus,
		subs:  make(map[string]struct{}),
	}
	ctxlog.FromContext(ctx).Debug("Session opened.", "session", s.id)
	return s, nil
}

// Session implements session.Session.
type Session struct {
	id    string
	graph *graph.Manager
	bus   *eventbus.Bus

	mu     sync.Mutex
	closed bool
	subs   map[string]struct{}
}

var _ session.Session = (*Session)(nil)

func (s *Session) ID() string { return s.id }

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Browse lists the references of a node, optionally restricted to a
// reference type and its subtypes.
func (s *Session) Browse(ctx context.Context, req session.BrowseRequest) session.BrowseResult {
	if s.isClosed() {
		return session.BrowseResult{Status: status.BadSessionClosed}
	}
	store := s.graph.Store()
	reg := s.graph.Registry()

	if !req.ReferenceType.IsNull() {
		n, err := store.Get(ctx, req.ReferenceType)
		if err != nil || n.Class() != node.ClassReferenceType {
			return session.BrowseResult{Status: status.BadReferenceTypeIDInvalid}
		}
	}

	refs, err := store.References(ctx, req.NodeID, req.Direction, nodeid.Null)
	if err != nil {
		return session.BrowseResult{Status: graph.StatusOf(err)}
	}

	out := make([]session.ReferenceDescription, 0, len(refs))
	for _, ref := range refs {
		if !req.ReferenceType.IsNull() {
			if req.IncludeSubtypes {
				if !reg.IsSubtype(ref.Type, req.ReferenceType) {
					continue
				}
			} else if ref.Type != req.ReferenceType {
				continue
			}
		}
		target, err := store.Get(ctx, ref.Target)
		if err != nil {
			continue
		}
		if req.NodeClassMask != 0 && req.NodeClassMask&uint32(target.Class()) == 0 {
			continue
		}
		rec := target.Base()
		out = append(out, session.ReferenceDescription{
			ReferenceType:  ref.Type,
			IsForward:      ref.IsForward,
			NodeID:         ref.Target,
			BrowseName:     rec.BrowseName(),
			DisplayName:    rec.DisplayName(),
			NodeClass:      target.Class(),
			TypeDefinition: s.typeDefinition(ctx, target),
		})
	}

	ctxlog.FromContext(ctx).Debug("Browse served.", "session", s.id, "node", req.NodeID.String(), "references", len(out))
	return session.BrowseResult{Status: status.Good, References: out}
}

func (s *Session) typeDefinition(ctx context.Context, n node.Node) nodeid.ID {
	if v, ok := n.(*node.Vertex); ok {
		return v.TypeDefinition()
	}
	if n.Class() != node.ClassObject && n.Class() != node.ClassVariable {
		return nodeid.Null
	}
	refs, err := s.graph.Store().References(ctx, n.ID(), node.Forward, registry.HasTypeDefinition)
	if err != nil || len(refs) == 0 {
		return nodeid.Null
	}
	return refs[0].Target
}

// Read returns one data value per requested attribute. Failed reads carry a
// bad status and no value.
func (s *Session) Read(ctx context.Context, nodes []session.ReadValueID) []node.DataValue {
	out := make([]node.DataValue, len(nodes))
	now := time.Now().UTC()
	for i, rv := range nodes {
		out[i] = s.readOne(ctx, rv)
		out[i].ServerTimestamp = now
	}
	return out
}

func (s *Session) readOne(ctx context.Context, rv session.ReadValueID) node.DataValue {
	if s.isClosed() {
		return node.DataValue{Status: status.BadSessionClosed}
	}
	n, err := s.graph.Store().Get(ctx, rv.NodeID)
	if err != nil {
		return node.DataValue{Status: graph.StatusOf(err)}
	}
	dv, err := n.ReadAttribute(rv.Attribute)
	if err != nil {
		return node.DataValue{Status: graph.StatusOf(err)}
	}
	return dv
}

// Write applies each write and returns one status code per value.
func (s *Session) Write(ctx context.Context, values []session.WriteValue) []status.Code {
	out := make([]status.Code, len(values))
	for i, wv := range values {
		if s.isClosed() {
			out[i] = status.BadSessionClosed
			continue
		}
		err := s.graph.WriteAttribute(ctx, wv.NodeID, wv.Attribute, wv.Value)
		if err != nil {
			ctxlog.FromContext(ctx).Debug("Write rejected.", "session", s.id, "node", wv.NodeID.String(), "attribute", wv.Attribute.String(), "error", err)
		}
		out[i] = graph.StatusOf(err)
	}
	return out
}

// Call invokes each method in order.
func (s *Session) Call(ctx context.Context, calls []session.CallMethodRequest) []session.CallMethodResult {
	out := make([]session.CallMethodResult, len(calls))
	for i, c := range calls {
		if s.isClosed() {
			out[i] = session.CallMethodResult{Status: status.BadSessionClosed}
			continue
		}
		res := s.graph.Call(ctx, c.MethodID, c.Arguments)
		out[i] = session.CallMethodResult{Status: res.Status, Error: res.Error, Outputs: res.Output}
	}
	return out
}

// Subscribe registers handler on the event bus for this session.
func (s *Session) Subscribe(ctx context.Context, req session.SubscriptionRequest, handler session.NotificationHandler) (string, status.Code) {
	if handler == nil {
		return "", status.BadInvalidArgument
	}
	if s.bus == nil {
		return "", status.BadNotSupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", status.BadSessionClosed
	}
	id := s.bus.Subscribe(eventbus.Filter{Kinds: req.Kinds, Nodes: req.Nodes}, eventbus.Handler(handler))
	s.subs[id] = struct{}{}

	ctxlog.FromContext(ctx).Debug("Subscription created.", "session", s.id, "subscription", id)
	return id, status.Good
}

// Unsubscribe cancels a subscription owned by this session.
func (s *Session) Unsubscribe(ctx context.Context, subscriptionID string) status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return status.BadSessionClosed
	}
	if _, ok := s.subs[subscriptionID]; !ok {
		return status.BadSubscriptionIDInvalid
	}
	delete(s.subs, subscriptionID)
	s.bus.Unsubscribe(subscriptionID)
	return status.Good
}

// Close cancels every subscription of the session. Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id := range s.subs {
		if !s.bus.Unsubscribe(id) {
			ctxlog.FromContext(ctx).Warn("Subscription already gone.", "session", s.id, "subscription", id)
		}
	}
	n := len(s.subs)
	s.subs = nil
	ctxlog.FromContext(ctx).Debug("Session closed.", "session", s.id, "subscriptions", n)
	return nil
}

// String implements fmt.Stringer for logging.
func (s *Session) String() string {
	return fmt.Sprintf("session(%s)", s.id)
}
