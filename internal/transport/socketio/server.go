// Package socketio serves sessions to remote clients over socket.io.
//
// Every connected socket owns one session. Requests arrive as "request"
// events and run on the executor pool; each produces exactly one "response"
// event. Closing the socket closes the session and its subscriptions.
package socketio

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/executor"
	"github.com/specialistvlad/graphua/internal/metrics"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/transport/wire"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server adapts a session factory to socket.io.
type Server struct {
	ctx      context.Context
	io       *socket.Server
	sessions session.SessionFactory
	pool     executor.Dispatcher
	metrics  *metrics.Metrics

	mu    sync.Mutex
	conns map[string]*conn
}

// conn is the server side of one socket.
type conn struct {
	id     string
	sess   session.Session
	ctx    context.Context
	cancel context.CancelFunc

	emitMu sync.Mutex
	emit   func(event string, payload any)
}

func (c *conn) send(event string, msg any) {
	payload, err := wire.Encode(msg)
	if err != nil {
		ctxlog.FromContext(c.ctx).Error("Failed to encode message.", "event", event, "error", err)
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.emit(event, payload)
}

// NewServer creates a socket.io server. ctx carries the logger used for
// every connection. m may be nil.
func NewServer(ctx context.Context, sessions session.SessionFactory, pool executor.Dispatcher, m *metrics.Metrics) *Server {
	s := &Server{
		ctx:      ctx,
		io:       socket.NewServer(nil, nil),
		sessions: sessions,
		pool:     pool,
		metrics:  m,
		conns:    make(map[string]*conn),
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			ctxlog.FromContext(ctx).Error("Unexpected connection argument.")
			return
		}
		s.onConnection(client)
	})
	return s
}

// Handler returns the HTTP handler to mount under /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

func (s *Server) onConnection(client *socket.Socket) {
	c, err := s.open(string(client.Id()), func(event string, payload any) {
		client.Emit(event, payload)
	})
	if err != nil {
		client.Disconnect(true)
		return
	}
	client.On(wire.EventRequest, func(args ...any) {
		if len(args) == 0 {
			c.send(wire.EventResponse, wire.Response{Status: status.BadDecodingError, Error: "empty request"})
			return
		}
		s.handleRequest(c, args[0])
	})
	client.On("disconnect", func(reason ...any) {
		ctxlog.FromContext(c.ctx).Debug("Socket disconnected.", "reason", reason)
		s.closeConn(c)
	})
}

// open creates the session of a new socket.
func (s *Server) open(socketID string, emit func(string, any)) (*conn, error) {
	ctx, logger := ctxlog.With(s.ctx, "socket", socketID)
	sess, err := s.sessions.NewSession(ctx)
	if err != nil {
		logger.Error("Failed to create session.", "error", err)
		return nil, err
	}
	ctx, logger = ctxlog.With(ctx, "session", sess.ID())
	ctx, cancel := context.WithCancel(ctx)

	c := &conn{id: socketID, sess: sess, ctx: ctx, cancel: cancel, emit: emit}
	s.mu.Lock()
	s.conns[socketID] = c
	s.mu.Unlock()
	s.metrics.SessionOpened()

	logger.Info("Socket connected.")
	return c, nil
}

func (s *Server) handleRequest(c *conn, data any) {
	var req wire.Request
	if err := wire.Decode(data, &req); err != nil {
		ctxlog.FromContext(c.ctx).Warn("Rejecting malformed request.", "error", err)
		s.metrics.ObserveRequest("invalid", status.BadDecodingError.String())
		c.send(wire.EventResponse, wire.Response{Status: status.BadDecodingError, Error: err.Error()})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx, logger := ctxlog.With(c.ctx, "request", req.ID, "op", string(req.Op))
	err := s.pool.Submit(ctx, string(req.Op), func(ctx context.Context) {
		resp := Dispatch(ctx, c.sess, req, func(n wire.Notification) {
			c.send(wire.EventNotification, n)
		})
		logger.Debug("Request served.", "status", resp.Status.String())
		s.metrics.ObserveRequest(string(req.Op), resp.Status.String())
		c.send(wire.EventResponse, resp)
	})
	if err != nil {
		code := status.BadTooManyOperations
		if errors.Is(err, executor.ErrStopped) {
			code = status.BadShutdown
		}
		s.metrics.ObserveRequest(string(req.Op), code.String())
		c.send(wire.EventResponse, wire.Response{ID: req.ID, Status: code, Error: err.Error()})
	}
}

func (s *Server) closeConn(c *conn) {
	s.mu.Lock()
	_, ok := s.conns[c.id]
	delete(s.conns, c.id)
	s.mu.Unlock()
	if !ok {
		return
	}

	c.cancel()
	if err := c.sess.Close(c.ctx); err != nil {
		ctxlog.FromContext(c.ctx).Warn("Failed to close session.", "error", err)
	}
	s.metrics.SessionClosed()
	ctxlog.FromContext(c.ctx).Info("Session closed.")
}

// Connections returns the number of open sockets.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close disconnects every socket and closes their sessions.
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.closeConn(c)
	}
	s.io.Close(nil)
}
