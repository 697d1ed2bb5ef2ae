// Package uaclient is a remote session.Session speaking the socket.io wire
// protocol of internal/transport/socketio.
package uaclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/transport/wire"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	defaultPath           = "/socket.io/"
	defaultTimeout        = 10 * time.Second
	defaultConnectTimeout = 15 * time.Second
)

// ErrClosed is returned for requests on a closed client.
var ErrClosed = errors.New("client closed")

// Options configure Dial.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds every request. Zero means ten seconds.
	Timeout time.Duration
}

// Client is a connected remote session.
type Client struct {
	id         string
	timeout    time.Duration
	emit       func(event string, payload any)
	disconnect func()

	mu            sync.Mutex
	closed        bool
	pending       map[string]chan wire.Response
	subscriptions map[string]session.NotificationHandler
	ctx           context.Context
}

var _ session.Session = (*Client)(nil)

func newClient(ctx context.Context, id string, timeout time.Duration, emit func(string, any), disconnect func()) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		id:            id,
		timeout:       timeout,
		emit:          emit,
		disconnect:    disconnect,
		pending:       make(map[string]chan wire.Response),
		subscriptions: make(map[string]session.NotificationHandler),
		ctx:           ctx,
	}
}

// Dial connects to a graphua server, e.g. "http://localhost:8080/socket.io/".
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = defaultPath
	}

	ioOpts := socket.DefaultOptions()
	ioOpts.SetPath(path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		ioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	ioOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, ioOpts)
	io := manager.Socket(opts.Namespace, ioOpts)

	c := newClient(ctx, "", opts.Timeout, func(event string, payload any) {
		io.Emit(event, payload)
	}, func() {
		io.Disconnect()
	})
	io.On(types.EventName(wire.EventResponse), func(args ...any) { c.onResponse(args...) })
	io.On(types.EventName(wire.EventNotification), func(args ...any) { c.onNotification(args...) })

	connectChan := make(chan error, 2)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})

	logger.Debug("Connecting.")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		c.id = fmt.Sprint(io.Id())
		logger.Info("Connected.", "sid", c.id)
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(defaultConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", defaultConnectTimeout)
	}
}

func (c *Client) ID() string { return c.id }

// request sends req and waits for the matching response.
func (c *Client) request(ctx context.Context, req wire.Request) (wire.Response, error) {
	req.ID = uuid.NewString()
	payload, err := wire.Encode(req)
	if err != nil {
		return wire.Response{}, status.Errorf(status.BadEncodingError, "%v", err)
	}

	ch := make(chan wire.Response, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return wire.Response{}, &status.Error{Code: status.BadSessionClosed, Message: ErrClosed.Error()}
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	ctxlog.FromContext(ctx).Debug("Sending request.", "request", req.ID, "op", string(req.Op))
	c.emit(wire.EventRequest, payload)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		if resp.Status.IsBad() {
			return resp, &status.Error{Code: resp.Status, Message: resp.Error}
		}
		return resp, nil
	case <-ctx.Done():
		return wire.Response{}, ctx.Err()
	case <-timer.C:
		return wire.Response{}, status.Errorf(status.BadTimeout, "no response to %s after %s", req.Op, c.timeout)
	}
}

func (c *Client) onResponse(args ...any) {
	if len(args) == 0 {
		return
	}
	var resp wire.Response
	if err := wire.Decode(args[0], &resp); err != nil {
		ctxlog.FromContext(c.ctx).Warn("Dropping malformed response.", "error", err)
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if !ok {
		ctxlog.FromContext(c.ctx).Debug("Dropping response to unknown request.", "request", resp.ID)
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

func (c *Client) onNotification(args ...any) {
	if len(args) == 0 {
		return
	}
	var n wire.Notification
	if err := wire.Decode(args[0], &n); err != nil {
		ctxlog.FromContext(c.ctx).Warn("Dropping malformed notification.", "error", err)
		return
	}
	c.mu.Lock()
	handler, ok := c.subscriptions[n.Subscription]
	c.mu.Unlock()
	if !ok {
		ctxlog.FromContext(c.ctx).Debug("Dropping notification.", "subscription", n.Subscription)
		return
	}
	handler(c.ctx, n.Event.Bus())
}

// Browse implements session.Session.
func (c *Client) Browse(ctx context.Context, req session.BrowseRequest) session.BrowseResult {
	resp, err := c.request(ctx, wire.Request{Op: wire.OpBrowse, Browse: wire.FromBrowseRequest(req)})
	if err != nil {
		return session.BrowseResult{Status: status.FromError(err)}
	}
	if resp.Browse == nil {
		return session.BrowseResult{Status: status.BadDecodingError}
	}
	return resp.Browse.Session()
}

// Read implements session.Session.
func (c *Client) Read(ctx context.Context, nodes []session.ReadValueID) []node.DataValue {
	resp, err := c.request(ctx, wire.Request{Op: wire.OpRead, Read: wire.FromReadValueIDs(nodes)})
	if err == nil && len(resp.Values) != len(nodes) {
		err = status.Errorf(status.BadDecodingError, "expected %d values, got %d", len(nodes), len(resp.Values))
	}
	if err != nil {
		out := make([]node.DataValue, len(nodes))
		for i := range out {
			out[i].Status = status.FromError(err)
		}
		return out
	}
	return wire.NodeDataValues(resp.Values)
}

// Write implements session.Session.
func (c *Client) Write(ctx context.Context, values []session.WriteValue) []status.Code {
	resp, err := c.request(ctx, wire.Request{Op: wire.OpWrite, Write: wire.FromWriteValues(values)})
	if err == nil && len(resp.Codes) != len(values) {
		err = status.Errorf(status.BadDecodingError, "expected %d codes, got %d", len(values), len(resp.Codes))
	}
	if err != nil {
		out := make([]status.Code, len(values))
		for i := range out {
			out[i] = status.FromError(err)
		}
		return out
	}
	return resp.Codes
}

// Call implements session.Session.
func (c *Client) Call(ctx context.Context, calls []session.CallMethodRequest) []session.CallMethodResult {
	resp, err := c.request(ctx, wire.Request{Op: wire.OpCall, Call: wire.FromCallRequests(calls)})
	if err == nil && len(resp.Calls) != len(calls) {
		err = status.Errorf(status.BadDecodingError, "expected %d results, got %d", len(calls), len(resp.Calls))
	}
	if err != nil {
		out := make([]session.CallMethodResult, len(calls))
		for i := range out {
			out[i] = session.CallMethodResult{Status: status.FromError(err), Error: err.Error()}
		}
		return out
	}
	return wire.SessionCallResults(resp.Calls)
}

// Subscribe implements session.Session. Handlers run on the socket's event
// goroutine.
func (c *Client) Subscribe(ctx context.Context, req session.SubscriptionRequest, handler session.NotificationHandler) (string, status.Code) {
	if handler == nil {
		return "", status.BadInvalidArgument
	}
	resp, err := c.request(ctx, wire.Request{Op: wire.OpSubscribe, Subscribe: wire.FromSubscriptionRequest(req)})
	if err != nil {
		return "", status.FromError(err)
	}
	c.mu.Lock()
	c.subscriptions[resp.Subscription] = handler
	c.mu.Unlock()
	return resp.Subscription, status.Good
}

// Unsubscribe implements session.Session.
func (c *Client) Unsubscribe(ctx context.Context, subscriptionID string) status.Code {
	_, err := c.request(ctx, wire.Request{Op: wire.OpUnsubscribe, Subscription: subscriptionID})
	c.mu.Lock()
	delete(c.subscriptions, subscriptionID)
	c.mu.Unlock()
	return status.FromError(err)
}

// Close disconnects. Requests still waiting fail with BadSessionClosed.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for id, ch := range c.pending {
		select {
		case ch <- wire.Response{ID: id, Status: status.BadSessionClosed, Error: ErrClosed.Error()}:
		default:
		}
	}
	c.subscriptions = make(map[string]session.NotificationHandler)
	c.mu.Unlock()

	c.disconnect()
	ctxlog.FromContext(ctx).Debug("Client closed.", "sid", c.id)
	return nil
}
