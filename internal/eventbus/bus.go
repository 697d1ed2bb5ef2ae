// Package eventbus carries the engine's change stream from the mutation
// path to subscribers: remote sessions, the rule engine and metrics.
//
// Publishing never blocks. Events go into a bounded queue drained by a
// single goroutine; when the queue is full the event is dropped, counted and
// logged.
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphua/internal/ctxlog"
)

// DefaultCapacity is the queue size used when New is given zero.
const DefaultCapacity = 1000

// Handler receives matching events on the bus goroutine.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	filter  Filter
	handler Handler
}

// Bus is a bounded, asynchronous publish/subscribe queue.
type Bus struct {
	events chan Event

	closeMu sync.RWMutex
	closed  bool

	mu   sync.RWMutex
	subs map[string]*subscription

	published atomic.Uint64
	dropped   atomic.Uint64
	delivered atomic.Uint64

	ctx atomic.Pointer[context.Context]
	wg  sync.WaitGroup
}

// New creates a bus whose queue holds capacity events.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Bus{
		events: make(chan Event, capacity),
		subs:   make(map[string]*subscription),
	}
	ctx := context.Background()
	b.ctx.Store(&ctx)
	return b
}

// baseContext returns the context given to Start, or the background context
// before Start.
func (b *Bus) baseContext() context.Context {
	return *b.ctx.Load()
}

// Start begins draining the queue. The logger of ctx is used for delivery
// diagnostics.
func (b *Bus) Start(ctx context.Context) {
	b.ctx.Store(&ctx)
	b.wg.Add(1)
	go b.processEvents()
	ctxlog.FromContext(ctx).Debug("Event bus started.", "capacity", cap(b.events))
}

// Stop closes the queue and waits until every queued event is delivered.
// Publish after Stop drops the event.
func (b *Bus) Stop() {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return
	}
	b.closed = true
	close(b.events)
	b.closeMu.Unlock()

	b.wg.Wait()
	ctxlog.FromContext(b.baseContext()).Debug("Event bus stopped.", "published", b.published.Load(), "dropped", b.dropped.Load())
}

// Publish enqueues e without blocking and reports whether it was accepted.
// ID and Time are filled in when empty.
func (b *Bus) Publish(e Event) bool {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed {
		b.dropped.Add(1)
		return false
	}
	select {
	case b.events <- e:
		b.published.Add(1)
		return true
	default:
		b.dropped.Add(1)
		ctxlog.FromContext(b.baseContext()).Warn("Event queue full, dropping event.", "event", e.ID, "kind", string(e.Kind), "node", e.Node.String())
		return false
	}
}

// Subscribe registers handler for events matching filter and returns the
// subscription id.
func (b *Bus) Subscribe(filter Filter, handler Handler) string {
	id := uuid.New().String()
	b.mu.Lock()
	b.subs[id] = &subscription{filter: filter, handler: handler}
	b.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription and reports whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	return true
}

// Stats returns the running totals.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Dropped:   b.dropped.Load(),
		Delivered: b.delivered.Load(),
		Queued:    len(b.events),
	}
}

func (b *Bus) processEvents() {
	defer b.wg.Done()

	for e := range b.events {
		b.handleEvent(e)
	}
}

func (b *Bus) handleEvent(e Event) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.filter.Matches(e) {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		b.deliver(h, e)
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if p := recover(); p != nil {
			ctxlog.FromContext(b.baseContext()).Warn("Event handler panicked.", "event", e.ID, "kind", string(e.Kind), "panic", p)
		}
	}()
	h(b.baseContext(), e)
	b.delivered.Add(1)
}
