package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// PostEvent raises an application event on an object. The first event turns
// on the object's SubscribeToEvents notifier bit.
func (m *Manager) PostEvent(ctx context.Context, id nodeid.ID, name string, data map[string]cty.Value) error {
	if name == "" {
		return fmt.Errorf("%w: empty event name", ErrInvalidArgument)
	}
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Class() != node.ClassObject {
		return fmt.Errorf("%w: events can only be posted on objects, %s is a %s", ErrInvalidArgument, id, n.Class())
	}

	rec := n.Base()
	if rec.EnableEvents(ctx) {
		ctxlog.FromContext(ctx).Debug("Events enabled.", "node", id.String())
	}

	payload := make(map[string]cty.Value, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["name"] = cty.StringVal(name)

	rec.Notify(ctx, node.Change{Kind: node.EventPosted, Payload: payload})
	m.publish(eventbus.Event{Kind: eventbus.EventPosted, Node: id, Name: name, Data: data})
	return nil
}
