package socketio

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/transport/wire"
)

// Dispatch runs one request against sess. Notifications of a subscription it
// creates are handed to notify.
func Dispatch(ctx context.Context, sess session.Session, req wire.Request, notify func(wire.Notification)) wire.Response {
	resp := wire.Response{ID: req.ID, Status: status.Good}

	switch req.Op {
	case wire.OpBrowse:
		if req.Browse == nil {
			return failed(resp, status.BadNothingToDo, "browse request without a node")
		}
		resp.Browse = wire.FromBrowseResult(sess.Browse(ctx, req.Browse.Session()))
	case wire.OpRead:
		if len(req.Read) == 0 {
			return failed(resp, status.BadNothingToDo, "nothing to read")
		}
		resp.Values = wire.FromDataValues(sess.Read(ctx, wire.SessionReadValueIDs(req.Read)))
	case wire.OpWrite:
		if len(req.Write) == 0 {
			return failed(resp, status.BadNothingToDo, "nothing to write")
		}
		resp.Codes = sess.Write(ctx, wire.SessionWriteValues(req.Write))
	case wire.OpCall:
		if len(req.Call) == 0 {
			return failed(resp, status.BadNothingToDo, "nothing to call")
		}
		resp.Calls = wire.FromCallResults(sess.Call(ctx, wire.SessionCallRequests(req.Call)))
	case wire.OpSubscribe:
		filter := session.SubscriptionRequest{}
		if req.Subscribe != nil {
			filter = req.Subscribe.Session()
		}
		// Events can arrive before Subscribe returns the id.
		var subID atomic.Pointer[string]
		id, code := sess.Subscribe(ctx, filter, func(_ context.Context, e eventbus.Event) {
			n := wire.Notification{Event: wire.FromEvent(e)}
			if p := subID.Load(); p != nil {
				n.Subscription = *p
			}
			notify(n)
		})
		subID.Store(&id)
		resp.Status, resp.Subscription = code, id
	case wire.OpUnsubscribe:
		resp.Status = sess.Unsubscribe(ctx, req.Subscription)
		resp.Subscription = req.Subscription
	default:
		return failed(resp, status.BadNotSupported, "unknown operation "+string(req.Op))
	}
	return resp
}

func failed(resp wire.Response, code status.Code, msg string) wire.Response {
	resp.Status = code
	resp.Error = msg
	return resp
}
