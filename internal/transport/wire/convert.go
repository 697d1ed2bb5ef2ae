package wire

import (
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/zclconf/go-cty/cty"
)

func values(vs []cty.Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = NewValue(v)
	}
	return out
}

func ctyValues(vs []Value) []cty.Value {
	if vs == nil {
		return nil
	}
	out := make([]cty.Value, len(vs))
	for i, v := range vs {
		out[i] = v.Value
	}
	return out
}

func FromBrowseRequest(r session.BrowseRequest) *BrowseRequest {
	w := BrowseRequest(r)
	return &w
}

func (r *BrowseRequest) Session() session.BrowseRequest {
	return session.BrowseRequest(*r)
}

func FromBrowseResult(r session.BrowseResult) *BrowseResult {
	refs := make([]ReferenceDescription, len(r.References))
	for i, ref := range r.References {
		refs[i] = ReferenceDescription(ref)
	}
	return &BrowseResult{Status: r.Status, References: refs}
}

func (r *BrowseResult) Session() session.BrowseResult {
	refs := make([]session.ReferenceDescription, len(r.References))
	for i, ref := range r.References {
		refs[i] = session.ReferenceDescription(ref)
	}
	return session.BrowseResult{Status: r.Status, References: refs}
}

func FromReadValueIDs(ids []session.ReadValueID) []ReadValueID {
	out := make([]ReadValueID, len(ids))
	for i, id := range ids {
		out[i] = ReadValueID(id)
	}
	return out
}

func SessionReadValueIDs(ids []ReadValueID) []session.ReadValueID {
	out := make([]session.ReadValueID, len(ids))
	for i, id := range ids {
		out[i] = session.ReadValueID(id)
	}
	return out
}

func FromDataValue(dv node.DataValue) DataValue {
	return DataValue{
		Value:           NewValue(dv.Value),
		Status:          dv.Status,
		SourceTimestamp: dv.SourceTimestamp,
		ServerTimestamp: dv.ServerTimestamp,
	}
}

func (d DataValue) Node() node.DataValue {
	return node.DataValue{
		Value:           d.Value.Value,
		Status:          d.Status,
		SourceTimestamp: d.SourceTimestamp,
		ServerTimestamp: d.ServerTimestamp,
	}
}

func FromDataValues(dvs []node.DataValue) []DataValue {
	out := make([]DataValue, len(dvs))
	for i, dv := range dvs {
		out[i] = FromDataValue(dv)
	}
	return out
}

func NodeDataValues(dvs []DataValue) []node.DataValue {
	out := make([]node.DataValue, len(dvs))
	for i, dv := range dvs {
		out[i] = dv.Node()
	}
	return out
}

func FromWriteValues(ws []session.WriteValue) []WriteValue {
	out := make([]WriteValue, len(ws))
	for i, w := range ws {
		out[i] = WriteValue{NodeID: w.NodeID, Attribute: w.Attribute, Value: NewValue(w.Value)}
	}
	return out
}

func SessionWriteValues(ws []WriteValue) []session.WriteValue {
	out := make([]session.WriteValue, len(ws))
	for i, w := range ws {
		out[i] = session.WriteValue{NodeID: w.NodeID, Attribute: w.Attribute, Value: w.Value.Value}
	}
	return out
}

func FromCallRequests(cs []session.CallMethodRequest) []CallRequest {
	out := make([]CallRequest, len(cs))
	for i, c := range cs {
		out[i] = CallRequest{MethodID: c.MethodID, Arguments: values(c.Arguments)}
	}
	return out
}

func SessionCallRequests(cs []CallRequest) []session.CallMethodRequest {
	out := make([]session.CallMethodRequest, len(cs))
	for i, c := range cs {
		out[i] = session.CallMethodRequest{MethodID: c.MethodID, Arguments: ctyValues(c.Arguments)}
	}
	return out
}

func FromCallResults(rs []session.CallMethodResult) []CallResult {
	out := make([]CallResult, len(rs))
	for i, r := range rs {
		out[i] = CallResult{Status: r.Status, Error: r.Error, Outputs: values(r.Outputs)}
	}
	return out
}

func SessionCallResults(rs []CallResult) []session.CallMethodResult {
	out := make([]session.CallMethodResult, len(rs))
	for i, r := range rs {
		out[i] = session.CallMethodResult{Status: r.Status, Error: r.Error, Outputs: ctyValues(r.Outputs)}
	}
	return out
}

func FromSubscriptionRequest(r session.SubscriptionRequest) *SubscribeRequest {
	w := SubscribeRequest(r)
	return &w
}

func (r *SubscribeRequest) Session() session.SubscriptionRequest {
	return session.SubscriptionRequest(*r)
}

func FromEvent(e eventbus.Event) Event {
	out := Event{
		ID:        e.ID,
		Kind:      e.Kind,
		Node:      e.Node,
		Owner:     e.Owner,
		Attribute: e.Attribute,
		Name:      e.Name,
		Time:      e.Time,
	}
	if e.Value.Value != cty.NilVal {
		dv := FromDataValue(e.Value)
		out.Value = &dv
	}
	if len(e.Data) > 0 {
		out.Data = make(map[string]Value, len(e.Data))
		for k, v := range e.Data {
			out.Data[k] = NewValue(v)
		}
	}
	return out
}

func (e Event) Bus() eventbus.Event {
	out := eventbus.Event{
		ID:        e.ID,
		Kind:      e.Kind,
		Node:      e.Node,
		Owner:     e.Owner,
		Attribute: e.Attribute,
		Name:      e.Name,
		Time:      e.Time,
	}
	if e.Value != nil {
		out.Value = e.Value.Node()
	}
	if len(e.Data) > 0 {
		out.Data = make(map[string]cty.Value, len(e.Data))
		for k, v := range e.Data {
			out.Data[k] = v.Value
		}
	}
	return out
}
