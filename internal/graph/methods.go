package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	MethodDelete   = "delete"
	MethodProperty = "property"
)

var standardMethods = []struct {
	name   string
	inputs []string
}{
	{MethodDelete, nil},
	{MethodProperty, []string{"label", "value"}},
}

// MethodID returns the id of the standard method name of owner.
func MethodID(owner nodeid.ID, name string) nodeid.ID {
	return owner.Child(":", name)
}

// attachMethods adds the standard methods to a vertex or edge.
func (m *Manager) attachMethods(ctx context.Context, owner nodeid.ID) error {
	for _, sm := range standardMethods {
		id := MethodID(owner, sm.name)
		if err := m.insert(ctx, node.NewMethod(id, owner, sm.name, sm.inputs)); err != nil {
			return err
		}
		if err := m.link(ctx, owner, registry.HasComponent, id); err != nil {
			m.rollback(ctx, id)
			return err
		}
	}
	return nil
}

// Call invokes a method node. Failures, including panics inside the method
// body, are reported in the result rather than returned.
func (m *Manager) Call(ctx context.Context, methodID nodeid.ID, args []cty.Value) (res CallResult) {
	logger := ctxlog.FromContext(ctx).With("method", methodID.String())
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("Method panicked.", "panic", p)
			res = CallResult{Error: fmt.Sprintf("method %s panicked: %v", methodID, p), Status: statusInternal}
		}
	}()

	out, err := m.call(ctx, methodID, args)
	if err != nil {
		logger.Debug("Method failed.", "error", err)
		return CallResult{Error: err.Error(), Status: StatusOf(err)}
	}
	logger.Debug("Method called.")
	return CallResult{Output: out}
}

func (m *Manager) call(ctx context.Context, methodID nodeid.ID, args []cty.Value) ([]cty.Value, error) {
	n, err := m.store.Get(ctx, methodID)
	if err != nil {
		return nil, err
	}
	method, ok := n.(*node.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a method", ErrMethodInvalid, methodID)
	}
	if want := len(method.InputArguments()); len(args) < want {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrArgumentsMissing, method.Name(), want, len(args))
	}

	switch method.Name() {
	case MethodDelete:
		return nil, m.removeElement(ctx, method.Owner())
	case MethodProperty:
		key := args[0]
		if key == cty.NilVal || key.IsNull() || !key.IsKnown() || key.Type() != cty.String {
			return nil, fmt.Errorf("%w: property label must be a string", ErrInvalidArgument)
		}
		p, err := m.CreateOrUpdateProperty(ctx, method.Owner(), key.AsString(), args[1])
		if err != nil {
			return nil, err
		}
		return []cty.Value{cty.StringVal(p.ID().String())}, nil
	}
	return nil, fmt.Errorf("%w: unknown method %q", ErrMethodInvalid, method.Name())
}

func (m *Manager) removeElement(ctx context.Context, id nodeid.ID) error {
	n, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	switch n.(type) {
	case *node.Vertex:
		return m.RemoveVertex(ctx, id)
	case *node.Edge:
		return m.RemoveEdge(ctx, id)
	}
	return fmt.Errorf("%w: %s is neither a vertex nor an edge", ErrInvalidArgument, id)
}
