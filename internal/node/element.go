package node

import (
	"context"
	"fmt"

	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// elementWriteMask is granted to vertices and edges: clients may rename and
// describe them.
const elementWriteMask = WriteMaskDisplayName | WriteMaskDescription

// Vertex is a graph vertex exposed as an Object.
type Vertex struct {
	*Record
	label   string
	typeDef nodeid.ID
}

// NewVertex creates a vertex record with the given type definition.
func NewVertex(id nodeid.ID, browseName QualifiedName, label string, typeDef nodeid.ID) *Vertex {
	r := NewRecord(id, ClassObject, browseName)
	r.writeMask, r.userWriteMask = elementWriteMask, elementWriteMask
	return &Vertex{Record: r, label: label, typeDef: typeDef}
}

func (v *Vertex) Label() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.label
}

// SetLabel replaces the vertex label. Labels have no protocol attribute, so
// the notified change carries a zero Attribute.
func (v *Vertex) SetLabel(ctx context.Context, label string) error {
	if label == "" {
		return ErrInvalidName
	}
	v.mu.Lock()
	v.label = label
	v.mu.Unlock()
	v.Notify(ctx, Change{Kind: AttributeChanged})
	return nil
}

func (v *Vertex) TypeDefinition() nodeid.ID { return v.typeDef }

// Edge is a graph edge exposed as an Object of its own.
type Edge struct {
	*Record
	label   string
	source  nodeid.ID
	target  nodeid.ID
	refType nodeid.ID
}

// NewEdge creates an edge record between source and target whose semantic
// reference has type refType.
func NewEdge(id nodeid.ID, browseName QualifiedName, label string, source, target, refType nodeid.ID) *Edge {
	r := NewRecord(id, ClassObject, browseName)
	r.writeMask, r.userWriteMask = elementWriteMask, elementWriteMask
	return &Edge{Record: r, label: label, source: source, target: target, refType: refType}
}

func (e *Edge) Label() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.label
}

// SetLabel replaces the edge label.
func (e *Edge) SetLabel(ctx context.Context, label string) error {
	if label == "" {
		return ErrInvalidName
	}
	e.mu.Lock()
	e.label = label
	e.mu.Unlock()
	e.Notify(ctx, Change{Kind: AttributeChanged})
	return nil
}

func (e *Edge) Source() nodeid.ID        { return e.source }
func (e *Edge) Target() nodeid.ID        { return e.target }
func (e *Edge) ReferenceType() nodeid.ID { return e.refType }

// Scope tells whether a property belongs to a vertex or an edge.
type Scope uint8

const (
	VertexScope Scope = iota
	EdgeScope
)

func (s Scope) String() string {
	if s == EdgeScope {
		return "edge"
	}
	return "vertex"
}

// Property is a key/value pair of a vertex or edge, exposed as a Variable.
type Property struct {
	*Record
	owner       nodeid.ID
	key         string
	scope       Scope
	value       DataValue
	accessLevel byte
}

// NewProperty creates a readable and writable property.
func NewProperty(id, owner nodeid.ID, key string, scope Scope, value DataValue) *Property {
	r := NewRecord(id, ClassVariable, NewQualifiedName(owner.Namespace, key))
	r.writeMask, r.userWriteMask = WriteMaskDescription, WriteMaskDescription
	return &Property{
		Record:      r,
		owner:       owner,
		key:         key,
		scope:       scope,
		value:       value,
		accessLevel: AccessLevelCurrentRead | AccessLevelCurrentWrite,
	}
}

func (p *Property) Owner() nodeid.ID { return p.owner }
func (p *Property) Key() string      { return p.key }
func (p *Property) Scope() Scope     { return p.scope }

func (p *Property) Value() DataValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// SetValue replaces the stored value and notifies observers.
func (p *Property) SetValue(ctx context.Context, dv DataValue) {
	p.mu.Lock()
	p.value = dv
	p.mu.Unlock()
	p.Notify(ctx, Change{Kind: ValueChanged, Attribute: AttributeValue, Value: dv})
}

// SetReadOnly clears the write bit of the access level.
func (p *Property) SetReadOnly() {
	p.mu.Lock()
	p.accessLevel = AccessLevelCurrentRead
	p.mu.Unlock()
}

func (p *Property) Writable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accessLevel&AccessLevelCurrentWrite != 0
}

func (p *Property) ReadAttribute(attr AttributeID) (DataValue, error) {
	switch attr {
	case AttributeValue:
		return p.Value(), nil
	case AttributeDataType:
		dv := p.Value()
		name := "Null"
		if dv.Value != cty.NilVal {
			name = dv.Value.Type().FriendlyName()
		}
		return GoodValue(cty.StringVal(name)), nil
	case AttributeAccessLevel, AttributeUserAccessLevel:
		p.mu.RLock()
		defer p.mu.RUnlock()
		return GoodValue(cty.NumberUIntVal(uint64(p.accessLevel))), nil
	}
	return p.Record.ReadAttribute(attr)
}

func (p *Property) WriteAttribute(ctx context.Context, attr AttributeID, v cty.Value) error {
	if attr != AttributeValue {
		return p.Record.WriteAttribute(ctx, attr, v)
	}
	if !p.Writable() {
		return fmt.Errorf("%w: value of %s", ErrNotWritable, p.id)
	}
	p.SetValue(ctx, GoodValue(v))
	return nil
}

// Folder organizes nodes under a path.
type Folder struct {
	*Record
	path string
}

// NewFolder creates a folder for the full path. The browse name is the last
// path segment.
func NewFolder(id nodeid.ID, browseName QualifiedName, path string) *Folder {
	return &Folder{Record: NewRecord(id, ClassObject, browseName), path: path}
}

func (f *Folder) Path() string { return f.path }

// Method is an operation attached to an owner node.
type Method struct {
	*Record
	owner  nodeid.ID
	name   string
	inputs []string
}

// NewMethod creates an executable method.
func NewMethod(id, owner nodeid.ID, name string, inputs []string) *Method {
	return &Method{
		Record: NewRecord(id, ClassMethod, NewQualifiedName(owner.Namespace, name)),
		owner:  owner,
		name:   name,
		inputs: append([]string(nil), inputs...),
	}
}

func (m *Method) Owner() nodeid.ID { return m.owner }
func (m *Method) Name() string     { return m.name }

// InputArguments returns the names of the method's arguments in call order.
func (m *Method) InputArguments() []string {
	return append([]string(nil), m.inputs...)
}

func (m *Method) ReadAttribute(attr AttributeID) (DataValue, error) {
	if attr == AttributeExecutable || attr == AttributeUserExecutable {
		return GoodValue(cty.True), nil
	}
	return m.Record.ReadAttribute(attr)
}
