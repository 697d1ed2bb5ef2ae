package node

import (
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// ReferenceType defines a kind of reference.
type ReferenceType struct {
	*Record
	inverseName string
	symmetric   bool
	abstract    bool
	supertype   nodeid.ID
}

// NewReferenceType creates a reference type. supertype may be nodeid.Null
// for the root of the hierarchy.
func NewReferenceType(id nodeid.ID, browseName QualifiedName, inverseName string, supertype nodeid.ID, symmetric, abstract bool) *ReferenceType {
	return &ReferenceType{
		Record:      NewRecord(id, ClassReferenceType, browseName),
		inverseName: inverseName,
		symmetric:   symmetric,
		abstract:    abstract,
		supertype:   supertype,
	}
}

func (t *ReferenceType) InverseName() string  { return t.inverseName }
func (t *ReferenceType) Symmetric() bool      { return t.symmetric }
func (t *ReferenceType) IsAbstract() bool     { return t.abstract }
func (t *ReferenceType) Supertype() nodeid.ID { return t.supertype }

func (t *ReferenceType) ReadAttribute(attr AttributeID) (DataValue, error) {
	switch attr {
	case AttributeInverseName:
		return GoodValue(cty.StringVal(t.inverseName)), nil
	case AttributeSymmetric:
		return GoodValue(cty.BoolVal(t.symmetric)), nil
	case AttributeIsAbstract:
		return GoodValue(cty.BoolVal(t.abstract)), nil
	}
	return t.Record.ReadAttribute(attr)
}

// ObjectType defines a kind of Object, such as a vertex type.
type ObjectType struct {
	*Record
	abstract  bool
	supertype nodeid.ID
}

// NewObjectType creates an object type.
func NewObjectType(id nodeid.ID, browseName QualifiedName, supertype nodeid.ID, abstract bool) *ObjectType {
	return &ObjectType{
		Record:    NewRecord(id, ClassObjectType, browseName),
		abstract:  abstract,
		supertype: supertype,
	}
}

func (t *ObjectType) IsAbstract() bool     { return t.abstract }
func (t *ObjectType) Supertype() nodeid.ID { return t.supertype }

func (t *ObjectType) ReadAttribute(attr AttributeID) (DataValue, error) {
	if attr == AttributeIsAbstract {
		return GoodValue(cty.BoolVal(t.abstract)), nil
	}
	return t.Record.ReadAttribute(attr)
}
