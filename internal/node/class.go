package node

import (
	"fmt"
	"strconv"
)

// Class is the protocol node class of a record.
type Class uint32

const (
	ClassUnspecified   Class = 0
	ClassObject        Class = 1
	ClassVariable      Class = 2
	ClassMethod        Class = 4
	ClassObjectType    Class = 8
	ClassVariableType  Class = 16
	ClassReferenceType Class = 32
	ClassDataType      Class = 64
	ClassView          Class = 128
)

func (c Class) String() string {
	switch c {
	case ClassObject:
		return "Object"
	case ClassVariable:
		return "Variable"
	case ClassMethod:
		return "Method"
	case ClassObjectType:
		return "ObjectType"
	case ClassVariableType:
		return "VariableType"
	case ClassReferenceType:
		return "ReferenceType"
	case ClassDataType:
		return "DataType"
	case ClassView:
		return "View"
	default:
		return "Unspecified"
	}
}

// AttributeID selects one attribute of a node. The numbering is the
// protocol's.
type AttributeID uint32

const (
	AttributeNodeID          AttributeID = 1
	AttributeNodeClass       AttributeID = 2
	AttributeBrowseName      AttributeID = 3
	AttributeDisplayName     AttributeID = 4
	AttributeDescription     AttributeID = 5
	AttributeWriteMask       AttributeID = 6
	AttributeUserWriteMask   AttributeID = 7
	AttributeIsAbstract      AttributeID = 8
	AttributeSymmetric       AttributeID = 9
	AttributeInverseName     AttributeID = 10
	AttributeEventNotifier   AttributeID = 12
	AttributeValue           AttributeID = 13
	AttributeDataType        AttributeID = 14
	AttributeAccessLevel     AttributeID = 17
	AttributeUserAccessLevel AttributeID = 18
	AttributeExecutable      AttributeID = 21
	AttributeUserExecutable  AttributeID = 22
)

var attributeNames = map[AttributeID]string{
	AttributeNodeID:          "NodeId",
	AttributeNodeClass:       "NodeClass",
	AttributeBrowseName:      "BrowseName",
	AttributeDisplayName:     "DisplayName",
	AttributeDescription:     "Description",
	AttributeWriteMask:       "WriteMask",
	AttributeUserWriteMask:   "UserWriteMask",
	AttributeIsAbstract:      "IsAbstract",
	AttributeSymmetric:       "Symmetric",
	AttributeInverseName:     "InverseName",
	AttributeEventNotifier:   "EventNotifier",
	AttributeValue:           "Value",
	AttributeDataType:        "DataType",
	AttributeAccessLevel:     "AccessLevel",
	AttributeUserAccessLevel: "UserAccessLevel",
	AttributeExecutable:      "Executable",
	AttributeUserExecutable:  "UserExecutable",
}

func (a AttributeID) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return "Attribute(" + strconv.FormatUint(uint64(a), 10) + ")"
}

// ParseAttributeID accepts either a protocol attribute name ("DisplayName") or
// its number ("4").
func ParseAttributeID(s string) (AttributeID, error) {
	for id, name := range attributeNames {
		if name == s {
			return id, nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		if _, ok := attributeNames[AttributeID(n)]; ok {
			return AttributeID(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrAttributeInvalid, s)
}

// WriteMask marks which attributes of a node may be written by a client.
type WriteMask uint32

const (
	WriteMaskBrowseName    WriteMask = 1 << 2
	WriteMaskDescription   WriteMask = 1 << 5
	WriteMaskDisplayName   WriteMask = 1 << 6
	WriteMaskEventNotifier WriteMask = 1 << 7
	WriteMaskInverseName   WriteMask = 1 << 10
	WriteMaskIsAbstract    WriteMask = 1 << 11
	WriteMaskSymmetric     WriteMask = 1 << 15
	WriteMaskUserWriteMask WriteMask = 1 << 18
	WriteMaskWriteMask     WriteMask = 1 << 20
)

// Has reports whether every bit of other is set in m.
func (m WriteMask) Has(other WriteMask) bool { return m&other == other }

// maskFor maps a writable attribute to the write mask bit guarding it.
func maskFor(attr AttributeID) (WriteMask, bool) {
	switch attr {
	case AttributeBrowseName:
		return WriteMaskBrowseName, true
	case AttributeDisplayName:
		return WriteMaskDisplayName, true
	case AttributeDescription:
		return WriteMaskDescription, true
	case AttributeEventNotifier:
		return WriteMaskEventNotifier, true
	case AttributeWriteMask:
		return WriteMaskWriteMask, true
	case AttributeUserWriteMask:
		return WriteMaskUserWriteMask, true
	case AttributeInverseName:
		return WriteMaskInverseName, true
	case AttributeIsAbstract:
		return WriteMaskIsAbstract, true
	case AttributeSymmetric:
		return WriteMaskSymmetric, true
	}
	return 0, false
}

// Event notifier bits.
const (
	EventNotifierNone              byte = 0
	EventNotifierSubscribeToEvents byte = 1
)

// Access level bits of a Variable.
const (
	AccessLevelCurrentRead  byte = 1
	AccessLevelCurrentWrite byte = 2
)

// QualifiedName is a browse name scoped by a namespace index.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// NewQualifiedName builds a QualifiedName.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

// String renders "name" for namespace 0 and "ns:name" otherwise.
func (q QualifiedName) String() string {
	if q.NamespaceIndex == 0 {
		return q.Name
	}
	return strconv.FormatUint(uint64(q.NamespaceIndex), 10) + ":" + q.Name
}
