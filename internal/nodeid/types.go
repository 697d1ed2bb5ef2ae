// internal/nodeid/types.go
package nodeid

// Kind distinguishes numeric identifiers from string identifiers.
type Kind uint8

const (
	// Numeric identifiers are used for the standard nodes of namespace 0.
	Numeric Kind = iota
	// String identifiers are used for everything created at runtime.
	String
)

// ID is the structured representation of a unique node identifier.
type ID struct {
	Namespace uint16
	Kind      Kind
	Numeric   uint32
	Name      string
}

// Null is the zero identifier. It never addresses a live node.
var Null = ID{}

// NewNumeric creates a numeric identifier.
func NewNumeric(ns uint16, v uint32) ID {
	return ID{Namespace: ns, Kind: Numeric, Numeric: v}
}

// NewString creates a string identifier.
func NewString(ns uint16, name string) ID {
	return ID{Namespace: ns, Kind: String, Name: name}
}

// IsNull returns true for the zero identifier.
func (id ID) IsNull() bool {
	return id == Null
}
