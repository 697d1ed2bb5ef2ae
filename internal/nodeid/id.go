// internal/nodeid/id.go
package nodeid

import (
	"strconv"
	"strings"
)

// String serializes the ID into its canonical NodeId text.
func (id ID) String() string {
	var sb strings.Builder
	if id.Namespace != 0 {
		sb.WriteString("ns=")
		sb.WriteString(strconv.FormatUint(uint64(id.Namespace), 10))
		sb.WriteRune(';')
	}
	if id.Kind == String {
		sb.WriteString("s=")
	} else {
		sb.WriteString("i=")
	}
	sb.WriteString(id.Identifier())
	return sb.String()
}

// Identifier returns the identifier part without namespace or kind prefix.
func (id ID) Identifier() string {
	if id.Kind == String {
		return id.Name
	}
	return strconv.FormatUint(uint64(id.Numeric), 10)
}

// Child derives the identifier of a node owned by id, such as a property
// keyed by name. The result always lives in the owner's namespace.
func (id ID) Child(sep, key string) ID {
	return NewString(id.Namespace, id.Identifier()+sep+key)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
