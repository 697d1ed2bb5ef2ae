package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the whole
// configuration: server settings and the graph schema.
type Model struct {
	Server    *Server
	Types     map[string]*TypeDefinition
	EdgeTypes map[string]*EdgeTypeDefinition
}

// NewModel returns an empty model with initialized maps.
func NewModel() *Model {
	return &Model{
		Server:    &Server{},
		Types:     make(map[string]*TypeDefinition),
		EdgeTypes: make(map[string]*EdgeTypeDefinition),
	}
}

// Merge copies the definitions of other into m. Later definitions replace
// earlier ones with the same name; non-zero server settings win.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	for name, def := range other.Types {
		m.Types[name] = def
	}
	for name, def := range other.EdgeTypes {
		m.EdgeTypes[name] = def
	}
	if other.Server != nil {
		m.Server.merge(other.Server)
	}
}

// Server holds the settings of the `server` block. Zero values mean "not set".
type Server struct {
	Listen          string
	HealthcheckPort int
	Namespace       int
	Workers         int
	EventQueue      int
	LogLevel        string
	LogFormat       string
}

func (s *Server) merge(o *Server) {
	if o.Listen != "" {
		s.Listen = o.Listen
	}
	if o.HealthcheckPort != 0 {
		s.HealthcheckPort = o.HealthcheckPort
	}
	if o.Namespace != 0 {
		s.Namespace = o.Namespace
	}
	if o.Workers != 0 {
		s.Workers = o.Workers
	}
	if o.EventQueue != 0 {
		s.EventQueue = o.EventQueue
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		s.LogFormat = o.LogFormat
	}
}

// TypeDefinition is a schema-declared vertex type.
type TypeDefinition struct {
	Name        string
	Description string
	// SuperType names another schema type. Empty means the base vertex type.
	SuperType string
	// Plugin names the registered plugin that constructs vertices of this
	// type. Empty means the default constructor.
	Plugin string
	// Fields are kept in declaration order.
	Fields []*FieldDefinition
}

// Field returns the field with the given name, or nil.
func (t *TypeDefinition) Field(name string) *FieldDefinition {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldDefinition is one ordered field of a vertex type.
type FieldDefinition struct {
	Name        string
	Kind        cty.Type
	Unit        string
	Description string
	Default     *cty.Value
	ReadOnly    bool
}

// EdgeTypeDefinition is a schema-declared edge type.
type EdgeTypeDefinition struct {
	Name        string
	Description string
	InverseName string
	Symmetric   bool
	Plugin      string
}
