// Package schema holds the HCL decoding structs of configuration files:
// the `server` block and the `vertex_type` / `edge_type` schema blocks.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top-level structure of any configuration file.
type File struct {
	Servers     []*Server     `hcl:"server,block"`
	VertexTypes []*VertexType `hcl:"vertex_type,block"`
	EdgeTypes   []*EdgeType   `hcl:"edge_type,block"`
	Remain      hcl.Body      `hcl:",remain"`
}

// Server represents the `server` block.
type Server struct {
	Listen          string `hcl:"listen,optional"`
	HealthcheckPort int    `hcl:"healthcheck_port,optional"`
	Namespace       int    `hcl:"namespace,optional"`
	Workers         int    `hcl:"workers,optional"`
	EventQueue      int    `hcl:"event_queue,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	LogFormat       string `hcl:"log_format,optional"`
}

// VertexType represents a `vertex_type "<name>"` block.
type VertexType struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	SuperType   string   `hcl:"supertype,optional"`
	Plugin      string   `hcl:"plugin,optional"`
	Fields      []*Field `hcl:"field,block"`
}

// Field represents a `field "<name>"` block inside a vertex type. Type is a
// type expression such as `number` or `list(string)`.
type Field struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Unit        string         `hcl:"unit,optional"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	ReadOnly    bool           `hcl:"read_only,optional"`
}

// EdgeType represents an `edge_type "<name>"` block.
type EdgeType struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
	InverseName string `hcl:"inverse_name,optional"`
	Symmetric   bool   `hcl:"symmetric,optional"`
	Plugin      string `hcl:"plugin,optional"`
}
