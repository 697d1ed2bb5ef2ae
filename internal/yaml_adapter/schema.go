package yaml_adapter

// file is the root of a YAML schema file.
type file struct {
	Server      *server      `yaml:"server,omitempty"`
	VertexTypes []vertexType `yaml:"vertex_types,omitempty"`
	EdgeTypes   []edgeType   `yaml:"edge_types,omitempty"`
}

type server struct {
	Listen          string `yaml:"listen,omitempty"`
	HealthcheckPort int    `yaml:"healthcheck_port,omitempty"`
	Namespace       int    `yaml:"namespace,omitempty"`
	Workers         int    `yaml:"workers,omitempty"`
	EventQueue      int    `yaml:"event_queue,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
	LogFormat       string `yaml:"log_format,omitempty"`
}

type vertexType struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	SuperType   string  `yaml:"supertype,omitempty"`
	Plugin      string  `yaml:"plugin,omitempty"`
	Fields      []field `yaml:"fields,omitempty"`
}

type field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type,omitempty"`
	Unit        string `yaml:"unit,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Default is decoded into plain Go values and converted once the field
	// kind is known.
	Default  any  `yaml:"default,omitempty"`
	ReadOnly bool `yaml:"read_only,omitempty"`
}

type edgeType struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	InverseName string `yaml:"inverse_name,omitempty"`
	Symmetric   bool   `yaml:"symmetric,omitempty"`
	Plugin      string `yaml:"plugin,omitempty"`
}
