package registry

import (
	"errors"
	"sync"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
)

// ErrInvalidTypeReference is returned when a requested vertex type is neither
// claimed by a plugin, declared in the schema, nor the id of an existing
// object type.
var ErrInvalidTypeReference = errors.New("invalid type reference")

// Module is the interface that all plugin modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the plugins, schema definitions and resolved type ids for
// a single engine instance.
type Registry struct {
	store     nodestore.Store
	namespace uint16

	// Plugins keyed by name, plus the registration order used for dispatch.
	Plugins     map[string]*RegisteredPlugin
	pluginOrder []string

	// Schema definitions keyed by name.
	DefinitionRegistry     map[string]*config.TypeDefinition
	EdgeDefinitionRegistry map[string]*config.EdgeTypeDefinition

	// mu guards everything below, and serializes type creation.
	mu           sync.Mutex
	bootstrapped bool
	refTypes     map[string]nodeid.ID // Key: browse name
	objTypes     map[string]nodeid.ID // Key: browse name
	vertexTypes  map[nodeid.ID]*VertexType
	supertypes   map[nodeid.ID]nodeid.ID
}

// New creates a registry that materializes types into store. Runtime-created
// types get string ids in namespace ns.
func New(store nodestore.Store, ns uint16) *Registry {
	return &Registry{
		store:                  store,
		namespace:              ns,
		Plugins:                make(map[string]*RegisteredPlugin),
		DefinitionRegistry:     make(map[string]*config.TypeDefinition),
		EdgeDefinitionRegistry: make(map[string]*config.EdgeTypeDefinition),
		refTypes:               make(map[string]nodeid.ID),
		objTypes:               make(map[string]nodeid.ID),
		vertexTypes:            make(map[nodeid.ID]*VertexType),
		supertypes:             make(map[nodeid.ID]nodeid.ID),
	}
}

// Namespace returns the namespace used for runtime-created nodes.
func (r *Registry) Namespace() uint16 { return r.namespace }

// Store returns the node store the registry writes to.
func (r *Registry) Store() nodestore.Store { return r.store }

// PopulateDefinitionsFromModel copies the loaded schema definitions from the
// config model into the registry.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	if model == nil {
		return
	}
	for key, val := range model.Types {
		r.DefinitionRegistry[key] = val
	}
	for key, val := range model.EdgeTypes {
		r.EdgeDefinitionRegistry[key] = val
	}
}
