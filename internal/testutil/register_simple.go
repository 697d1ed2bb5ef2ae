package testutil

import "github.com/specialistvlad/graphua/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single plugin.
type SimpleModule struct {
	Name   string
	Plugin *registry.RegisteredPlugin
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Plugin != nil {
		r.RegisterPlugin(m.Name, m.Plugin)
	}
}
