package app

import (
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/modules/machine"
)

// coreModules returns the plugin modules compiled into the graphua binary.
// Modules keep per-engine state, so every App gets fresh instances.
func coreModules() []registry.Module {
	return []registry.Module{
		&machine.Module{},
	}
}
