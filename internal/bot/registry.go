package bot

import "sync"

// ModuleRegistry collects modules before the bot starts.
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules []Module
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{}
}

// Register adds a module.
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of the registered modules.
func (r *ModuleRegistry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// The global registry backs module self-registration from init functions.
var globalRegistry = NewModuleRegistry()

// Register adds a module to the global registry.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all globally registered modules.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry empties the global registry. Test use only.
func ResetGlobalRegistry() {
	globalRegistry = NewModuleRegistry()
}
