package registry

import (
	"fmt"
	"log/slog"
)

// Registry holds every known port for a single application instance,
// preserving registration order so resolution is reproducible.
type Registry struct {
	ports map[string]Port
	order []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		ports: make(map[string]Port),
	}
}

// Register adds a port to the registry. Registering two ports with the same
// name is a programmer error and panics.
func (r *Registry) Register(p Port) {
	name := p.Name()
	if _, exists := r.ports[name]; exists {
		panic(fmt.Sprintf("port with name '%s' already registered", name))
	}
	slog.Debug("Registering port.", "name", name, "version", p.Version())
	r.ports[name] = p
	r.order = append(r.order, name)
}

// Lookup returns the port with the given name.
func (r *Registry) Lookup(name string) (Port, bool) {
	p, ok := r.ports[name]
	return p, ok
}

// Ports returns every registered port in registration order.
func (r *Registry) Ports() []Port {
	out := make([]Port, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.ports[name])
	}
	return out
}

// Len returns the number of registered ports.
func (r *Registry) Len() int {
	return len(r.order)
}
