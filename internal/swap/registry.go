package swap

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a configured Provider.
type Factory func() (Provider, error)

// Registry is a name-keyed provider factory. Provider selection happens
// once at startup; an unknown name is a configuration error, never a
// silent default.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func (r *Registry) Register(name string, factory Factory) {
	r.factories[strings.ToLower(name)] = factory
}

func (r *Registry) New(name string) (Provider, error) {
	factory, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported trading provider: %s (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return factory()
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
