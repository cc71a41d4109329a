package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// Factory builds one effect instance on ctx.
type Factory func(ctx *graph.Context) (graph.Node, error)

// Registry maps effect names to their factories.
type Registry struct {
	factories map[Name]Factory
}

var errDuplicateEffect = errors.New("duplicate effect")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Name]Factory)}
}

// Register adds a factory for name.
func (r *Registry) Register(name Name, factory Factory) error {
	if _, err := ParseName(string(name)); err != nil {
		return err
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name Name, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for name, or nil.
func (r *Registry) Lookup(name Name) Factory {
	return r.factories[name]
}

// Registered returns the registered names in pool order.
func (r *Registry) Registered() []Name {
	var out []Name

	for _, n := range names {
		if _, ok := r.factories[n]; ok {
			out = append(out, n)
		}
	}

	return out
}
