package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/flo/pkg/flow"
)

// ErrSpecNotFound is returned when no spec is registered under a name.
var ErrSpecNotFound = errors.New("spec not found")

// Registry manages the node specs a process knows how to run.
// Child processes resolve node descriptors against it.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*flow.Spec
}

var _ flow.SpecSource = (*Registry)(nil)

// NewRegistry creates a registry holding specs.
func NewRegistry(specs ...*flow.Spec) *Registry {
	r := &Registry{
		specs: make(map[string]*flow.Spec),
	}
	for _, s := range specs {
		r.Register(s)
	}
	return r
}

// Register adds a spec under its name.
// If a spec with the same name exists, it is overwritten.
func (r *Registry) Register(spec *flow.Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Name] = spec
}

// Get looks up a spec by name.
func (r *Registry) Get(name string) (*flow.Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, name)
	}
	return spec, nil
}

// Names returns the registered spec names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
