package module

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/compozy/modhost/engine/core"
)

type entry struct {
	desc    *Descriptor
	version *semver.Version
}

// Registry stores module descriptors keyed by case-insensitive ID.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a copy of d. It fails on an empty ID, an invalid version, a
// duplicate ID or a frozen registry.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return core.NewError(
			fmt.Errorf("module %q registered after startup", d.ID),
			core.CodeInvalidState,
			map[string]any{"module": d.ID},
		)
	}
	key := strings.ToLower(strings.TrimSpace(d.ID))
	if key == "" {
		return core.Errorf(core.CodeConfiguration, "module ID is required")
	}
	version, err := semver.NewVersion(d.Version)
	if err != nil {
		return core.NewError(
			fmt.Errorf("module %s: invalid version %q: %w", d.ID, d.Version, err),
			core.CodeConfiguration,
			map[string]any{"module": d.ID},
		)
	}
	if existing, dup := r.entries[key]; dup {
		return core.NewError(
			fmt.Errorf("module %q is already registered", d.ID),
			core.CodeConfiguration,
			map[string]any{"module": d.ID, "existing": existing.desc.Name},
		)
	}
	desc := d
	r.entries[key] = &entry{desc: &desc, version: version}
	r.order = append(r.order, key)
	return nil
}

// MustRegister is Register for package init functions.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup finds a module by ID, case-insensitively.
func (r *Registry) Lookup(id string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, false
	}
	return e.desc, true
}

// All returns the modules in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].desc)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Validate checks every Requires constraint against the registered
// versions.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		e := r.entries[key]
		for dep, raw := range e.desc.Requires {
			target, ok := r.entries[strings.ToLower(dep)]
			if !ok {
				return core.NewError(
					fmt.Errorf("module %s requires %s, which is not registered", e.desc.ID, dep),
					core.CodeConfiguration,
					map[string]any{"module": e.desc.ID, "requires": dep},
				)
			}
			constraint, err := semver.NewConstraint(raw)
			if err != nil {
				return core.NewError(
					fmt.Errorf("module %s: invalid constraint %q on %s: %w", e.desc.ID, raw, dep, err),
					core.CodeConfiguration,
					map[string]any{"module": e.desc.ID},
				)
			}
			if !constraint.Check(target.version) {
				return core.NewError(
					fmt.Errorf("module %s requires %s %s, found %s", e.desc.ID, dep, raw, target.version),
					core.CodeConfiguration,
					map[string]any{"module": e.desc.ID, "requires": dep},
				)
			}
		}
	}
	return nil
}

// Default is the registry module packages register into from init.
var Default = NewRegistry()

// Register adds d to the Default registry and panics on error.
func Register(d Descriptor) {
	Default.MustRegister(d)
}
