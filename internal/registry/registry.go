// Package registry provides a lazily-constructed, thread-safe registry
// of compliance modules. A Builder is registered per module ID up
// front; the module itself is only constructed (its gates built, its
// pattern sets compiled) the first time a caller asks for it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ukcompliance/complianceengine/internal/logutil"
	"github.com/ukcompliance/complianceengine/internal/module"
)

// Builder constructs a Module on first use. Builders must be safe to
// call exactly once; the Registry guarantees that.
type Builder func() (module.Module, error)

// Registry holds registered module builders and caches constructed
// modules for the process lifetime.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	built    map[string]module.Module
	errs     map[string]error
	disabled map[string]bool
	logger   logutil.LoggerInterface
}

// NewRegistry creates an empty Registry with initialized maps.
func NewRegistry(logger logutil.LoggerInterface) *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		built:    make(map[string]module.Module),
		errs:     make(map[string]error),
		disabled: make(map[string]bool),
		logger:   logger,
	}
}

// Disable marks moduleID unavailable: Get returns an error for it and it
// is excluded from ListAvailable, without losing its registered builder.
func (r *Registry) Disable(moduleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[moduleID] = true
}

// Enable reverses a prior Disable.
func (r *Registry) Enable(moduleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.disabled, moduleID)
}

// ListAvailable returns the sorted IDs of registered, enabled modules.
func (r *Registry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.builders))
	for id := range r.builders {
		if !r.disabled[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Register declares moduleID's builder. Registering the same ID twice
// overwrites the prior builder and invalidates any cached construction
// for that ID, so tests can swap in a fake builder.
func (r *Registry) Register(moduleID string, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[moduleID] = build
	delete(r.built, moduleID)
	delete(r.errs, moduleID)
}

// Get returns the module registered under moduleID, constructing it on
// first use and validating its gate set. Subsequent calls return the
// same cached Module without rebuilding it.
func (r *Registry) Get(moduleID string) (module.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled[moduleID] {
		return module.Module{}, fmt.Errorf("registry: module %q is disabled", moduleID)
	}
	if m, ok := r.built[moduleID]; ok {
		return m, nil
	}
	if err, ok := r.errs[moduleID]; ok {
		return module.Module{}, err
	}

	build, ok := r.builders[moduleID]
	if !ok {
		err := fmt.Errorf("registry: unknown module %q", moduleID)
		r.errs[moduleID] = err
		return module.Module{}, err
	}

	if r.logger != nil {
		r.logger.Debug("constructing compliance module %q", moduleID)
	}

	m, err := build()
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		r.errs[moduleID] = fmt.Errorf("registry: building module %q: %w", moduleID, err)
		return module.Module{}, r.errs[moduleID]
	}

	r.built[moduleID] = m
	return m, nil
}

// GetAll resolves every moduleID in order, stopping at the first error.
func (r *Registry) GetAll(moduleIDs []string) ([]module.Module, error) {
	modules := make([]module.Module, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		m, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// IDs returns every registered module ID in sorted order, regardless of
// whether it has been constructed yet.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.builders))
	for id := range r.builders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
