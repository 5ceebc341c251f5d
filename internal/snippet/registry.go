// Package snippet implements the static snippet catalogue and the
// deterministic applier that turns a snippet plus resolved variables
// into document text: the corrective half of the engine, consulted by
// the synthesis loop whenever a gate fails.
package snippet

import "fmt"

// InsertionPoint selects where an applied snippet's rendered text goes.
type InsertionPoint string

const (
	InsertionPrepend InsertionPoint = "prepend"
	InsertionAppend  InsertionPoint = "append"
	InsertionSection InsertionPoint = "section"
)

// Snippet is one pre-approved corrective text fragment, keyed by the
// (module_id, gate_id) of the failure it addresses.
type Snippet struct {
	ID             string
	ModuleID       string
	GateID         string
	Template       string
	Defaults       map[string]string
	InsertionPoint InsertionPoint
	// SectionHeader is required when InsertionPoint is InsertionSection:
	// the heading line the applier looks for (or creates).
	SectionHeader string
}

func key(moduleID, gateID string) string { return moduleID + "\x00" + gateID }

// Registry is the static catalogue loaded at startup. Registration
// conflicts are startup errors, not runtime ones: by the time a
// Registry is in use its key space is fixed.
type Registry struct {
	byKey     map[string]Snippet
	overrides map[string]bool
}

// NewRegistry creates an empty snippet Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Snippet), overrides: make(map[string]bool)}
}

// Register adds s to the catalogue. A duplicate (module_id, gate_id) is
// an error unless allowOverride is true, in which case the later
// registration replaces the earlier one.
func (r *Registry) Register(s Snippet, allowOverride bool) error {
	k := key(s.ModuleID, s.GateID)
	if _, exists := r.byKey[k]; exists && !allowOverride {
		return fmt.Errorf("snippet: duplicate registration for (%s, %s)", s.ModuleID, s.GateID)
	}
	r.byKey[k] = s
	return nil
}

// Lookup returns the snippet registered for (moduleID, gateID), or
// ok=false if none exists.
func (r *Registry) Lookup(moduleID, gateID string) (Snippet, bool) {
	s, ok := r.byKey[key(moduleID, gateID)]
	return s, ok
}

// All returns every registered snippet, for audit enumeration. Order is
// not significant.
func (r *Registry) All() []Snippet {
	out := make([]Snippet, 0, len(r.byKey))
	for _, s := range r.byKey {
		out = append(out, s)
	}
	return out
}
