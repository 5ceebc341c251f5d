// Package module defines Module: a named, ordered collection of gates
// sharing a regulatory domain (FCA financial promotions, UK GDPR, and so
// on). Modules are the unit the registry constructs lazily and the unit
// a caller selects by ID when requesting validation.
package module

import (
	"fmt"

	"github.com/ukcompliance/complianceengine/internal/gate"
)

// Module is a named, ordered set of gates covering one regulatory
// domain. Gate order is preserved in Gates and determines finding
// ordering within the module's contribution to a result.
type Module struct {
	// ID identifies this module, e.g. "fca_uk", "gdpr_uk".
	ID string

	// Name is a short human-readable label for display and audit.
	Name string

	// Description summarizes the regulatory domain this module checks.
	Description string

	// Gates is this module's ordered rule set. Two gates in the same
	// module must not share a GateID.
	Gates []gate.Gate
}

// Validate reports a non-nil error if Gates contains a duplicate
// (ModuleID, GateID) pair, or a gate whose ModuleID does not match ID.
func (m Module) Validate() error {
	seen := make(map[string]struct{}, len(m.Gates))
	for _, g := range m.Gates {
		if g.ModuleID() != m.ID {
			return fmt.Errorf("module %q: gate %q declares module_id %q", m.ID, g.GateID(), g.ModuleID())
		}
		if _, dup := seen[g.GateID()]; dup {
			return fmt.Errorf("module %q: duplicate gate_id %q", m.ID, g.GateID())
		}
		seen[g.GateID()] = struct{}{}
	}
	return nil
}

// GateIDs returns this module's gate IDs in declaration order.
func (m Module) GateIDs() []string {
	ids := make([]string, len(m.Gates))
	for i, g := range m.Gates {
		ids[i] = g.GateID()
	}
	return ids
}
