// Package gate defines the Gate contract: a single detection rule with
// identity (module_id, gate_id), a cheap relevance pre-filter, and a
// pure, deterministic detection step. Gates are composed, not
// decorated: timing and timeout enforcement live in RunWithBudget, not
// inside the gate implementation itself.
package gate

import (
	"context"
	"time"

	"github.com/ukcompliance/complianceengine/internal/finding"
)

// DefaultBudget is the default per-gate time budget from the spec.
const DefaultBudget = 50 * time.Millisecond

// Gate is a single compliance rule. Implementations must be pure: same
// inputs produce identical findings, including span offsets, every time,
// and Check must never mutate shared state.
type Gate interface {
	// ModuleID and GateID together form this gate's global identity.
	ModuleID() string
	GateID() string

	// LegalSource documents the fixed severity policy backing this
	// gate's findings, for display in the Finding and for audit.
	LegalSource() string

	// IsRelevant is a cheap context pre-filter. When it returns false,
	// the gate is skipped entirely and must not run Check.
	IsRelevant(text, documentType string) bool

	// Check performs detection. It must be pure and deterministic: the
	// same (text, documentType) pair always yields the same Finding,
	// including span offsets.
	Check(text, documentType string) finding.Finding
}

// RunWithBudget runs g.Check under a fixed time budget, and returns a
// not_applicable finding if g is not relevant. A Check that exceeds
// budget produces a warning "gate timeout" finding rather than the
// gate's own result; a gate timeout is never a failure for synthesis
// purposes - no snippet is selected in response to it.
//
// RunWithBudget never mutates shared state and is safe to call
// concurrently for independent gates (e.g. from the chunker's worker
// pool), since each call only touches its own local channel.
func RunWithBudget(ctx context.Context, g Gate, text, documentType string, budget time.Duration) finding.Finding {
	if !g.IsRelevant(text, documentType) {
		return finding.NotApplicable(g.ModuleID(), g.GateID())
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	type result struct{ f finding.Finding }
	done := make(chan result, 1)
	go func() {
		done <- result{f: g.Check(text, documentType)}
	}()

	select {
	case r := <-done:
		return r.f
	case <-time.After(budget):
		return finding.Timeout(g.ModuleID(), g.GateID())
	case <-ctx.Done():
		return finding.Timeout(g.ModuleID(), g.GateID())
	}
}
