// Package synthesis implements the deterministic, AI-free retry loop
// that maps failed gates to pre-approved snippets, applies them, and
// re-validates until every gate passes or the iteration budget is
// exhausted. No step in this package calls an LLM: the retry loop's
// determinism is a hard contract, not a default.
package synthesis

import (
	"context"
	"sort"
	"time"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
	"github.com/ukcompliance/complianceengine/internal/engine"
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// DefaultMaxIterations is the spec's default retry budget.
const DefaultMaxIterations = 5

// AppliedSnippet records one snippet application within a synthesis run.
type AppliedSnippet struct {
	Iteration int
	ModuleID  string
	GateID    string
	SnippetID string
	Variables map[string]string
	Resolved  bool
	Reason    string // set when Resolved is false: "no_snippet" or "unresolved_variable"
}

// Outcome is the synthesis engine's final result.
type Outcome struct {
	Text       string
	Iterations int
	Applied    []AppliedSnippet
	Final      engine.ValidationResult
	Success    bool
	Reason     string
}

// severityRank orders severities for the spec's failure sort:
// (severity desc, module order, gate order).
var severityRank = map[finding.Severity]int{
	finding.SeverityCritical: 0,
	finding.SeverityHigh:     1,
	finding.SeverityMedium:   2,
	finding.SeverityLow:      3,
	finding.SeverityInfo:     4,
}

// Engine is the subset of engine.Engine's behaviour synthesis needs:
// a fresh, cache-bypassing validate call. Synthesis never consults the
// result cache for intermediate states, because their fingerprints are
// ephemeral - but the final convergence check may still go through the
// normal cached path if the caller's engine has caching enabled, since
// by then current equals a real candidate document like any other.
type Engine interface {
	Validate(ctx context.Context, text, documentType string, activeModules []string) (engine.ValidationResult, error)
}

// Synthesizer runs the bounded retry loop against a snippet registry.
type Synthesizer struct {
	Engine        Engine
	Snippets      *snippet.Registry
	MaxIterations int
	Deadline      time.Duration
	Emitter       auditlog.Emitter
	now           func() time.Time
}

// New constructs a Synthesizer with the spec's default iteration budget.
// emitter may be nil, in which case no audit events are emitted.
func New(eng Engine, snippets *snippet.Registry, emitter auditlog.Emitter) *Synthesizer {
	return &Synthesizer{Engine: eng, Snippets: snippets, MaxIterations: DefaultMaxIterations, Emitter: emitter, now: time.Now}
}

// Run executes the synthesis loop against text until every gate
// passes, no more snippets can be applied, or MaxIterations is reached.
func (s *Synthesizer) Run(ctx context.Context, text, documentType string, activeModules []string) Outcome {
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	current := text
	var applied []AppliedSnippet
	var lastResult engine.ValidationResult
	appliedThisCall := make(map[string]bool)

	deadlineAt := time.Time{}
	if s.Deadline > 0 {
		deadlineAt = s.nowFunc().Add(s.Deadline)
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		if !deadlineAt.IsZero() && s.nowFunc().After(deadlineAt) {
			return Outcome{Text: current, Iterations: iter, Applied: applied, Final: lastResult, Success: false, Reason: "deadline"}
		}

		result, err := s.Engine.Validate(ctx, current, documentType, activeModules)
		if err != nil {
			return Outcome{Text: current, Iterations: iter, Applied: applied, Final: lastResult, Success: false, Reason: "validate_error: " + err.Error()}
		}
		lastResult = result

		failures := failingFindings(result.Findings)
		if len(failures) == 0 {
			if s.Emitter != nil {
				s.Emitter.Emit(auditlog.Event{
					Ts: s.nowFunc(), EventType: auditlog.EventSynthesisConverged,
					Fingerprint: result.Fingerprint,
					Detail:      map[string]interface{}{"iterations": iter},
				})
			}
			return Outcome{Text: current, Iterations: iter, Applied: applied, Final: result, Success: true, Reason: "converged"}
		}

		progressed := false
		for _, f := range failures {
			snip, ok := s.Snippets.Lookup(f.ModuleID, f.GateID)
			if !ok {
				applied = append(applied, AppliedSnippet{
					Iteration: iter, ModuleID: f.ModuleID, GateID: f.GateID, Resolved: false, Reason: "no_snippet",
				})
				continue
			}

			guardKey := snip.ID + "\x00" + f.ModuleID + "\x00" + f.GateID
			if appliedThisCall[guardKey] {
				continue
			}

			variables := make(map[string]string, len(f.Details))
			for k, v := range f.Details {
				variables[k] = v
			}

			res, err := snippet.Apply(current, snip, variables)
			if err != nil {
				applied = append(applied, AppliedSnippet{
					Iteration: iter, ModuleID: f.ModuleID, GateID: f.GateID, SnippetID: snip.ID,
					Variables: variables, Resolved: false, Reason: "unresolved_variable",
				})
				continue
			}

			current = res.Text
			appliedThisCall[guardKey] = true
			progressed = true
			applied = append(applied, AppliedSnippet{
				Iteration: iter, ModuleID: f.ModuleID, GateID: f.GateID, SnippetID: snip.ID,
				Variables: variables, Resolved: true,
			})
			if s.Emitter != nil {
				s.Emitter.Emit(auditlog.Event{
					Ts: s.nowFunc(), EventType: auditlog.EventSnippetApplied,
					ModuleID: f.ModuleID, GateID: f.GateID, SnippetID: snip.ID,
					Detail: map[string]interface{}{"iteration": iter},
				})
			}
		}

		// No failure was newly resolved this pass - every remaining failure
		// either has no registered snippet, failed variable resolution, or
		// was already tried and blocked by the idempotence guard. Looping
		// further would just re-validate identical text, so stop now
		// instead of burning the rest of the iteration budget.
		if !progressed {
			iter++
			if s.Emitter != nil {
				s.Emitter.Emit(auditlog.Event{
					Ts: s.nowFunc(), EventType: auditlog.EventSynthesisExhausted,
					Detail: map[string]interface{}{"iterations": iter, "reason": "unresolved"},
				})
			}
			return Outcome{Text: current, Iterations: iter, Applied: applied, Final: result, Success: false, Reason: "unresolved"}
		}
	}

	if s.Emitter != nil {
		s.Emitter.Emit(auditlog.Event{
			Ts: s.nowFunc(), EventType: auditlog.EventSynthesisExhausted,
			Detail: map[string]interface{}{"iterations": iter, "reason": "max_iterations"},
		})
	}
	return Outcome{Text: current, Iterations: iter, Applied: applied, Final: lastResult, Success: false, Reason: "max_iterations"}
}

func (s *Synthesizer) nowFunc() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// failingFindings extracts and orders fail-status findings the way the
// spec requires: severity descending, preserving their incoming
// (module order, gate order) relative order as a stable tiebreak.
func failingFindings(findings []finding.Finding) []finding.Finding {
	var out []finding.Finding
	for _, f := range findings {
		if f.Status == finding.StatusFail {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank[out[i].Severity] < severityRank[out[j].Severity]
	})
	return out
}
