// Package engine orchestrates a validation request: it resolves active
// modules from the registry, consults the result cache by fingerprint,
// delegates to the chunker for large documents, runs every gate in
// catalogue order, aggregates findings into a ValidationResult, and
// emits audit events for the outcome.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
	"github.com/ukcompliance/complianceengine/internal/cache"
	"github.com/ukcompliance/complianceengine/internal/chunk"
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/modules"
	"github.com/ukcompliance/complianceengine/internal/profiler"
	"github.com/ukcompliance/complianceengine/internal/registry"
)

// DefaultCacheTTL and DefaultChunkThreshold are the engine's spec
// defaults.
const (
	DefaultCacheTTL        = time.Hour
	DefaultChunkThreshold  = 50 * 1024
	DefaultChunkWorkers    = 4
	DefaultOverallDeadline = 30 * time.Second
)

// Engine ties the module registry, result cache, chunker, and audit
// emitter together into the single validate operation.
type Engine struct {
	Registry        *registry.Registry
	Cache           cache.Store
	Emitter         auditlog.Emitter
	Profiler        *profiler.Profiler
	CacheTTL        time.Duration
	ChunkThreshold  int
	ChunkWorkers    int
	OverallDeadline time.Duration
	now             func() time.Time
}

// New constructs an Engine with the spec's default tuning. Cache and
// Emitter may be nil; a nil Emitter degrades to auditlog.NoopEmitter, a
// nil Cache skips caching entirely.
func New(reg *registry.Registry, store cache.Store, emitter auditlog.Emitter, prof *profiler.Profiler) *Engine {
	if emitter == nil {
		emitter = auditlog.NewNoopEmitter()
	}
	if prof == nil {
		prof = profiler.New()
	}
	return &Engine{
		Registry:        reg,
		Cache:           store,
		Emitter:         emitter,
		Profiler:        prof,
		CacheTTL:        DefaultCacheTTL,
		ChunkThreshold:  DefaultChunkThreshold,
		ChunkWorkers:    DefaultChunkWorkers,
		OverallDeadline: DefaultOverallDeadline,
		now:             time.Now,
	}
}

// cacheNamespace is the fixed namespace the engine uses for validation
// results, per the spec's worked example.
const cacheNamespace = "validation"

// Validate runs the full orchestration described in the spec: cache
// lookup, chunk dispatch above threshold, per-module/per-gate
// execution, aggregation, cache store, and an audit event.
func (e *Engine) Validate(ctx context.Context, text, documentType string, activeModules []string) (ValidationResult, error) {
	m := e.Profiler.Start("engine.validate")
	defer m.Stop()

	if e.OverallDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.OverallDeadline)
		defer cancel()
	}

	fingerprint := Fingerprint(text, documentType, activeModules)

	if e.Cache != nil {
		if cached, ok := e.Cache.Get(cacheNamespace, fingerprint); ok {
			var result ValidationResult
			if err := json.Unmarshal(cached, &result); err == nil {
				result.CacheHit = true
				return result, nil
			}
		}
	}

	start := e.now()
	resolved, err := e.Registry.GetAll(activeModules)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("engine: resolving modules: %w", err)
	}
	orderedModules := catalogueOrder(resolved)

	findings, timedOut := e.runModules(ctx, text, documentType, orderedModules)

	result := ValidationResult{
		Fingerprint: fingerprint,
		Findings:    findings,
		OverallRisk: OverallRisk(findings),
		ElapsedMs:   e.now().Sub(start).Milliseconds(),
		CacheHit:    false,
	}
	if timedOut {
		result.Findings = append(result.Findings, finding.Finding{
			Status:  finding.StatusWarning,
			Message: "engine_timeout",
		})
		e.Emitter.Emit(auditlog.Event{
			Ts:          e.now(),
			EventType:   auditlog.EventGateTimeout,
			Fingerprint: fingerprint,
			Detail:      map[string]interface{}{"elapsed_ms": result.ElapsedMs},
		})
	}

	if e.Cache != nil {
		if blob, err := json.Marshal(result); err == nil {
			e.Cache.Set(cacheNamespace, fingerprint, blob, e.CacheTTL)
		}
	}

	e.Emitter.Emit(auditlog.Event{
		Ts:          e.now(),
		EventType:   auditlog.EventValidationCompleted,
		Fingerprint: fingerprint,
		Detail: map[string]interface{}{
			"elapsed_ms":   result.ElapsedMs,
			"cache_hit":    false,
			"overall_risk": string(result.OverallRisk),
			"counts":       severityCounts(findings),
		},
	})

	return result, nil
}

// runModules executes every gate of every module, delegating to the
// chunker when text exceeds ChunkThreshold. It returns the merged,
// unsorted findings and whether the overall deadline was hit.
func (e *Engine) runModules(ctx context.Context, text, documentType string, mods []module.Module) ([]finding.Finding, bool) {
	var refs []chunk.GateRef
	for modOrd, mod := range mods {
		for gateOrd, g := range mod.Gates {
			refs = append(refs, chunk.GateRef{Gate: g, ModuleOrd: modOrd, GateOrd: gateOrd})
		}
	}

	if len(text) > e.ChunkThreshold {
		chunks := chunk.Split(text, chunk.DefaultSize, chunk.DefaultOverlap)
		return chunk.RunAll(ctx, chunks, refs, documentType, e.ChunkWorkers), ctx.Err() != nil
	}

	var out []finding.Finding
	for _, r := range refs {
		select {
		case <-ctx.Done():
			return out, true
		default:
		}
		f := gate.RunWithBudget(ctx, r.Gate, text, documentType, gate.DefaultBudget)
		if f.Status == finding.StatusNotApplicable {
			continue
		}
		out = append(out, f)
	}
	return out, false
}

// catalogueOrder reorders resolved modules into the catalogue's
// registration order, independent of the order the caller listed them
// in (CLI flag order, request field order, and so on). This is what
// makes the finding list's ordering guarantee hold regardless of how
// activeModules was supplied. Any module absent from the catalogue
// (should not happen in practice) keeps its relative position after
// the catalogue-ordered ones.
func catalogueOrder(mods []module.Module) []module.Module {
	rank := make(map[string]int, len(mods))
	for i, id := range modules.IDs() {
		rank[id] = i
	}
	ordered := make([]module.Module, len(mods))
	copy(ordered, mods)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iok := rank[ordered[i].ID]
		rj, jok := rank[ordered[j].ID]
		if iok && jok {
			return ri < rj
		}
		return iok && !jok
	})
	return ordered
}

func severityCounts(findings []finding.Finding) map[string]int {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[string(f.Severity)]++
	}
	return counts
}
