package chunk

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
)

// DefaultWorkers is the default bounded parallelism for running gates
// across chunks.
const DefaultWorkers = 4

// GateRef pairs a gate with its module's declaration order, so the
// merge step can reproduce the non-chunked path's ordering guarantee:
// (module_id order, gate_id order, span.start).
type GateRef struct {
	Gate      gate.Gate
	ModuleOrd int
	GateOrd   int
}

type located struct {
	f          finding.Finding
	moduleOrd  int
	gateOrd    int
	start, end int
	overlapEnd int
}

// RunAll runs every gate in gates against every chunk, bounded by at
// most workers concurrent chunk evaluations, deduplicates findings
// whose spans lie in a chunk's overlap region and recur identically in
// the preceding chunk, and returns the merged findings in the same
// order a non-chunked run would produce: module order, then gate
// order, then ascending span start.
func RunAll(ctx context.Context, chunks []Chunk, gates []GateRef, documentType string, workers int) []finding.Finding {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	perChunk := make([][]located, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			var out []located
			for _, gr := range gates {
				f := gate.RunWithBudget(gctx, gr.Gate, c.Text, documentType, gate.DefaultBudget)
				if f.Status == finding.StatusNotApplicable {
					continue
				}
				shifted := shiftFinding(f, c.GlobalStart)
				start, end := spanRange(shifted)
				out = append(out, located{
					f:          shifted,
					moduleOrd:  gr.ModuleOrd,
					gateOrd:    gr.GateOrd,
					start:      start,
					end:        end,
					overlapEnd: c.GlobalStart + c.OverlapStart,
				})
			}
			perChunk[i] = out
			return nil
		})
	}
	_ = g.Wait()

	var all []located
	for _, chunkFindings := range perChunk {
		all = append(all, chunkFindings...)
	}

	deduped := dedupeOverlap(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.moduleOrd != b.moduleOrd {
			return a.moduleOrd < b.moduleOrd
		}
		if a.gateOrd != b.gateOrd {
			return a.gateOrd < b.gateOrd
		}
		return a.start < b.start
	})

	out := make([]finding.Finding, len(deduped))
	for i, d := range deduped {
		out[i] = d.f
	}
	return out
}

// shiftFinding translates every span in f by globalStart.
func shiftFinding(f finding.Finding, globalStart int) finding.Finding {
	if len(f.Spans) == 0 {
		return f
	}
	shifted := f
	shifted.Spans = make([]finding.Span, len(f.Spans))
	for i, s := range f.Spans {
		shifted.Spans[i] = s.Shift(globalStart)
	}
	return shifted
}

// dedupeOverlap drops a finding when it lies entirely within its
// chunk's leading overlap window and an earlier chunk already produced
// an identical (module_id, gate_id, start, end, message) finding.
func dedupeOverlap(items []located) []located {
	type key struct {
		moduleID, gateID, message string
		start, end                int
	}
	seen := make(map[key]bool)
	out := make([]located, 0, len(items))

	for _, it := range items {
		k := key{moduleID: it.f.ModuleID, gateID: it.f.GateID, message: it.f.Message, start: it.start, end: it.end}

		inOverlap := len(it.f.Spans) > 0 && it.end <= it.overlapEnd
		if inOverlap && seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

func spanRange(f finding.Finding) (int, int) {
	if len(f.Spans) == 0 {
		return 0, 0
	}
	start, end := f.Spans[0].Start, f.Spans[0].End
	for _, s := range f.Spans[1:] {
		if s.Start < start {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	return start, end
}
