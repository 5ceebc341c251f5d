package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/finding"
)

type fakeGate struct {
	moduleID, gateID string
	checkFn          func(text string) finding.Finding
}

func (g fakeGate) ModuleID() string                          { return g.moduleID }
func (g fakeGate) GateID() string                             { return g.gateID }
func (g fakeGate) LegalSource() string                        { return "test" }
func (g fakeGate) IsRelevant(text, documentType string) bool  { return true }
func (g fakeGate) Check(text, documentType string) finding.Finding {
	return g.checkFn(text)
}

func findsWord(word string) func(text string) finding.Finding {
	return func(text string) finding.Finding {
		idx := strings.Index(text, word)
		if idx < 0 {
			return finding.Finding{ModuleID: "m", GateID: "g", Status: finding.StatusPass}
		}
		return finding.Finding{
			ModuleID: "m", GateID: "g", Status: finding.StatusFail, Message: "found " + word,
			Spans: []finding.Span{{Start: idx, End: idx + len(word), Kind: "match"}},
		}
	}
}

func TestRunAll_MergesAcrossChunksInOrder(t *testing.T) {
	text := strings.Repeat("x", 1000) + "TARGET" + strings.Repeat("y", 1000)
	chunks := Split(text, 1000, 100)
	require.Greater(t, len(chunks), 1)

	gates := []GateRef{{
		Gate:      fakeGate{moduleID: "m", gateID: "g", checkFn: findsWord("TARGET")},
		ModuleOrd: 0, GateOrd: 0,
	}}

	results := RunAll(context.Background(), chunks, gates, "contract", 2)

	var hits int
	for _, f := range results {
		if f.Status == finding.StatusFail {
			hits++
			require.Len(t, f.Spans, 1)
			assert.Equal(t, "TARGET", text[f.Spans[0].Start:f.Spans[0].End])
		}
	}
	assert.GreaterOrEqual(t, hits, 1)
}

func TestRunAll_DedupesIdenticalOverlapFindings(t *testing.T) {
	chunks := []Chunk{
		{GlobalStart: 0, Text: "AAAA MATCH BBBB", OverlapStart: 0},
		{GlobalStart: 5, Text: "MATCH BBBB CCCC", OverlapStart: 6},
	}

	gates := []GateRef{{
		Gate:      fakeGate{moduleID: "m", gateID: "g", checkFn: findsWord("MATCH")},
		ModuleOrd: 0, GateOrd: 0,
	}}

	results := RunAll(context.Background(), chunks, gates, "contract", 2)

	var matches int
	for _, f := range results {
		if f.Status == finding.StatusFail {
			matches++
		}
	}
	assert.Equal(t, 1, matches, "the second chunk's overlap-region duplicate should be dropped")
}

func TestRunAll_OrdersByModuleThenGateThenStart(t *testing.T) {
	chunks := []Chunk{{GlobalStart: 0, Text: "hello world", OverlapStart: 0}}
	gates := []GateRef{
		{Gate: fakeGate{moduleID: "b", gateID: "g2", checkFn: func(string) finding.Finding {
			return finding.Finding{ModuleID: "b", GateID: "g2", Status: finding.StatusFail, Message: "x", Spans: []finding.Span{{Start: 0, End: 1}}}
		}}, ModuleOrd: 1, GateOrd: 0},
		{Gate: fakeGate{moduleID: "a", gateID: "g1", checkFn: func(string) finding.Finding {
			return finding.Finding{ModuleID: "a", GateID: "g1", Status: finding.StatusFail, Message: "y", Spans: []finding.Span{{Start: 0, End: 1}}}
		}}, ModuleOrd: 0, GateOrd: 0},
	}

	results := RunAll(context.Background(), chunks, gates, "contract", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ModuleID)
	assert.Equal(t, "b", results[1].ModuleID)
}
