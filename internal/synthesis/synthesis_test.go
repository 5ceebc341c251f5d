package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/engine"
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// fakeEngine validates by checking whether "RISK WARNING" appears in
// the text; this is enough to exercise convergence without a real gate.
type fakeEngine struct {
	calls int
}

func (e *fakeEngine) Validate(ctx context.Context, text, documentType string, activeModules []string) (engine.ValidationResult, error) {
	e.calls++
	if strings.Contains(text, "RISK WARNING") {
		return engine.ValidationResult{Findings: nil}, nil
	}
	return engine.ValidationResult{
		Findings: []finding.Finding{
			{ModuleID: "fca_uk", GateID: "risk_warning", Status: finding.StatusFail, Severity: finding.SeverityHigh, Message: "missing risk warning"},
		},
	}, nil
}

func TestSynthesizer_ConvergesWhenSnippetFixesFailure(t *testing.T) {
	snippets := snippet.NewRegistry()
	require.NoError(t, snippets.Register(snippet.Snippet{
		ID: "risk-1", ModuleID: "fca_uk", GateID: "risk_warning",
		Template: "RISK WARNING", InsertionPoint: snippet.InsertionAppend,
	}, false))

	s := New(&fakeEngine{}, snippets, nil)
	outcome := s.Run(context.Background(), "Some promotional copy.", "financial_promotion", []string{"fca_uk"})

	assert.True(t, outcome.Success)
	assert.Equal(t, "converged", outcome.Reason)
	assert.Contains(t, outcome.Text, "RISK WARNING")
	require.Len(t, outcome.Applied, 1)
	assert.True(t, outcome.Applied[0].Resolved)
}

func TestSynthesizer_NoSnippetBreaksImmediately(t *testing.T) {
	snippets := snippet.NewRegistry() // empty: no snippet registered
	s := New(&fakeEngine{}, snippets, nil)
	s.MaxIterations = 2

	outcome := s.Run(context.Background(), "Some promotional copy.", "financial_promotion", []string{"fca_uk"})

	assert.False(t, outcome.Success)
	assert.Equal(t, "unresolved", outcome.Reason)
	assert.Equal(t, 1, outcome.Iterations)
	require.Len(t, outcome.Applied, 1)
	assert.False(t, outcome.Applied[0].Resolved)
	assert.Equal(t, "no_snippet", outcome.Applied[0].Reason)
}

func TestSynthesizer_IdempotenceGuardPreventsOscillation(t *testing.T) {
	snippets := snippet.NewRegistry()
	require.NoError(t, snippets.Register(snippet.Snippet{
		ID: "risk-1", ModuleID: "fca_uk", GateID: "risk_warning",
		Template: "", InsertionPoint: snippet.InsertionAppend, // renders to empty, so text never actually changes
	}, false))

	s := New(&fakeEngine{}, snippets, nil)
	s.MaxIterations = 3

	outcome := s.Run(context.Background(), "Some promotional copy.", "financial_promotion", []string{"fca_uk"})

	var appliedCount int
	for _, a := range outcome.Applied {
		if a.Resolved {
			appliedCount++
		}
	}
	assert.Equal(t, 1, appliedCount, "the idempotence guard should apply the same snippet for the same failure only once per call")
}

func TestSynthesizer_DeterministicAcrossRuns(t *testing.T) {
	snippets := snippet.NewRegistry()
	require.NoError(t, snippets.Register(snippet.Snippet{
		ID: "risk-1", ModuleID: "fca_uk", GateID: "risk_warning",
		Template: "RISK WARNING", InsertionPoint: snippet.InsertionAppend,
	}, false))

	s1 := New(&fakeEngine{}, snippets, nil)
	s2 := New(&fakeEngine{}, snippets, nil)

	o1 := s1.Run(context.Background(), "doc text", "financial_promotion", []string{"fca_uk"})
	o2 := s2.Run(context.Background(), "doc text", "financial_promotion", []string{"fca_uk"})

	assert.Equal(t, o1.Text, o2.Text)
	assert.Equal(t, len(o1.Applied), len(o2.Applied))
}
