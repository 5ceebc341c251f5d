package fca

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

func TestBuild_ValidatesOK(t *testing.T) {
	m, err := Build()
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
	assert.Len(t, m.Gates, 4)
}

func TestFairClearNotMisleading_FlagsGuaranteedReturns(t *testing.T) {
	text := "Our fund delivers guaranteed high returns."
	g := fairClearNotMisleadingGate{}
	require.True(t, g.IsRelevant(text, "financial_promotion"))

	f := g.Check(text, "financial_promotion")
	assert.Equal(t, finding.StatusFail, f.Status)
	assert.Equal(t, finding.SeverityCritical, f.Severity)
	require.Len(t, f.Spans, 1)
	assert.Equal(t, "guaranteed high returns", text[f.Spans[0].Start:f.Spans[0].End])
}

func TestFairClearNotMisleading_PassesWhenRiskWarningPresent(t *testing.T) {
	text := "Our fund delivers guaranteed high returns. Capital is at risk."
	g := fairClearNotMisleadingGate{}
	f := g.Check(text, "financial_promotion")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestRiskWarningGate_FailsWhenAbsent(t *testing.T) {
	g := riskWarningGate{}
	f := g.Check("Our fund delivers guaranteed high returns.", "financial_promotion")
	assert.Equal(t, finding.StatusFail, f.Status)
	assert.Equal(t, finding.SeverityHigh, f.Severity)
}

func TestRiskWarningGate_NotRelevantOutsidePromotions(t *testing.T) {
	g := riskWarningGate{}
	assert.False(t, g.IsRelevant("some text", "privacy_notice"))
}

func TestFOSSignpostingGate_FailsWhenAbsent(t *testing.T) {
	g := fosSignpostingGate{}
	f := g.Check("no complaints body mentioned here", "financial_promotion")
	assert.Equal(t, finding.StatusFail, f.Status)
}

func TestFOSSignpostingGate_PassesWhenPresent(t *testing.T) {
	g := fosSignpostingGate{}
	f := g.Check("Complain to the Financial Ombudsman Service if unhappy.", "financial_promotion")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestScenarioS1_ConvergesWithinTwoIterations(t *testing.T) {
	snippets := snippet.NewRegistry()
	for _, s := range Snippets() {
		require.NoError(t, snippets.Register(s, false))
	}

	m, err := Build()
	require.NoError(t, err)

	text := "Our fund delivers guaranteed high returns."
	var iterations int
	current := text
	var findings []finding.Finding
	for iterations = 0; iterations < 5; iterations++ {
		findings = nil
		for _, g := range m.Gates {
			f := gate.RunWithBudget(context.Background(), g, current, "financial_promotion", gate.DefaultBudget)
			if f.Status != finding.StatusNotApplicable {
				findings = append(findings, f)
			}
		}
		var failing []finding.Finding
		for _, f := range findings {
			if f.Status == finding.StatusFail {
				failing = append(failing, f)
			}
		}
		if len(failing) == 0 {
			break
		}
		for _, f := range failing {
			s, ok := snippets.Lookup(f.ModuleID, f.GateID)
			if !ok {
				continue
			}
			res, err := snippet.Apply(current, s, nil)
			require.NoError(t, err)
			current = res.Text
		}
	}

	assert.LessOrEqual(t, iterations, 2)
	assert.Contains(t, current, "RISK WARNING")
	assert.Contains(t, current, "Financial Ombudsman Service")
}
