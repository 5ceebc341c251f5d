package scottish

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
	assert.Len(t, m.Gates, 3)
}

func TestScenarioS3_FlagsFreeholdAndLandRegistry(t *testing.T) {
	text := "The freehold shall be transferred via the Land Registry."

	heritable := heritablePropertyTerminologyGate{}
	require.True(t, heritable.IsRelevant(text, "property_contract"))
	f1 := heritable.Check(text, "property_contract")
	assert.Equal(t, finding.StatusFail, f1.Status)
	require.Len(t, f1.Spans, 1)
	assert.Equal(t, "freehold", text[f1.Spans[0].Start:f1.Spans[0].End])

	registry := registersOfScotlandTerminologyGate{}
	f2 := registry.Check(text, "property_contract")
	assert.Equal(t, finding.StatusFail, f2.Status)
	require.Len(t, f2.Spans, 1)
	assert.Equal(t, "Land Registry", text[f2.Spans[0].Start:f2.Spans[0].End])
}

func TestScenarioS3_ConvergesAfterTerminologyNote(t *testing.T) {
	snippets := snippet.NewRegistry()
	for _, s := range Snippets() {
		require.NoError(t, snippets.Register(s, false))
	}

	m, err := Build()
	require.NoError(t, err)

	current := "The freehold shall be transferred via the Land Registry."
	var iterations int
	for iterations = 0; iterations < 5; iterations++ {
		var failing []finding.Finding
		for _, g := range m.Gates {
			f := gate.RunWithBudget(context.Background(), g, current, "property_contract", gate.DefaultBudget)
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

	assert.Contains(t, current, "heritable property")
	assert.Contains(t, current, "Registers of Scotland")
}

func TestHeritablePropertyGate_PassesWhenNoEnglishTerms(t *testing.T) {
	g := heritablePropertyTerminologyGate{}
	f := g.Check("This heritable property transfer follows Scots law.", "property_contract")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestScottishNoticePeriodGate_OnlyRelevantForHRContracts(t *testing.T) {
	g := scottishNoticePeriodGate{}
	assert.False(t, g.IsRelevant("text", "property_contract"))
	assert.True(t, g.IsRelevant("text", "hr_contract"))
}
