package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/cache"
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/registry"
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

func newTestRegistry() *registry.Registry {
	reg := registry.NewRegistry(nil)
	reg.Register("fca_uk", func() (module.Module, error) {
		return module.Module{
			ID: "fca_uk",
			Gates: []gate.Gate{
				fakeGate{moduleID: "fca_uk", gateID: "risk_warning", checkFn: func(text string) finding.Finding {
					return finding.Finding{
						ModuleID: "fca_uk", GateID: "risk_warning",
						Status: finding.StatusFail, Severity: finding.SeverityHigh,
						Message: "missing risk warning",
					}
				}},
			},
		}, nil
	})
	return reg
}

func TestEngine_Validate_RunsGatesAndAggregates(t *testing.T) {
	e := New(newTestRegistry(), nil, nil, nil)
	result, err := e.Validate(context.Background(), "some promotional text", "financial_promotion", []string{"fca_uk"})
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	assert.Equal(t, finding.StatusFail, result.Findings[0].Status)
	assert.Equal(t, RiskHigh, result.OverallRisk)
	assert.False(t, result.CacheHit)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestEngine_Validate_CacheHitOnSecondCall(t *testing.T) {
	store := cache.NewLocal(0, 0)
	e := New(newTestRegistry(), store, nil, nil)

	first, err := e.Validate(context.Background(), "text", "financial_promotion", []string{"fca_uk"})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := e.Validate(context.Background(), "text", "financial_promotion", []string{"fca_uk"})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestEngine_Validate_UnknownModuleErrors(t *testing.T) {
	e := New(newTestRegistry(), nil, nil, nil)
	_, err := e.Validate(context.Background(), "text", "financial_promotion", []string{"missing"})
	assert.Error(t, err)
}

func TestOverallRisk_HighestSeverityWins(t *testing.T) {
	findings := []finding.Finding{
		{Status: finding.StatusFail, Severity: finding.SeverityLow},
		{Status: finding.StatusFail, Severity: finding.SeverityCritical},
		{Status: finding.StatusFail, Severity: finding.SeverityMedium},
	}
	assert.Equal(t, RiskCritical, OverallRisk(findings))
}

func TestOverallRisk_NoFailsIsLow(t *testing.T) {
	findings := []finding.Finding{{Status: finding.StatusPass}}
	assert.Equal(t, RiskLow, OverallRisk(findings))
}

func TestFingerprint_StableAndOrderIndependentOfModuleList(t *testing.T) {
	a := Fingerprint("text", "nda", []string{"gdpr_uk", "fca_uk"})
	b := Fingerprint("text", "nda", []string{"fca_uk", "gdpr_uk"})
	assert.Equal(t, a, b)
}

func TestFingerprint_DiffersOnTextChange(t *testing.T) {
	a := Fingerprint("text one", "nda", []string{"fca_uk"})
	b := Fingerprint("text two", "nda", []string{"fca_uk"})
	assert.NotEqual(t, a, b)
}

func TestNormalize_CRLFAndTrailingWhitespace(t *testing.T) {
	got := Normalize("line one \r\nline two\t\r\n")
	assert.Equal(t, "line one\nline two\n", got)
}
