package nda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/finding"
)

func TestBuild_ValidatesOK(t *testing.T) {
	m, err := Build()
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
	assert.Len(t, m.Gates, 3)
}

func TestReasonableDurationGate_FailsWhenAbsent(t *testing.T) {
	g := reasonableDurationGate{}
	f := g.Check("The parties agree to keep all information confidential.", "nda")
	assert.Equal(t, finding.StatusFail, f.Status)
}

func TestReasonableDurationGate_PassesWhenStated(t *testing.T) {
	g := reasonableDurationGate{}
	f := g.Check("This confidentiality obligation applies for 2 years from disclosure.", "nda")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestPermittedDisclosureGate_PassesWhenCarvedOut(t *testing.T) {
	g := permittedDisclosureGate{}
	f := g.Check("Disclosure required by law is not a breach of this agreement.", "confidentiality_agreement")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestGoverningLawGate_FailsWhenAbsent(t *testing.T) {
	g := governingLawGate{}
	f := g.Check("This agreement concerns confidential information only.", "nda")
	assert.Equal(t, finding.StatusFail, f.Status)
}

func TestGates_NotRelevantOutsideNDAs(t *testing.T) {
	assert.False(t, reasonableDurationGate{}.IsRelevant("text", "employment_contract"))
}
