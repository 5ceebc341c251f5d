package tax

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

func TestHMRCDisclaimerGate_FailsWhenAbsent(t *testing.T) {
	g := hmrcDisclaimerGate{}
	f := g.Check("Your estimated tax liability for this year is 4,200.", "tax_document")
	assert.Equal(t, finding.StatusFail, f.Status)
}

func TestHMRCDisclaimerGate_PassesWhenStated(t *testing.T) {
	g := hmrcDisclaimerGate{}
	f := g.Check("This does not constitute tax advice; see HMRC guidance.", "tax_document")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestNotFinancialAdviceGate_PassesViaHMRCDisclaimerSideEffect(t *testing.T) {
	g := notFinancialAdviceGate{}
	text := "This document does not constitute tax advice. Consult HMRC guidance or a qualified tax adviser before acting on it."
	f := g.Check(text, "tax_document")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestVATNumberFormatGate_NotApplicableWithoutVATMention(t *testing.T) {
	g := vatNumberFormatGate{}
	f := g.Check("Your income tax return is due by 31 January.", "tax_document")
	assert.Equal(t, finding.StatusNotApplicable, f.Status)
}

func TestVATNumberFormatGate_PassesOnValidFormat(t *testing.T) {
	g := vatNumberFormatGate{}
	f := g.Check("Our VAT registration number is GB123456789.", "tax_document")
	assert.Equal(t, finding.StatusPass, f.Status)
}

func TestVATNumberFormatGate_FailsOnMalformedNumber(t *testing.T) {
	g := vatNumberFormatGate{}
	f := g.Check("Our VAT registration number is 123-456.", "tax_document")
	assert.Equal(t, finding.StatusFail, f.Status)
}

func TestGates_NotRelevantOutsideTaxDocs(t *testing.T) {
	assert.False(t, hmrcDisclaimerGate{}.IsRelevant("text", "nda"))
}
