// Package nda implements the nda_uk module: gates for confidentiality
// agreements (reasonable-duration clause, permitted-disclosure
// carve-outs, governing-law clause presence).
package nda

import (
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/patternlib"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// ModuleID identifies this module in the registry.
const ModuleID = "nda_uk"

const legalSource = "common law restraint of trade doctrine"

var library = patternlib.NewLibrary()

func init() {
	library.Register("duration_clause", func() (patternlib.Set, error) {
		return patternlib.Compile("duration_clause", []patternlib.Source{
			{Name: "years_duration", Regex: `\d+\s+years?`, Sample: "2 years"},
			{Name: "duration_label", Regex: `(?:term|duration)\s+of\s+(?:this|the)\s+agreement`, Sample: "duration of this agreement"},
			{Name: "indefinite", Regex: `indefinitely`, Sample: "shall apply indefinitely"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("disclosure_carve_outs", func() (patternlib.Set, error) {
		return patternlib.Compile("disclosure_carve_outs", []patternlib.Source{
			{Name: "required_by_law", Regex: `required\s+by\s+law`, Sample: "required by law"},
			{Name: "court_order", Regex: `(?:court|tribunal)\s+order`, Sample: "court order"},
			{Name: "public_domain", Regex: `public\s+domain`, Sample: "already in the public domain"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("governing_law", func() (patternlib.Set, error) {
		return patternlib.Compile("governing_law", []patternlib.Source{
			{Name: "governing_law_label", Regex: `governing\s+law`, Sample: "governing law"},
			{Name: "laws_of_england", Regex: `laws?\s+of\s+(?:england|scotland|wales|northern\s+ireland)`, Sample: "laws of England and Wales"},
		}, patternlib.DefaultMatchBudget)
	})
}

func isConfidentialityAgreement(_ string, documentType string) bool {
	return documentType == "nda" || documentType == "confidentiality_agreement"
}

func presenceFinding(gateID string, found bool, severity finding.Severity, message string) finding.Finding {
	if found {
		return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusFail, Severity: severity, Message: message, LegalSource: legalSource}
}

type reasonableDurationGate struct{}

func (reasonableDurationGate) ModuleID() string    { return ModuleID }
func (reasonableDurationGate) GateID() string      { return "reasonable_duration" }
func (reasonableDurationGate) LegalSource() string { return legalSource }
func (reasonableDurationGate) IsRelevant(text, documentType string) bool {
	return isConfidentialityAgreement(text, documentType)
}
func (reasonableDurationGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("duration_clause")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "reasonable_duration", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("reasonable_duration", len(set.FindAll(text)) > 0, finding.SeverityHigh, "confidentiality agreement does not state a bounded duration")
}

type permittedDisclosureGate struct{}

func (permittedDisclosureGate) ModuleID() string    { return ModuleID }
func (permittedDisclosureGate) GateID() string      { return "permitted_disclosure" }
func (permittedDisclosureGate) LegalSource() string { return legalSource }
func (permittedDisclosureGate) IsRelevant(text, documentType string) bool {
	return isConfidentialityAgreement(text, documentType)
}
func (permittedDisclosureGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("disclosure_carve_outs")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "permitted_disclosure", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("permitted_disclosure", len(set.FindAll(text)) > 0, finding.SeverityMedium, "confidentiality agreement does not carve out permitted disclosures")
}

type governingLawGate struct{}

func (governingLawGate) ModuleID() string    { return ModuleID }
func (governingLawGate) GateID() string      { return "governing_law" }
func (governingLawGate) LegalSource() string { return legalSource }
func (governingLawGate) IsRelevant(text, documentType string) bool {
	return isConfidentialityAgreement(text, documentType)
}
func (governingLawGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("governing_law")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "governing_law", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("governing_law", len(set.FindAll(text)) > 0, finding.SeverityMedium, "confidentiality agreement does not state a governing law")
}

// Build constructs the nda_uk module for registration.
func Build() (module.Module, error) {
	return module.Module{
		ID:          ModuleID,
		Name:        "Confidentiality Agreements",
		Description: "Reasonable-duration, permitted-disclosure, and governing-law checks for NDAs.",
		Gates: []gate.Gate{
			reasonableDurationGate{},
			permittedDisclosureGate{},
			governingLawGate{},
		},
	}, nil
}

// Snippets returns the corrective snippets this module contributes.
func Snippets() []snippet.Snippet {
	return []snippet.Snippet{
		{
			ID: "nda_reasonable_duration_v1", ModuleID: ModuleID, GateID: "reasonable_duration",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "This agreement's confidentiality obligations remain in force for {duration_years} years from the date of disclosure.",
			Defaults:       map[string]string{"duration_years": "2"},
		},
		{
			ID: "nda_permitted_disclosure_v1", ModuleID: ModuleID, GateID: "permitted_disclosure",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "Nothing in this agreement prevents disclosure required by law, by court or tribunal order, or of information already in the public domain.",
		},
		{
			ID: "nda_governing_law_v1", ModuleID: ModuleID, GateID: "governing_law",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "This agreement is governed by the laws of {jurisdiction}.",
			Defaults:       map[string]string{"jurisdiction": "England and Wales"},
		},
	}
}
