// Package gdpr implements the gdpr_uk module: gates for UK GDPR privacy
// notices under Articles 13/14 (lawful basis, data subject rights, ICO
// complaint signposting, retention period disclosure).
package gdpr

import (
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/patternlib"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// ModuleID identifies this module in the registry.
const ModuleID = "gdpr_uk"

const legalSource = "UK GDPR Art. 13/14"

var library = patternlib.NewLibrary()

func init() {
	library.Register("lawful_basis", func() (patternlib.Set, error) {
		return patternlib.Compile("lawful_basis", []patternlib.Source{
			{Name: "legitimate_interest", Regex: `legitimate\s+interests?`, Sample: "legitimate interest"},
			{Name: "consent", Regex: `(?:your|explicit)\s+consent`, Sample: "your consent"},
			{Name: "contract_necessary", Regex: `necessary\s+(?:for|to\s+perform)\s+(?:the\s+)?contract`, Sample: "necessary for the contract"},
			{Name: "legal_obligation", Regex: `legal\s+obligation`, Sample: "legal obligation"},
			{Name: "lawful_basis_label", Regex: `lawful\s+basis`, Sample: "lawful basis"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("data_subject_rights", func() (patternlib.Set, error) {
		return patternlib.Compile("data_subject_rights", []patternlib.Source{
			{Name: "right_to_access", Regex: `right\s+to\s+access`, Sample: "right to access"},
			{Name: "right_to_erasure", Regex: `right\s+to\s+(?:erasure|be\s+forgotten)`, Sample: "right to erasure"},
			{Name: "right_to_rectification", Regex: `right\s+to\s+rectif`, Sample: "right to rectification"},
			{Name: "right_to_object", Regex: `right\s+to\s+object`, Sample: "right to object"},
			{Name: "data_portability", Regex: `data\s+portability`, Sample: "data portability"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("ico_signposting", func() (patternlib.Set, error) {
		return patternlib.Compile("ico_signposting", []patternlib.Source{
			{Name: "ico_mention", Regex: `information\s+commissioner(?:'s)?\s+office`, Sample: "Information Commissioner's Office"},
			{Name: "ico_abbrev", Regex: `\bico\b`, Sample: "ICO"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("retention_period", func() (patternlib.Set, error) {
		return patternlib.Compile("retention_period", []patternlib.Source{
			{Name: "retention_period_label", Regex: `retention\s+period`, Sample: "retention period"},
			{Name: "how_long_we_keep", Regex: `how\s+long\s+we\s+(?:keep|retain|store)`, Sample: "how long we keep your data"},
			{Name: "retain_data_for", Regex: `retain\s+(?:your\s+)?(?:personal\s+)?data\s+for`, Sample: "retain your data for"},
		}, patternlib.DefaultMatchBudget)
	})
}

func isPrivacyNotice(_ string, documentType string) bool {
	return documentType == "privacy_notice"
}

func setFoundFinding(gateID string, found bool, severity finding.Severity, failMessage string) finding.Finding {
	if found {
		return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusFail, Severity: severity, Message: failMessage, LegalSource: legalSource}
}

type lawfulBasisGate struct{}

func (lawfulBasisGate) ModuleID() string    { return ModuleID }
func (lawfulBasisGate) GateID() string      { return "lawful_basis" }
func (lawfulBasisGate) LegalSource() string { return legalSource }
func (lawfulBasisGate) IsRelevant(text, documentType string) bool { return isPrivacyNotice(text, documentType) }
func (lawfulBasisGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("lawful_basis")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "lawful_basis", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return setFoundFinding("lawful_basis", len(set.FindAll(text)) > 0, finding.SeverityHigh, "privacy notice does not state a lawful basis for processing")
}

type dataSubjectRightsGate struct{}

func (dataSubjectRightsGate) ModuleID() string    { return ModuleID }
func (dataSubjectRightsGate) GateID() string      { return "data_subject_rights" }
func (dataSubjectRightsGate) LegalSource() string { return legalSource }
func (dataSubjectRightsGate) IsRelevant(text, documentType string) bool {
	return isPrivacyNotice(text, documentType)
}
func (dataSubjectRightsGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("data_subject_rights")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "data_subject_rights", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return setFoundFinding("data_subject_rights", len(set.FindAll(text)) > 0, finding.SeverityHigh, "privacy notice does not describe data subject rights")
}

type icoSignpostingGate struct{}

func (icoSignpostingGate) ModuleID() string    { return ModuleID }
func (icoSignpostingGate) GateID() string      { return "ico_signposting" }
func (icoSignpostingGate) LegalSource() string { return legalSource }
func (icoSignpostingGate) IsRelevant(text, documentType string) bool { return isPrivacyNotice(text, documentType) }
func (icoSignpostingGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("ico_signposting")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "ico_signposting", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return setFoundFinding("ico_signposting", len(set.FindAll(text)) > 0, finding.SeverityMedium, "privacy notice does not signpost the Information Commissioner's Office")
}

type retentionPeriodGate struct{}

func (retentionPeriodGate) ModuleID() string    { return ModuleID }
func (retentionPeriodGate) GateID() string      { return "retention_period" }
func (retentionPeriodGate) LegalSource() string { return legalSource }
func (retentionPeriodGate) IsRelevant(text, documentType string) bool { return isPrivacyNotice(text, documentType) }
func (retentionPeriodGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("retention_period")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "retention_period", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return setFoundFinding("retention_period", len(set.FindAll(text)) > 0, finding.SeverityMedium, "privacy notice does not disclose a data retention period")
}

// Build constructs the gdpr_uk module for registration.
func Build() (module.Module, error) {
	return module.Module{
		ID:          ModuleID,
		Name:        "UK GDPR Privacy Notices",
		Description: "Lawful basis, data subject rights, ICO signposting, and retention period checks for UK GDPR privacy notices.",
		Gates: []gate.Gate{
			lawfulBasisGate{},
			dataSubjectRightsGate{},
			icoSignpostingGate{},
			retentionPeriodGate{},
		},
	}, nil
}

// Snippets returns the corrective snippets this module contributes to
// the snippet registry. The data_subject_rights snippet folds in ICO
// signposting language, so applying it alone can also satisfy
// ico_signposting on re-validation.
func Snippets() []snippet.Snippet {
	return []snippet.Snippet{
		{
			ID:             "gdpr_lawful_basis_v1",
			ModuleID:       ModuleID,
			GateID:         "lawful_basis",
			InsertionPoint: snippet.InsertionPrepend,
			Template:       "We process your personal data based on our legitimate interest in providing and improving our services, as permitted under the UK GDPR lawful basis at Article 6(1)(f).",
		},
		{
			ID:             "gdpr_data_subject_rights_v1",
			ModuleID:       ModuleID,
			GateID:         "data_subject_rights",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "You have the right to access, rectify, erase, restrict, or object to our processing of your personal data, and the right to data portability. If you have concerns about how we handle your data, you may complain to the Information Commissioner's Office (ICO).",
		},
		{
			ID:             "gdpr_retention_period_v1",
			ModuleID:       ModuleID,
			GateID:         "retention_period",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "We retain your personal data only for as long as necessary to fulfil the purposes for which it was collected, in accordance with our retention period policy.",
		},
	}
}
