// Package employment implements the employment_uk module: the written
// statement of particulars required by the Employment Rights Act 1996
// s.1 (notice period, pay frequency, place of work).
package employment

import (
	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/patternlib"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// ModuleID identifies this module in the registry.
const ModuleID = "employment_uk"

const legalSource = "Employment Rights Act 1996 s.1"

var library = patternlib.NewLibrary()

func init() {
	library.Register("notice_period", func() (patternlib.Set, error) {
		return patternlib.Compile("notice_period", []patternlib.Source{
			{Name: "notice_period_label", Regex: `notice\s+period`, Sample: "notice period"},
			{Name: "weeks_notice", Regex: `\d+\s+weeks?'?\s+notice`, Sample: "4 weeks' notice"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("pay_frequency", func() (patternlib.Set, error) {
		return patternlib.Compile("pay_frequency", []patternlib.Source{
			{Name: "paid_monthly", Regex: `paid\s+(?:monthly|weekly|fortnightly|four[- ]weekly)`, Sample: "paid monthly"},
			{Name: "pay_frequency_label", Regex: `pay\s+frequency`, Sample: "pay frequency"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("place_of_work", func() (patternlib.Set, error) {
		return patternlib.Compile("place_of_work", []patternlib.Source{
			{Name: "place_of_work_label", Regex: `place\s+of\s+work`, Sample: "place of work"},
			{Name: "usual_workplace", Regex: `usual\s+(?:place\s+of\s+)?workplace`, Sample: "usual workplace"},
		}, patternlib.DefaultMatchBudget)
	})
}

func isEmploymentContract(_ string, documentType string) bool {
	return documentType == "employment_contract" || documentType == "hr_contract"
}

func presenceFinding(gateID string, found bool, message string) finding.Finding {
	if found {
		return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{ModuleID: ModuleID, GateID: gateID, Status: finding.StatusFail, Severity: finding.SeverityHigh, Message: message, LegalSource: legalSource}
}

type noticePeriodGate struct{}

func (noticePeriodGate) ModuleID() string    { return ModuleID }
func (noticePeriodGate) GateID() string      { return "notice_period" }
func (noticePeriodGate) LegalSource() string { return legalSource }
func (noticePeriodGate) IsRelevant(text, documentType string) bool { return isEmploymentContract(text, documentType) }
func (noticePeriodGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("notice_period")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "notice_period", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("notice_period", len(set.FindAll(text)) > 0, "written statement does not state a notice period")
}

type payFrequencyGate struct{}

func (payFrequencyGate) ModuleID() string    { return ModuleID }
func (payFrequencyGate) GateID() string      { return "pay_frequency" }
func (payFrequencyGate) LegalSource() string { return legalSource }
func (payFrequencyGate) IsRelevant(text, documentType string) bool { return isEmploymentContract(text, documentType) }
func (payFrequencyGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("pay_frequency")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "pay_frequency", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("pay_frequency", len(set.FindAll(text)) > 0, "written statement does not state pay frequency")
}

type placeOfWorkGate struct{}

func (placeOfWorkGate) ModuleID() string    { return ModuleID }
func (placeOfWorkGate) GateID() string      { return "place_of_work" }
func (placeOfWorkGate) LegalSource() string { return legalSource }
func (placeOfWorkGate) IsRelevant(text, documentType string) bool { return isEmploymentContract(text, documentType) }
func (placeOfWorkGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("place_of_work")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "place_of_work", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	return presenceFinding("place_of_work", len(set.FindAll(text)) > 0, "written statement does not state a place of work")
}

// Build constructs the employment_uk module for registration.
func Build() (module.Module, error) {
	return module.Module{
		ID:          ModuleID,
		Name:        "Employment Written Statement Particulars",
		Description: "Notice period, pay frequency, and place of work checks under Employment Rights Act 1996 s.1.",
		Gates: []gate.Gate{
			noticePeriodGate{},
			payFrequencyGate{},
			placeOfWorkGate{},
		},
	}, nil
}

// Snippets returns the corrective snippets this module contributes.
func Snippets() []snippet.Snippet {
	return []snippet.Snippet{
		{
			ID: "employment_notice_period_v1", ModuleID: ModuleID, GateID: "notice_period",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "Notice period: either party may terminate this employment by giving {notice_weeks} weeks' written notice.",
			Defaults:       map[string]string{"notice_weeks": "4"},
		},
		{
			ID: "employment_pay_frequency_v1", ModuleID: ModuleID, GateID: "pay_frequency",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "Pay frequency: you will be paid {frequency} in arrears.",
			Defaults:       map[string]string{"frequency": "monthly"},
		},
		{
			ID: "employment_place_of_work_v1", ModuleID: ModuleID, GateID: "place_of_work",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "Place of work: your usual place of work is {location}.",
			Defaults:       map[string]string{"location": "the employer's principal business address"},
		},
	}
}
