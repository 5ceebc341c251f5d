// Package scottish implements the scottish_law module: terminology
// correction for documents drafted using English land-law or
// notice-period conventions where Scots law conventions apply, per the
// Land Registration etc. (Scotland) Act 2012.
package scottish

import (
	"strings"

	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/patternlib"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// ModuleID identifies this module in the registry.
const ModuleID = "scottish_law"

const legalSource = "Land Registration etc. (Scotland) Act 2012"

var library = patternlib.NewLibrary()

func init() {
	library.Register("english_land_terms", func() (patternlib.Set, error) {
		return patternlib.Compile("english_land_terms", []patternlib.Source{
			{Name: "freehold", Regex: `freehold`, Sample: "the freehold interest"},
			{Name: "leasehold", Regex: `leasehold`, Sample: "a leasehold flat"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("heritable_property_terms", func() (patternlib.Set, error) {
		return patternlib.Compile("heritable_property_terms", []patternlib.Source{
			{Name: "heritable_property", Regex: `heritable\s+property`, Sample: "heritable property"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("english_registry_terms", func() (patternlib.Set, error) {
		return patternlib.Compile("english_registry_terms", []patternlib.Source{
			{Name: "land_registry", Regex: `(?:hm\s+)?land\s+registry`, Sample: "HM Land Registry"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("registers_of_scotland_terms", func() (patternlib.Set, error) {
		return patternlib.Compile("registers_of_scotland_terms", []patternlib.Source{
			{Name: "registers_of_scotland", Regex: `registers?\s+of\s+scotland`, Sample: "Registers of Scotland"},
		}, patternlib.DefaultMatchBudget)
	})
}

func isPropertyOrHRDocument(_ string, documentType string) bool {
	return documentType == "property_contract" || documentType == "hr_contract"
}

// heritablePropertyTerminologyGate flags English freehold/leasehold
// terminology in a Scottish property document unless a corrective note
// already establishes the heritable-property equivalent.
type heritablePropertyTerminologyGate struct{}

func (heritablePropertyTerminologyGate) ModuleID() string    { return ModuleID }
func (heritablePropertyTerminologyGate) GateID() string      { return "heritable_property_terminology" }
func (heritablePropertyTerminologyGate) LegalSource() string { return legalSource }
func (heritablePropertyTerminologyGate) IsRelevant(text, documentType string) bool {
	return isPropertyOrHRDocument(text, documentType)
}

func (heritablePropertyTerminologyGate) Check(text, documentType string) finding.Finding {
	englishTerms, err := library.Get("english_land_terms")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "heritable_property_terminology", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	matches := englishTerms.FindAll(text)
	if len(matches) == 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "heritable_property_terminology", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	heritableTerms, err := library.Get("heritable_property_terms")
	if err == nil && len(heritableTerms.FindAll(text)) > 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "heritable_property_terminology", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	spans := make([]finding.Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, finding.Span{Start: m.Start, End: m.End, Kind: m.PatternName, Severity: finding.SeverityMedium})
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "heritable_property_terminology",
		Status: finding.StatusFail, Severity: finding.SeverityMedium,
		Message:     "document uses English freehold/leasehold terminology instead of Scots heritable property terminology",
		LegalSource: legalSource,
		Spans:       spans,
	}
}

// registersOfScotlandTerminologyGate flags references to HM Land
// Registry where Registers of Scotland is the correct body.
type registersOfScotlandTerminologyGate struct{}

func (registersOfScotlandTerminologyGate) ModuleID() string { return ModuleID }
func (registersOfScotlandTerminologyGate) GateID() string   { return "registers_of_scotland_terminology" }
func (registersOfScotlandTerminologyGate) LegalSource() string { return legalSource }
func (registersOfScotlandTerminologyGate) IsRelevant(text, documentType string) bool {
	return isPropertyOrHRDocument(text, documentType)
}

func (registersOfScotlandTerminologyGate) Check(text, documentType string) finding.Finding {
	englishRegistry, err := library.Get("english_registry_terms")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "registers_of_scotland_terminology", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	matches := englishRegistry.FindAll(text)
	if len(matches) == 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "registers_of_scotland_terminology", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	scottishRegistry, err := library.Get("registers_of_scotland_terms")
	if err == nil && len(scottishRegistry.FindAll(text)) > 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "registers_of_scotland_terminology", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	spans := make([]finding.Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, finding.Span{Start: m.Start, End: m.End, Kind: m.PatternName, Severity: finding.SeverityMedium})
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "registers_of_scotland_terminology",
		Status: finding.StatusFail, Severity: finding.SeverityMedium,
		Message:     "document refers to HM Land Registry instead of Registers of Scotland",
		LegalSource: legalSource,
		Spans:       spans,
	}
}

// scottishNoticePeriodGate flags HR documents that omit any mention of
// Scottish notice-period conventions.
type scottishNoticePeriodGate struct{}

func (scottishNoticePeriodGate) ModuleID() string    { return ModuleID }
func (scottishNoticePeriodGate) GateID() string      { return "scottish_notice_period" }
func (scottishNoticePeriodGate) LegalSource() string { return legalSource }
func (scottishNoticePeriodGate) IsRelevant(text, documentType string) bool {
	return documentType == "hr_contract"
}

func (scottishNoticePeriodGate) Check(text, documentType string) finding.Finding {
	if containsAny(text, "notice period", "statutory notice") {
		return finding.Finding{ModuleID: ModuleID, GateID: "scottish_notice_period", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "scottish_notice_period",
		Status: finding.StatusWarning, Severity: finding.SeverityLow,
		Message:     "HR document does not state a notice period",
		LegalSource: legalSource,
	}
}

func containsAny(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Build constructs the scottish_law module for registration.
func Build() (module.Module, error) {
	return module.Module{
		ID:          ModuleID,
		Name:        "Scottish Property and HR Terminology",
		Description: "Flags English land-law and HR terminology where Scots law conventions apply.",
		Gates: []gate.Gate{
			heritablePropertyTerminologyGate{},
			registersOfScotlandTerminologyGate{},
			scottishNoticePeriodGate{},
		},
	}, nil
}

// Snippets returns the corrective snippets this module contributes. A
// single "section" insertion carries both the heritable-property and
// Registers-of-Scotland equivalents, since the fixed insertion-point
// model has no in-place term-replacement primitive and two snippets
// sharing one section header would overwrite each other. Applying it
// against heritable_property_terminology's failure also satisfies
// registers_of_scotland_terminology on re-validation, which carries no
// snippet of its own.
func Snippets() []snippet.Snippet {
	return []snippet.Snippet{
		{
			ID:             "scottish_terminology_note_v1",
			ModuleID:       ModuleID,
			GateID:         "heritable_property_terminology",
			InsertionPoint: snippet.InsertionSection,
			SectionHeader:  "SCOTTISH LAW TERMINOLOGY NOTE",
			Template: "For the avoidance of doubt, references in this agreement are to heritable property under the law of Scotland, not freehold or leasehold interests, and this property is registered with the Registers of Scotland, not HM Land Registry.",
		},
	}
}
