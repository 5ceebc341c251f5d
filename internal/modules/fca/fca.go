// Package fca implements the fca_uk module: gates for FCA-regulated
// financial promotions under COBS 4.2 (fair, clear, and not misleading)
// and FSMA 2000 s.21.
package fca

import (
	"strings"

	"github.com/ukcompliance/complianceengine/internal/finding"
	"github.com/ukcompliance/complianceengine/internal/gate"
	"github.com/ukcompliance/complianceengine/internal/module"
	"github.com/ukcompliance/complianceengine/internal/patternlib"
	"github.com/ukcompliance/complianceengine/internal/snippet"
)

// ModuleID identifies this module in the registry.
const ModuleID = "fca_uk"

const legalSource = "FCA COBS 4.2 / FSMA 2000 s.21"

var library = patternlib.NewLibrary()

func init() {
	library.Register("guaranteed_returns", func() (patternlib.Set, error) {
		return patternlib.Compile("guaranteed_returns", []patternlib.Source{
			{Name: "guaranteed_returns", Regex: `guaranteed\s+(?:\w+\s+){0,3}returns?`, Sample: "guaranteed high returns"},
			{Name: "risk_free", Regex: `risk[- ]free`, Sample: "risk-free investment"},
			{Name: "cant_lose", Regex: `can'?t\s+lose`, Sample: "you can't lose"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("risk_warning", func() (patternlib.Set, error) {
		return patternlib.Compile("risk_warning", []patternlib.Source{
			{Name: "capital_at_risk", Regex: `capital\s+(?:is\s+)?at\s+risk`, Sample: "capital is at risk"},
			{Name: "value_can_fall", Regex: `value\s+of\s+(?:your\s+)?investments?\s+can\s+(?:go\s+down\s+as\s+well\s+as\s+up|fall)`, Sample: "value of your investments can go down as well as up"},
			{Name: "risk_warning_label", Regex: `risk\s+warning`, Sample: "risk warning"},
		}, patternlib.DefaultMatchBudget)
	})
	library.Register("fos_signposting", func() (patternlib.Set, error) {
		return patternlib.Compile("fos_signposting", []patternlib.Source{
			{Name: "fos_mention", Regex: `financial\s+ombudsman(?:\s+service)?`, Sample: "Financial Ombudsman Service"},
			{Name: "fos_abbrev", Regex: `\bfos\b`, Sample: "FOS"},
		}, patternlib.DefaultMatchBudget)
	})
}

// isFinancialPromotion is the shared relevance predicate for every gate
// in this module.
func isFinancialPromotion(_ string, documentType string) bool {
	return documentType == "financial_promotion"
}

// fairClearNotMisleadingGate flags guaranteed-returns language unless a
// risk warning is already present nearby in the document.
type fairClearNotMisleadingGate struct{}

func (fairClearNotMisleadingGate) ModuleID() string   { return ModuleID }
func (fairClearNotMisleadingGate) GateID() string     { return "fair_clear_not_misleading" }
func (fairClearNotMisleadingGate) LegalSource() string { return legalSource }
func (fairClearNotMisleadingGate) IsRelevant(text, documentType string) bool {
	return isFinancialPromotion(text, documentType)
}

func (fairClearNotMisleadingGate) Check(text, documentType string) finding.Finding {
	guaranteed, err := library.Get("guaranteed_returns")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "fair_clear_not_misleading", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	matches := guaranteed.FindAll(text)
	if len(matches) == 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "fair_clear_not_misleading", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	riskSet, err := library.Get("risk_warning")
	if err == nil && len(riskSet.FindAll(text)) > 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "fair_clear_not_misleading", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}

	spans := make([]finding.Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, finding.Span{Start: m.Start, End: m.End, Kind: "guaranteed_returns", Severity: finding.SeverityCritical})
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "fair_clear_not_misleading",
		Status: finding.StatusFail, Severity: finding.SeverityCritical,
		Message:     "promotional text claims guaranteed returns without an accompanying risk warning",
		LegalSource: legalSource,
		Spans:       spans,
	}
}

// riskWarningGate requires a standard risk warning to be present
// somewhere in the document.
type riskWarningGate struct{}

func (riskWarningGate) ModuleID() string   { return ModuleID }
func (riskWarningGate) GateID() string     { return "risk_warning" }
func (riskWarningGate) LegalSource() string { return legalSource }
func (riskWarningGate) IsRelevant(text, documentType string) bool {
	return isFinancialPromotion(text, documentType)
}

func (riskWarningGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("risk_warning")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "risk_warning", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	if len(set.FindAll(text)) > 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "risk_warning", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "risk_warning",
		Status: finding.StatusFail, Severity: finding.SeverityHigh,
		Message:     "financial promotion is missing a standard risk warning",
		LegalSource: legalSource,
	}
}

// fosSignpostingGate requires the document to signpost complaints to
// the Financial Ombudsman Service.
type fosSignpostingGate struct{}

func (fosSignpostingGate) ModuleID() string    { return ModuleID }
func (fosSignpostingGate) GateID() string      { return "fos_signposting" }
func (fosSignpostingGate) LegalSource() string { return legalSource }
func (fosSignpostingGate) IsRelevant(text, documentType string) bool {
	return isFinancialPromotion(text, documentType)
}

func (fosSignpostingGate) Check(text, documentType string) finding.Finding {
	set, err := library.Get("fos_signposting")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "fos_signposting", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	if len(set.FindAll(text)) > 0 {
		return finding.Finding{ModuleID: ModuleID, GateID: "fos_signposting", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
	}
	return finding.Finding{
		ModuleID: ModuleID, GateID: "fos_signposting",
		Status: finding.StatusFail, Severity: finding.SeverityMedium,
		Message:     "financial promotion does not signpost the Financial Ombudsman Service",
		LegalSource: legalSource,
	}
}

// balancedRiskRewardGate flags promotions that dwell on returns without
// any risk-related vocabulary at all, a weaker balance check than
// fair_clear_not_misleading's guaranteed-returns trigger.
type balancedRiskRewardGate struct{}

func (balancedRiskRewardGate) ModuleID() string    { return ModuleID }
func (balancedRiskRewardGate) GateID() string      { return "balanced_risk_reward" }
func (balancedRiskRewardGate) LegalSource() string { return legalSource }
func (balancedRiskRewardGate) IsRelevant(text, documentType string) bool {
	return isFinancialPromotion(text, documentType)
}

func (balancedRiskRewardGate) Check(text, documentType string) finding.Finding {
	riskSet, err := library.Get("risk_warning")
	if err != nil {
		return finding.Finding{ModuleID: ModuleID, GateID: "balanced_risk_reward", Status: finding.StatusWarning, Severity: finding.SeverityLow, Message: err.Error()}
	}
	mentionsReturn := containsFold(text, "return")
	hasRiskLanguage := len(riskSet.FindAll(text)) > 0 || containsFold(text, "risk")
	if mentionsReturn && !hasRiskLanguage {
		return finding.Finding{
			ModuleID: ModuleID, GateID: "balanced_risk_reward",
			Status: finding.StatusWarning, Severity: finding.SeverityMedium,
			Message:     "promotion discusses returns without any risk-related language",
			LegalSource: legalSource,
		}
	}
	return finding.Finding{ModuleID: ModuleID, GateID: "balanced_risk_reward", Status: finding.StatusPass, Severity: finding.SeverityInfo, LegalSource: legalSource}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Build constructs the fca_uk module for registration.
func Build() (module.Module, error) {
	return module.Module{
		ID:          ModuleID,
		Name:        "FCA Financial Promotions",
		Description: "Fair-clear-not-misleading, risk warning, and FOS signposting checks for FCA-regulated financial promotions.",
		Gates: []gate.Gate{
			fairClearNotMisleadingGate{},
			riskWarningGate{},
			fosSignpostingGate{},
			balancedRiskRewardGate{},
		},
	}, nil
}

// Snippets returns the corrective snippets this module contributes to
// the snippet registry.
func Snippets() []snippet.Snippet {
	return []snippet.Snippet{
		{
			ID:             "fca_risk_warning_v1",
			ModuleID:       ModuleID,
			GateID:         "risk_warning",
			InsertionPoint: snippet.InsertionPrepend,
			Template:       "RISK WARNING: The value of your investments can go down as well as up and you may not get back the full amount invested. Capital is at risk.",
		},
		{
			ID:             "fca_fos_signposting_v1",
			ModuleID:       ModuleID,
			GateID:         "fos_signposting",
			InsertionPoint: snippet.InsertionAppend,
			Template:       "If you are unhappy with our service, you may refer your complaint to the Financial Ombudsman Service (FOS).",
		},
	}
}
