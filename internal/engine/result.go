package engine

import "github.com/ukcompliance/complianceengine/internal/finding"

// RiskLevel is the aggregate severity band for a ValidationResult.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// ValidationResult is the engine's output for one validation request.
type ValidationResult struct {
	Fingerprint string             `json:"fingerprint"`
	Findings    []finding.Finding  `json:"findings"`
	OverallRisk RiskLevel          `json:"overall_risk"`
	ElapsedMs   int64              `json:"elapsed_ms"`
	CacheHit    bool               `json:"cache_hit"`
}

// OverallRisk derives the aggregate risk band from the highest-severity
// failing finding: any critical fail outranks any high fail, and so on;
// with no failing findings at all, the result is low risk.
func OverallRisk(findings []finding.Finding) RiskLevel {
	seen := map[finding.Severity]bool{}
	for _, f := range findings {
		if f.Status == finding.StatusFail {
			seen[f.Severity] = true
		}
	}
	switch {
	case seen[finding.SeverityCritical]:
		return RiskCritical
	case seen[finding.SeverityHigh]:
		return RiskHigh
	case seen[finding.SeverityMedium]:
		return RiskMedium
	default:
		return RiskLow
	}
}
