package analysis

import (
	"strings"

	"gonum.org/v1/gonum/stat"

	"clauselens/internal/domain"
)

// Summarize computes the deterministic document-level roll-up over per-clause
// results. It is pure aggregation: no provider call is involved.
func Summarize(results []*domain.AnalysisResult, documentType string) *domain.DocumentSummary {
	if len(results) == 0 {
		return &domain.DocumentSummary{
			CriticalIssues:   []string{"AI analysis unavailable"},
			Recommendations:  []string{"Consult legal professional for comprehensive review"},
			ComplianceScore:  50.0,
			OverallRiskScore: 3.0,
			OverallSentiment: "unknown_risk",
		}
	}

	severityCounts := map[int]int{}
	severities := make([]float64, 0, len(results))
	var allRiskFactors, allComplianceFlags []string
	for _, r := range results {
		severityCounts[r.SeverityLevel]++
		severities = append(severities, float64(r.SeverityLevel))
		allRiskFactors = append(allRiskFactors, r.RiskFactors...)
		allComplianceFlags = append(allComplianceFlags, r.ComplianceFlags...)
	}

	overallRisk := stat.Mean(severities, nil)

	highRisk := severityCounts[4] + severityCounts[5]
	mediumRisk := severityCounts[3]
	lowRisk := severityCounts[1] + severityCounts[2]

	criticalIssues := firstN(dedupe(allRiskFactors), 5)
	complianceIssues := firstN(dedupe(allComplianceFlags), 3)

	complianceScore := 100.0 - float64(highRisk)*10.0 - float64(len(complianceIssues))*15.0
	if complianceScore < 0 {
		complianceScore = 0
	}

	return &domain.DocumentSummary{
		HighRiskClauses:   highRisk,
		MediumRiskClauses: mediumRisk,
		LowRiskClauses:    lowRisk,
		CriticalIssues:    criticalIssues,
		Recommendations:   buildRecommendations(severityCounts, allRiskFactors, documentType),
		ComplianceScore:   complianceScore,
		OverallRiskScore:  overallRisk,
		OverallSentiment:  sentiment(overallRisk),
	}
}

// buildRecommendations derives document-level recommendations from the
// severity distribution and aggregated risk factors. Capped at five.
func buildRecommendations(severityCounts map[int]int, riskFactors []string, documentType string) []string {
	var recs []string

	if severityCounts[5] > 0 {
		recs = append(recs, "URGENT: Review critical clauses with legal counsel immediately")
	}
	if severityCounts[4] > 2 {
		recs = append(recs, "Multiple high-risk clauses identified - comprehensive legal review recommended")
	}

	joined := strings.ToLower(strings.Join(riskFactors, " "))
	if documentType == "rental_agreement" {
		if strings.Contains(joined, "termination") {
			recs = append(recs, "Consider adding 30-day notice period for termination")
		}
		if strings.Contains(joined, "deposit") {
			recs = append(recs, "Ensure security deposit terms comply with local rent control laws")
		}
	}
	if strings.Contains(joined, "compliance") {
		recs = append(recs, "Address compliance issues to avoid legal challenges")
	}

	if len(recs) == 0 {
		recs = append(recs, "Document appears standard - regular legal review recommended")
	}
	return firstN(recs, 5)
}

// sentiment converts a mean severity into a qualitative band.
func sentiment(riskScore float64) string {
	switch {
	case riskScore >= 4.5:
		return "critical_risk"
	case riskScore >= 3.5:
		return "high_risk"
	case riskScore >= 2.5:
		return "moderate_risk"
	case riskScore >= 1.5:
		return "low_risk"
	default:
		return "minimal_risk"
	}
}
