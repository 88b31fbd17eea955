package analysis

import (
	"fmt"
	"strings"

	"clauselens/internal/domain"
)

// highRiskPhrases raise fallback severity to at least 4 when present.
var highRiskPhrases = []string{
	"penalty", "forfeit", "liable", "terminate immediately", "breach",
	"liquidated damages", "indemnify", "hold harmless", "unlimited liability",
	"automatic termination", "without cause", "discretionary",
}

// mediumRiskPhrases are modal/obligation words; they raise severity to at
// least 3 and add a review note, but only while severity is still below 4.
var mediumRiskPhrases = []string{
	"may", "shall", "must", "required", "obligated",
	"consent", "approval", "discretion",
}

// highRiskTypes get a base severity of 4 in the fallback path.
var highRiskTypes = map[domain.ClauseType]bool{
	domain.ClauseTypeTermination:          true,
	domain.ClauseTypeLiability:            true,
	domain.ClauseTypeConfidentiality:      true,
	domain.ClauseTypeIntellectualProperty: true,
}

// lowRiskTypes get a base severity of 2 in the fallback path.
var lowRiskTypes = map[domain.ClauseType]bool{
	domain.ClauseTypeMaintenance: true,
	domain.ClauseTypeNotice:      true,
}

const longClauseThreshold = 1000

// FallbackAnalysis produces a deterministic, explainable heuristic result
// when no provider output is usable. provErr, when non-nil, is summarized
// into the reasoning text so the failure is visible to a reviewer without
// breaking the response contract.
func FallbackAnalysis(clauseText string, clauseType domain.ClauseType, provErr error) *domain.AnalysisResult {
	severity := 3
	var riskFactors, complianceFlags []string
	recommendations := []string{"Consult with legal professional for detailed analysis"}

	switch {
	case highRiskTypes[clauseType]:
		severity = 4
		riskFactors = append(riskFactors, "High risk clause type", "Requires legal review")
		complianceFlags = append(complianceFlags, "Potential compliance issues")
	case lowRiskTypes[clauseType]:
		severity = 2
		riskFactors = append(riskFactors, "Standard clause", "Verify compliance with local laws")
	case clauseType == domain.ClauseTypePayment:
		riskFactors = append(riskFactors, "Financial terms require verification")
		complianceFlags = append(complianceFlags, "Review payment terms")
	case clauseType == domain.ClauseTypeGoverningLaw:
		riskFactors = append(riskFactors, "Jurisdictional considerations")
		complianceFlags = append(complianceFlags, "Review governing law provisions")
	default:
		riskFactors = append(riskFactors, "Requires manual review")
	}

	lower := strings.ToLower(clauseText)

	if found := matchPhrases(lower, highRiskPhrases); len(found) > 0 {
		if severity < 4 {
			severity = 4
		}
		riskFactors = append(riskFactors,
			"High-risk language detected: "+strings.Join(firstN(found, 3), ", "))
	} else if found := matchPhrases(lower, mediumRiskPhrases); len(found) > 0 && severity < 4 {
		if severity < 3 {
			severity = 3
		}
		riskFactors = append(riskFactors,
			"Review recommended: "+strings.Join(firstN(found, 3), ", "))
	}

	if len(clauseText) > longClauseThreshold {
		riskFactors = append(riskFactors, "Long clause - detailed review recommended")
		recommendations = append(recommendations, "Consider simplifying complex clauses")
	}

	errInfo := ""
	if provErr != nil {
		errInfo = fmt.Sprintf(" (AI Error: %v)", provErr)
		recommendations = append(
			[]string{"AI analysis failed - manual legal review strongly recommended"},
			recommendations...)
	}

	riskNote := "Standard clause with moderate risk level."
	if severity >= 4 {
		riskNote = "High-risk terms detected requiring legal review."
	}

	return &domain.AnalysisResult{
		SeverityLevel:     severity,
		SeverityReasoning: "AI analysis unavailable - automated assessment performed" + errInfo,
		RiskFactors:       dedupe(riskFactors),
		LegalImplications: "Unable to provide detailed legal analysis at this time" + errInfo +
			". Basic keyword analysis performed.",
		PlainLanguageExplanation: fmt.Sprintf("This is a %s clause. %s%s", clauseType, riskNote, errInfo),
		ComplianceFlags:          dedupe(complianceFlags),
		Recommendations:          dedupe(recommendations),
		ConfidenceScore:          0.2,
		Source:                   domain.SourceFallback,
	}
}

func matchPhrases(lower string, phrases []string) []string {
	var found []string
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// dedupe removes duplicates preserving insertion order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
