package analysis

import (
	"fmt"
	"unicode/utf8"
)

// promptTextBudget bounds how much clause text is embedded in a prompt.
const promptTextBudget = 800

// BuildClausePrompt returns the analysis prompt for a single clause. The
// provider is instructed to answer with nothing but a JSON object matching
// the eight-field schema; the Extraction Engine defends against providers
// that ignore the instruction.
func BuildClausePrompt(clauseText, clauseType, documentType string) string {
	if len(clauseText) > promptTextBudget {
		clauseText = truncate(clauseText, promptTextBudget)
	}
	return fmt.Sprintf(`You are a legal document analysis assistant. Analyze contract clauses and respond ONLY with valid JSON.

Required JSON format:
{
    "severity_level": 3,
    "severity_reasoning": "brief explanation",
    "risk_factors": ["risk1", "risk2"],
    "legal_implications": "legal explanation",
    "plain_language_explanation": "simple explanation",
    "compliance_flags": ["flag1"],
    "recommendations": ["rec1", "rec2"],
    "confidence_score": 0.85
}

Document Type: %s
Clause Type: %s
Clause Content: %s

Guidelines:
- Severity: 1=Low, 2=Minor, 3=Moderate, 4=High, 5=Critical
- Be factual and professional
- Confidence score 0.0-1.0

Output only JSON:`, documentType, clauseType, clauseText)
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
