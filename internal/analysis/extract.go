package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"clauselens/internal/domain"
)

// requiredKeys is the eight-field AnalysisResult schema.
var requiredKeys = []string{
	"severity_level", "severity_reasoning", "risk_factors",
	"legal_implications", "plain_language_explanation",
	"compliance_flags", "recommendations", "confidence_score",
}

// strategy attempts to recover a schema-valid AnalysisResult from raw
// provider text. Strategies are pure: no side effects, no errors — just a
// hit or a miss.
type strategy func(string) (*domain.AnalysisResult, bool)

// strategies are tried in order; the first hit wins. Partial field recovery
// is not in this list: it runs only after every structural strategy missed.
var strategies = []strategy{
	parseDirect,
	parseFenced,
	parseBalanced,
	parseStrippedPrefix,
	parseFlatObjects,
}

// Extract recovers an AnalysisResult from arbitrary provider output. It
// never panics and returns ok=false only when the content holds no quoted
// text at all; anything with a quoted token yields at least a partial
// recovery tagged with reduced confidence.
func Extract(content string) (*domain.AnalysisResult, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, false
	}
	for _, s := range strategies {
		if res, ok := s(content); ok {
			res.Source = domain.SourceModel
			return res, true
		}
	}
	return recoverPartial(content)
}

// parseCandidate parses and validates one JSON candidate against the schema:
// all eight keys present and non-null, severity_level an integer in [1,5],
// confidence_score in [0,1], the three list fields array-typed.
func parseCandidate(s string) (*domain.AnalysisResult, bool) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &keys); err != nil {
		return nil, false
	}
	for _, k := range requiredKeys {
		raw, ok := keys[k]
		if !ok || string(raw) == "null" {
			return nil, false
		}
	}
	var res domain.AnalysisResult
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		// Covers scalar list fields and non-integer severity levels.
		return nil, false
	}
	if res.SeverityLevel < 1 || res.SeverityLevel > 5 {
		return nil, false
	}
	if res.ConfidenceScore < 0.0 || res.ConfidenceScore > 1.0 {
		return nil, false
	}
	return &res, true
}

func parseDirect(content string) (*domain.AnalysisResult, bool) {
	return parseCandidate(content)
}

var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?is)```json\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?is)```(?:json)?\\s*\\n(\\{.*?\\})\\n```"),
	regexp.MustCompile("(?is)```\\s*\\n(\\{.*?\\})\\s*\\n```"),
}

func parseFenced(content string) (*domain.AnalysisResult, bool) {
	for _, p := range fencePatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			candidate := strings.TrimSpace(m[1])
			if candidate == "" {
				continue
			}
			if res, ok := parseCandidate(candidate); ok {
				return res, true
			}
		}
	}
	return nil, false
}

// parseBalanced scans for balanced-brace substrings by tracking nesting
// depth and prefers the longest valid candidate: a richer payload is more
// likely to be the complete answer.
func parseBalanced(content string) (*domain.AnalysisResult, bool) {
	var best *domain.AnalysisResult
	bestLen := 0
	depth := 0
	start := -1
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				candidate := content[start : i+1]
				if res, ok := parseCandidate(candidate); ok && len(candidate) > bestLen {
					best = res
					bestLen = len(candidate)
				}
				start = -1
			}
		}
	}
	return best, best != nil
}

var conversationalPrefixes = []string{
	"Here's the analysis:",
	"Analysis:",
	"Here's my analysis:",
	"Based on the clause,",
	"The analysis is:",
	"JSON Response:",
}

func parseStrippedPrefix(content string) (*domain.AnalysisResult, bool) {
	upper := strings.ToUpper(content)
	for _, prefix := range conversationalPrefixes {
		if !strings.HasPrefix(upper, strings.ToUpper(prefix)) {
			continue
		}
		stripped := strings.TrimSpace(content[len(prefix):])
		if res, ok := parseCandidate(stripped); ok {
			return res, true
		}
	}
	return nil, false
}

// flatObjectPattern matches brace-delimited objects with at most one level
// of nesting, as a last full-document sweep.
var flatObjectPattern = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

func parseFlatObjects(content string) (*domain.AnalysisResult, bool) {
	for _, m := range flatObjectPattern.FindAllString(content, -1) {
		if res, ok := parseCandidate(m); ok {
			return res, true
		}
	}
	return nil, false
}

var (
	severityPattern   = regexp.MustCompile(`"severity_level"\s*:\s*(\d+)`)
	confidencePattern = regexp.MustCompile(`"confidence_score"\s*:\s*([0-9.]+)`)
	quotedItemPattern = regexp.MustCompile(`"([^"]*)"`)
	quotedPattern     = regexp.MustCompile(`"[^"]+"`)
)

var listPatterns = map[string]*regexp.Regexp{
	"risk_factors":     regexp.MustCompile(`"risk_factors"\s*:\s*\[([^\]]*)\]`),
	"compliance_flags": regexp.MustCompile(`"compliance_flags"\s*:\s*\[([^\]]*)\]`),
	"recommendations":  regexp.MustCompile(`"recommendations"\s*:\s*\[([^\]]*)\]`),
}

// recoverPartial independently regex-extracts every schema field from
// malformed content, synthesizing defaults for whatever is missing. It
// succeeds whenever the content carries at least one quoted token.
func recoverPartial(content string) (*domain.AnalysisResult, bool) {
	if !quotedPattern.MatchString(content) {
		return nil, false
	}

	severity := 3
	if m := severityPattern.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			severity = clampSeverity(n)
		}
	}

	confidence := 0.5
	if m := confidencePattern.FindStringSubmatch(content); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f >= 0.0 && f <= 1.0 {
			confidence = f
		}
	}

	res := &domain.AnalysisResult{
		SeverityLevel:   severity,
		RiskFactors:     extractListField(content, "risk_factors"),
		ComplianceFlags: extractListField(content, "compliance_flags"),
		Recommendations: extractListField(content, "recommendations"),
		ConfidenceScore: confidence,
		Source:          domain.SourcePartial,
	}

	res.SeverityReasoning = extractStringField(content, "severity_reasoning")
	if res.SeverityReasoning == "" {
		res.SeverityReasoning = fmt.Sprintf("Analysis level %d - requires review", severity)
	}
	res.LegalImplications = extractStringField(content, "legal_implications")
	if res.LegalImplications == "" {
		res.LegalImplications = "Legal implications require professional review"
	}
	res.PlainLanguageExplanation = extractStringField(content, "plain_language_explanation")
	if res.PlainLanguageExplanation == "" {
		res.PlainLanguageExplanation = fmt.Sprintf("This clause has been assessed at level %d", severity)
	}
	return res, true
}

func extractListField(content, name string) []string {
	items := []string{}
	m := listPatterns[name].FindStringSubmatch(content)
	if m == nil {
		return items
	}
	for _, im := range quotedItemPattern.FindAllStringSubmatch(m[1], -1) {
		if im[1] != "" {
			items = append(items, im[1])
		}
	}
	return items
}

// extractStringField pulls a single quoted string value for a key from
// malformed JSON, unescaping the common sequences.
func extractStringField(content, name string) string {
	pattern := regexp.MustCompile(`(?s)"` + name + `"\s*:\s*"([^"]*(?:\\.[^"]*)*)"`)
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	val := m[1]
	val = strings.ReplaceAll(val, `\n`, "\n")
	val = strings.ReplaceAll(val, `\t`, "\t")
	val = strings.ReplaceAll(val, `\"`, `"`)
	return val
}

func clampSeverity(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
