package segmenter

import (
	"regexp"
	"strings"

	"clauselens/internal/domain"
)

// numberingPatterns match paragraphs that open a clause with an explicit
// numbering scheme. Each pattern captures the numbering token and the
// remainder of the line, which is used as the clause title.
var numberingPatterns = []*regexp.Regexp{
	// Arabic numerals: 1., 1.1, 1.1.1
	regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\.?\s+(.+)`),
	// Roman numerals with a required dot: I., IV., IX.
	regexp.MustCompile(`^\s*(X{1,3}|IX|IV|V|VI{1,3}|I{1,3})\.\s+(.+)`),
	// Lettered numbering with a required delimiter: a., A), (b)
	regexp.MustCompile(`^\s*\(?([A-Za-z])[.)]\s+(.+)`),
	// Parenthetical numbers: (1), (2)
	regexp.MustCompile(`^\s*\((\d+)\)\s+(.+)`),
	// Section headers: Section 1, Article 2: Clause 3.
	regexp.MustCompile(`(?i)^\s*(?:Section|Article|Clause)\s+(\d+)[.:]?\s+(.+)`),
	// Bullet markers, including common Unicode bullets
	regexp.MustCompile(`^\s*[•‣▪\-\*]\s*(\d+)\.?\s+(.+)`),
}

// headerPatterns match unnumbered legal section openers.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:WHEREAS|NOW THEREFORE|IN WITNESS WHEREOF)`),
	regexp.MustCompile(`(?i)^\s*(?:This|The)\s+(?:Agreement|Contract|Lease)`),
	regexp.MustCompile(`(?i)^\s*Definitions?\s*:`),
	regexp.MustCompile(`(?i)^\s*Schedule\s+\d+:`),
	regexp.MustCompile(`(?i)^\s*Exhibit\s+\w+:`),
}

// boundaryTerms is the fixed vocabulary of section-level terms that open a
// clause when they appear among a paragraph's first three words. Party nouns
// (tenant, landlord, party) are deliberately absent: they occur in body
// sentences constantly and would defeat paragraph grouping.
var boundaryTerms = []string{
	"agreement", "term", "condition", "obligation",
	"liability", "termination", "breach", "default",
	"payment", "fee", "compensation", "damages", "warranty", "representation",
	"confidentiality", "intellectual property", "force majeure", "governing law",
	"jurisdiction", "arbitration", "dispute", "amendment", "assignment",
	"severability", "entire agreement", "waiver", "indemnification", "insurance",
	"maintenance", "security deposit",
}

// clauseTypeRules maps clause types to trigger keywords. Order matters:
// the first type with a keyword present in the clause text wins.
var clauseTypeRules = []struct {
	Type     domain.ClauseType
	Keywords []string
}{
	{domain.ClauseTypePayment, []string{"payment", "fee", "compensation", "rent", "deposit", "money"}},
	{domain.ClauseTypeTermination, []string{"termination", "cancel", "expire", "breach", "default"}},
	{domain.ClauseTypeLiability, []string{"liability", "responsible", "obligation", "duty", "indemnify"}},
	{domain.ClauseTypeConfidentiality, []string{"confidential", "secret", "private", "disclose", "protect"}},
	{domain.ClauseTypeGoverningLaw, []string{"governing law", "jurisdiction", "court", "arbitration"}},
	{domain.ClauseTypeForceMajeure, []string{"force majeure", "act of god", "unforeseeable", "emergency"}},
	{domain.ClauseTypeIntellectualProperty, []string{"intellectual property", "copyright", "trademark", "patent"}},
	{domain.ClauseTypeMaintenance, []string{"maintenance", "repair", "restore"}},
	{domain.ClauseTypeSecurityDeposit, []string{"security deposit", "refund", "return"}},
	{domain.ClauseTypeNotice, []string{"notice", "notify", "communication", "contact", "address"}},
	{domain.ClauseTypeAssignment, []string{"assignment", "transfer", "sublet", "delegate"}},
	{domain.ClauseTypeAmendment, []string{"amendment", "modify", "alter", "revise"}},
	{domain.ClauseTypeSeverability, []string{"severability", "independent", "invalid"}},
	{domain.ClauseTypeWaiver, []string{"waiver", "forgo", "relinquish", "abandon"}},
	{domain.ClauseTypeInsurance, []string{"insurance", "insure", "coverage", "policy"}},
}

var propertyFallbackTerms = []string{"rent", "lease", "tenant", "landlord"}
var partyFallbackTerms = []string{"party", "parties", "agreement"}

// matchNumbering returns the title captured by the first matching numbering
// pattern, and whether any pattern matched.
func matchNumbering(text string) (string, bool) {
	for _, p := range numberingPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[2]), true
		}
	}
	return "", false
}

// isClauseStart reports whether a paragraph opens a new clause.
func isClauseStart(text string) bool {
	text = strings.TrimSpace(text)
	if _, ok := matchNumbering(text); ok {
		return true
	}
	for _, p := range headerPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return startsWithBoundaryTerm(text)
}

// startsWithBoundaryTerm checks the fixed boundary vocabulary against the
// paragraph's first ~50 characters, confirming the term sits within the
// first three words so mid-sentence references do not open clauses.
func startsWithBoundaryTerm(text string) bool {
	lower := strings.ToLower(text)
	head := lower
	if len(head) > 50 {
		head = truncate(head, 50)
	}
	words := strings.Fields(lower)
	if len(words) > 3 {
		words = words[:3]
	}
	for _, term := range boundaryTerms {
		if !strings.HasPrefix(head, term) && !strings.Contains(head, " "+term) {
			continue
		}
		for _, w := range words {
			if strings.Contains(w, term) {
				return true
			}
		}
	}
	return false
}

// classify assigns a clause type by ordered keyword matching, with broad
// fallback groups when no rule fires.
func classify(text string) domain.ClauseType {
	lower := strings.ToLower(text)
	for _, rule := range clauseTypeRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	for _, t := range propertyFallbackTerms {
		if strings.Contains(lower, t) {
			return domain.ClauseTypePropertyDetails
		}
	}
	for _, t := range partyFallbackTerms {
		if strings.Contains(lower, t) {
			return domain.ClauseTypePartyDetails
		}
	}
	return domain.ClauseTypeGeneral
}
