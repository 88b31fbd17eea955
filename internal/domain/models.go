package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is a []string stored as JSONB in PostgreSQL.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("StringList.Scan: unsupported source type %T", src)
	}
}

// Document represents an ingested legal document and its processing state.
type Document struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Title            string           `db:"title" json:"title"`
	DocumentType     string           `db:"document_type" json:"document_type"`
	ExtractedText    string           `db:"extracted_text" json:"-"`
	Language         string           `db:"language" json:"language"`
	TotalClauses     int              `db:"total_clauses" json:"total_clauses"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processing_status"`
	ProcessingError  string           `db:"processing_error" json:"processing_error,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Clause is a semantically bounded span of a document, enriched in place by
// the analysis pipeline after segmentation.
type Clause struct {
	ID                string         `db:"id" json:"clause_id"`
	DocumentID        uuid.UUID      `db:"document_id" json:"document_id"`
	SequenceNumber    int            `db:"sequence_number" json:"sequence_number"`
	Title             string         `db:"title" json:"clause_title"`
	Text              string         `db:"text" json:"clause_text"`
	Type              ClauseType     `db:"clause_type" json:"clause_type"`
	StartOffset       int            `db:"start_offset" json:"start_offset"`
	EndOffset         int            `db:"end_offset" json:"end_offset"`
	SeverityLevel     int            `db:"severity_level" json:"severity_level"`
	SeverityColor     string         `db:"severity_color" json:"severity_color"`
	SeverityReasoning string         `db:"severity_reasoning" json:"severity_reasoning"`
	RiskFactors       StringList     `db:"risk_factors" json:"risk_factors"`
	LegalImplications string         `db:"legal_implications" json:"legal_implications"`
	PlainLanguage     string         `db:"plain_language_explanation" json:"plain_language_explanation"`
	ComplianceFlags   StringList     `db:"compliance_flags" json:"compliance_flags"`
	Recommendations   StringList     `db:"recommendations" json:"recommendations"`
	RelatedClauses    StringList     `db:"related_clauses" json:"related_clauses"`
	ConfidenceScore   float64        `db:"confidence_score" json:"confidence_score"`
	AnalysisSource    AnalysisSource `db:"analysis_source" json:"analysis_source"`
	ModelUsed         string         `db:"model_used" json:"model_used"`
	AnalyzedAt        *time.Time     `db:"analyzed_at" json:"analyzed_at,omitempty"`
	VectorStored      bool           `db:"vector_stored" json:"vector_stored"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// ApplyAnalysis copies an AnalysisResult onto the clause in place.
func (c *Clause) ApplyAnalysis(res *AnalysisResult, analyzedAt time.Time) {
	c.SeverityLevel = res.SeverityLevel
	c.SeverityColor = SeverityColor(res.SeverityLevel)
	c.SeverityReasoning = res.SeverityReasoning
	c.RiskFactors = StringList(res.RiskFactors)
	c.LegalImplications = res.LegalImplications
	c.PlainLanguage = res.PlainLanguageExplanation
	c.ComplianceFlags = StringList(res.ComplianceFlags)
	c.Recommendations = StringList(res.Recommendations)
	c.ConfidenceScore = res.ConfidenceScore
	c.AnalysisSource = res.Source
	c.ModelUsed = res.ModelUsed
	c.AnalyzedAt = &analyzedAt
}

// AnalysisResult is the eight-field clause assessment. Every field is
// populated on every code path; ConfidenceScore and Source reflect how much
// of it came from a reasoning provider versus heuristics.
type AnalysisResult struct {
	SeverityLevel            int      `json:"severity_level"`
	SeverityReasoning        string   `json:"severity_reasoning"`
	RiskFactors              []string `json:"risk_factors"`
	LegalImplications        string   `json:"legal_implications"`
	PlainLanguageExplanation string   `json:"plain_language_explanation"`
	ComplianceFlags          []string `json:"compliance_flags"`
	Recommendations          []string `json:"recommendations"`
	ConfidenceScore          float64  `json:"confidence_score"`

	Source    AnalysisSource `json:"-"`
	ModelUsed string         `json:"-"`
}

// DocumentSummary is the deterministic roll-up over a document's clause
// analyses.
type DocumentSummary struct {
	HighRiskClauses   int      `json:"high_risk_clauses"`
	MediumRiskClauses int      `json:"medium_risk_clauses"`
	LowRiskClauses    int      `json:"low_risk_clauses"`
	CriticalIssues    []string `json:"critical_issues"`
	Recommendations   []string `json:"recommendations"`
	ComplianceScore   float64  `json:"compliance_score"`
	OverallRiskScore  float64  `json:"overall_risk_score"`
	OverallSentiment  string   `json:"overall_sentiment"`
}
