package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"clauselens/internal/analysis"
	"clauselens/internal/domain"
	"clauselens/internal/port"
	"clauselens/internal/segmenter"
)

const relatedClauseLimit = 3

// AnalyzeDocumentInput is the DTO for submitting a document for analysis.
type AnalyzeDocumentInput struct {
	Title        string
	DocumentType string
	Text         string
}

// DocumentMetadata summarizes document-level compliance posture.
type DocumentMetadata struct {
	OverallRiskScore float64 `json:"overall_risk_score"`
	ComplianceStatus string  `json:"compliance_status"`
}

// AnalysisResponse is the full result of an analysis run.
type AnalysisResponse struct {
	DocumentID   uuid.UUID               `json:"document_id"`
	Title        string                  `json:"title"`
	DocumentType string                  `json:"document_type"`
	Language     string                  `json:"language"`
	Status       domain.ProcessingStatus `json:"status"`
	TotalClauses int                     `json:"total_clauses"`
	Clauses      []domain.Clause         `json:"clauses"`
	Summary      *domain.DocumentSummary `json:"summary"`
	Metadata     DocumentMetadata        `json:"metadata"`
}

// ClauseDetailsResponse is a single clause with its related clauses hydrated.
type ClauseDetailsResponse struct {
	Clause  *domain.Clause  `json:"clause"`
	Related []domain.Clause `json:"related_clauses"`
}

// DocumentService defines the document analysis contract.
type DocumentService interface {
	AnalyzeDocument(ctx context.Context, input *AnalyzeDocumentInput) (*AnalysisResponse, error)
	GetStatus(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetClauses(ctx context.Context, docID uuid.UUID) ([]domain.Clause, error)
	GetClauseDetails(ctx context.Context, clauseID string) (*ClauseDetailsResponse, error)
	GetTimeline(ctx context.Context, docID uuid.UUID) (*TimelineResponse, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}

type documentService struct {
	docs     port.DocumentRepository
	clauses  port.ClauseRepository
	seg      *segmenter.Segmenter
	analyzer *analysis.Analyzer
	embedder port.EmbeddingProvider
	vectors  port.VectorStore
}

// NewDocumentService creates the document analysis service. embedder and
// vectors may be nil; vector storage and related-clause lookup are then
// skipped.
func NewDocumentService(
	docs port.DocumentRepository,
	clauses port.ClauseRepository,
	seg *segmenter.Segmenter,
	analyzer *analysis.Analyzer,
	embedder port.EmbeddingProvider,
	vectors port.VectorStore,
) DocumentService {
	return &documentService{
		docs:     docs,
		clauses:  clauses,
		seg:      seg,
		analyzer: analyzer,
		embedder: embedder,
		vectors:  vectors,
	}
}

// AnalyzeDocument runs the full pipeline: segment, persist, analyze every
// clause, store vectors, link related clauses and build the summary. Clause
// analysis never fails a document; only segmentation or persistence errors
// mark it failed.
func (s *documentService) AnalyzeDocument(ctx context.Context, input *AnalyzeDocumentInput) (*AnalysisResponse, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	doc := &domain.Document{
		ID:               uuid.New(),
		Title:            input.Title,
		DocumentType:     input.DocumentType,
		ExtractedText:    input.Text,
		Language:         detectLanguage(input.Text),
		ProcessingStatus: domain.ProcessingStatusProcessing,
	}
	if doc.Title == "" {
		doc.Title = documentTitle(input.Text)
	}
	if doc.DocumentType == "" {
		doc.DocumentType = "contract"
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	clauses, err := s.seg.Segment(input.Text, doc.ID)
	if err != nil {
		s.markFailed(ctx, doc.ID, err)
		return nil, err
	}

	if err := s.clauses.CreateBatch(ctx, clauses); err != nil {
		s.markFailed(ctx, doc.ID, err)
		return nil, err
	}
	if err := s.docs.UpdateTotalClauses(ctx, doc.ID, len(clauses)); err != nil {
		log.Printf("documentService.AnalyzeDocument: updating clause count: %v", err)
	}

	analyses := s.analyzer.AnalyzeBatch(ctx, clauses, doc.DocumentType)

	now := time.Now().UTC()
	results := make([]*domain.AnalysisResult, 0, len(analyses))
	byID := make(map[string]*domain.AnalysisResult, len(analyses))
	for _, ca := range analyses {
		byID[ca.ClauseID] = ca.Result
		results = append(results, ca.Result)
	}
	for i := range clauses {
		res, ok := byID[clauses[i].ID]
		if !ok {
			// Batch was canceled before reaching this clause.
			continue
		}
		clauses[i].ApplyAnalysis(res, now)
		if err := s.clauses.UpdateAnalysis(ctx, &clauses[i]); err != nil {
			log.Printf("documentService.AnalyzeDocument: persisting analysis for %s: %v", clauses[i].ID, err)
		}
	}

	s.storeVectors(ctx, clauses)

	summary := analysis.Summarize(results, doc.DocumentType)

	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.ProcessingStatusCompleted, ""); err != nil {
		log.Printf("documentService.AnalyzeDocument: updating status: %v", err)
	}
	doc.ProcessingStatus = domain.ProcessingStatusCompleted
	doc.TotalClauses = len(clauses)

	log.Printf("documentService.AnalyzeDocument: document %s analyzed (%d clauses, risk %.2f)",
		doc.ID, len(clauses), summary.OverallRiskScore)

	return &AnalysisResponse{
		DocumentID:   doc.ID,
		Title:        doc.Title,
		DocumentType: doc.DocumentType,
		Language:     doc.Language,
		Status:       doc.ProcessingStatus,
		TotalClauses: len(clauses),
		Clauses:      clauses,
		Summary:      summary,
		Metadata: DocumentMetadata{
			OverallRiskScore: summary.OverallRiskScore,
			ComplianceStatus: complianceStatus(summary.ComplianceScore),
		},
	}, nil
}

// storeVectors embeds analyzed clauses, upserts them and links each clause to
// its nearest neighbors. All of it is best-effort: failures are logged and
// the document completes without vector data.
func (s *documentService) storeVectors(ctx context.Context, clauses []domain.Clause) {
	if s.embedder == nil || s.vectors == nil || len(clauses) == 0 {
		return
	}

	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		log.Printf("documentService.storeVectors: embedding failed: %v", err)
		return
	}

	points := make([]port.ClausePoint, len(clauses))
	for i, c := range clauses {
		points[i] = port.ClausePoint{
			ClauseID: c.ID,
			Vector:   vecs[i],
			Payload: map[string]interface{}{
				"document_id":     c.DocumentID.String(),
				"clause_type":     string(c.Type),
				"severity_level":  c.SeverityLevel,
				"sequence_number": c.SequenceNumber,
			},
		}
	}
	if err := s.vectors.UpsertClauses(ctx, points); err != nil {
		log.Printf("documentService.storeVectors: upsert failed: %v", err)
		return
	}

	for i := range clauses {
		if err := s.clauses.MarkVectorStored(ctx, clauses[i].ID); err != nil {
			log.Printf("documentService.storeVectors: marking %s: %v", clauses[i].ID, err)
		}
	}

	for i := range clauses {
		related, err := s.vectors.FindRelated(ctx, clauses[i].ID, relatedClauseLimit)
		if err != nil {
			log.Printf("documentService.storeVectors: related lookup for %s: %v", clauses[i].ID, err)
			continue
		}
		if len(related) == 0 {
			continue
		}
		ids := make(domain.StringList, 0, len(related))
		for _, r := range related {
			ids = append(ids, r.ClauseID)
		}
		clauses[i].RelatedClauses = ids
		if err := s.clauses.UpdateRelated(ctx, clauses[i].ID, ids); err != nil {
			log.Printf("documentService.storeVectors: updating related for %s: %v", clauses[i].ID, err)
		}
	}
}

func (s *documentService) markFailed(ctx context.Context, docID uuid.UUID, cause error) {
	if err := s.docs.UpdateStatus(ctx, docID, domain.ProcessingStatusFailed, cause.Error()); err != nil {
		log.Printf("documentService.markFailed: %v", err)
	}
}

func (s *documentService) GetStatus(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docs.GetByID(ctx, docID)
}

func (s *documentService) GetClauses(ctx context.Context, docID uuid.UUID) ([]domain.Clause, error) {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	return s.clauses.ListByDocument(ctx, docID)
}

func (s *documentService) GetClauseDetails(ctx context.Context, clauseID string) (*ClauseDetailsResponse, error) {
	clause, err := s.clauses.GetByID(ctx, clauseID)
	if err != nil {
		return nil, err
	}

	related := make([]domain.Clause, 0, relatedClauseLimit)
	for _, id := range clause.RelatedClauses {
		if len(related) >= relatedClauseLimit {
			break
		}
		rc, err := s.clauses.GetByID(ctx, id)
		if err != nil {
			log.Printf("documentService.GetClauseDetails: related clause %s: %v", id, err)
			continue
		}
		related = append(related, *rc)
	}

	return &ClauseDetailsResponse{Clause: clause, Related: related}, nil
}

func (s *documentService) GetTimeline(ctx context.Context, docID uuid.UUID) (*TimelineResponse, error) {
	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	clauses, err := s.clauses.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("documentService.GetTimeline: %w", domain.ErrNoClauses)
	}
	return buildTimeline(docID, clauses), nil
}

func (s *documentService) ListDocuments(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docs.List(ctx, offset, limit)
}

// Delete removes the document, its clauses and their vectors.
func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	clauses, err := s.clauses.ListByDocument(ctx, docID)
	if err != nil {
		return err
	}
	if s.vectors != nil && len(clauses) > 0 {
		ids := make([]string, len(clauses))
		for i, c := range clauses {
			ids[i] = c.ID
		}
		if err := s.vectors.DeleteClauses(ctx, ids); err != nil {
			log.Printf("documentService.Delete: deleting vectors: %v", err)
		}
	}
	if err := s.clauses.DeleteByDocument(ctx, docID); err != nil {
		return err
	}
	return s.docs.Delete(ctx, docID)
}

// documentTitle derives a title from the first non-empty line.
func documentTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if len(line) > 100 {
				line = truncate(line, 100)
			}
			return line
		}
	}
	return "Untitled Document"
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

var spanishMarkers = []string{" el ", " la ", " los ", " las ", " por ", " para ", " contrato "}

// detectLanguage is a coarse marker-count heuristic; English is the default.
func detectLanguage(text string) string {
	lower := " " + strings.ToLower(text) + " "
	hits := 0
	for _, m := range spanishMarkers {
		hits += strings.Count(lower, m)
	}
	if hits > 5 {
		return "es"
	}
	return "en"
}

// complianceStatus buckets a compliance score.
func complianceStatus(score float64) string {
	switch {
	case score > 75:
		return "compliant"
	case score > 50:
		return "partially_compliant"
	default:
		return "non_compliant"
	}
}
