package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clauselens/internal/domain"
	"clauselens/internal/port"
)

type clauseRepo struct {
	db *sqlx.DB
}

// NewClauseRepo creates a new PostgreSQL-backed ClauseRepository.
func NewClauseRepo(db *sqlx.DB) port.ClauseRepository {
	return &clauseRepo{db: db}
}

func (r *clauseRepo) CreateBatch(ctx context.Context, clauses []domain.Clause) error {
	if len(clauses) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clauseRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO clauses (
		id, document_id, sequence_number, title, text, clause_type,
		start_offset, end_offset,
		severity_level, severity_color, severity_reasoning,
		risk_factors, legal_implications, plain_language_explanation,
		compliance_flags, recommendations, related_clauses,
		confidence_score, analysis_source, model_used, analyzed_at,
		vector_stored, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8,
		$9, $10, $11,
		$12, $13, $14,
		$15, $16, $17,
		$18, $19, $20, $21,
		$22, $23, $24
	)`

	now := time.Now().UTC()
	for i := range clauses {
		c := &clauses[i]
		c.CreatedAt = now
		c.UpdatedAt = now
		_, err := tx.ExecContext(ctx, query,
			c.ID, c.DocumentID, c.SequenceNumber, c.Title, c.Text, c.Type,
			c.StartOffset, c.EndOffset,
			c.SeverityLevel, c.SeverityColor, c.SeverityReasoning,
			c.RiskFactors, c.LegalImplications, c.PlainLanguage,
			c.ComplianceFlags, c.Recommendations, c.RelatedClauses,
			c.ConfidenceScore, c.AnalysisSource, c.ModelUsed, c.AnalyzedAt,
			c.VectorStored, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("clauseRepo.CreateBatch insert %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clauseRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *clauseRepo) GetByID(ctx context.Context, clauseID string) (*domain.Clause, error) {
	var clause domain.Clause
	err := r.db.GetContext(ctx, &clause,
		"SELECT * FROM clauses WHERE id = $1", clauseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClauseNotFound
		}
		return nil, fmt.Errorf("clauseRepo.GetByID: %w", err)
	}
	return &clause, nil
}

func (r *clauseRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Clause, error) {
	var clauses []domain.Clause
	err := r.db.SelectContext(ctx, &clauses,
		"SELECT * FROM clauses WHERE document_id = $1 ORDER BY sequence_number", docID)
	if err != nil {
		return nil, fmt.Errorf("clauseRepo.ListByDocument: %w", err)
	}
	return clauses, nil
}

func (r *clauseRepo) UpdateAnalysis(ctx context.Context, clause *domain.Clause) error {
	clause.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE clauses SET
			severity_level = $1, severity_color = $2, severity_reasoning = $3,
			risk_factors = $4, legal_implications = $5, plain_language_explanation = $6,
			compliance_flags = $7, recommendations = $8,
			confidence_score = $9, analysis_source = $10, model_used = $11,
			analyzed_at = $12, updated_at = $13
		 WHERE id = $14`,
		clause.SeverityLevel, clause.SeverityColor, clause.SeverityReasoning,
		clause.RiskFactors, clause.LegalImplications, clause.PlainLanguage,
		clause.ComplianceFlags, clause.Recommendations,
		clause.ConfidenceScore, clause.AnalysisSource, clause.ModelUsed,
		clause.AnalyzedAt, clause.UpdatedAt,
		clause.ID)
	if err != nil {
		return fmt.Errorf("clauseRepo.UpdateAnalysis: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClauseNotFound
	}
	return nil
}

func (r *clauseRepo) UpdateRelated(ctx context.Context, clauseID string, related domain.StringList) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clauses SET related_clauses = $1, updated_at = $2 WHERE id = $3`,
		related, time.Now().UTC(), clauseID)
	if err != nil {
		return fmt.Errorf("clauseRepo.UpdateRelated: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClauseNotFound
	}
	return nil
}

func (r *clauseRepo) MarkVectorStored(ctx context.Context, clauseID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clauses SET vector_stored = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), clauseID)
	if err != nil {
		return fmt.Errorf("clauseRepo.MarkVectorStored: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClauseNotFound
	}
	return nil
}

func (r *clauseRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM clauses WHERE document_id = $1", docID)
	if err != nil {
		return fmt.Errorf("clauseRepo.DeleteByDocument: %w", err)
	}
	return nil
}
