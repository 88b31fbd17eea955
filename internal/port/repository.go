package port

import (
	"context"

	"github.com/google/uuid"

	"clauselens/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.ProcessingStatus, processingError string) error
	UpdateTotalClauses(ctx context.Context, docID uuid.UUID, total int) error
	Delete(ctx context.Context, docID uuid.UUID) error
}

// ClauseRepository defines the contract for clause persistence. Listing is
// always ordered by sequence_number.
type ClauseRepository interface {
	CreateBatch(ctx context.Context, clauses []domain.Clause) error
	GetByID(ctx context.Context, clauseID string) (*domain.Clause, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Clause, error)
	UpdateAnalysis(ctx context.Context, clause *domain.Clause) error
	UpdateRelated(ctx context.Context, clauseID string, related domain.StringList) error
	MarkVectorStored(ctx context.Context, clauseID string) error
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}
