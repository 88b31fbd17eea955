package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clauselens/internal/analysis"
	"clauselens/internal/domain"
	"clauselens/internal/segmenter"
	"clauselens/internal/service"
)

type mockDocumentRepo struct {
	mock.Mock
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *mockDocumentRepo) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.ProcessingStatus, processingError string) error {
	args := m.Called(ctx, docID, status, processingError)
	return args.Error(0)
}

func (m *mockDocumentRepo) UpdateTotalClauses(ctx context.Context, docID uuid.UUID, total int) error {
	args := m.Called(ctx, docID, total)
	return args.Error(0)
}

func (m *mockDocumentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

type mockClauseRepo struct {
	mock.Mock
}

func (m *mockClauseRepo) CreateBatch(ctx context.Context, clauses []domain.Clause) error {
	args := m.Called(ctx, clauses)
	return args.Error(0)
}

func (m *mockClauseRepo) GetByID(ctx context.Context, clauseID string) (*domain.Clause, error) {
	args := m.Called(ctx, clauseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Clause), args.Error(1)
}

func (m *mockClauseRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Clause, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Clause), args.Error(1)
}

func (m *mockClauseRepo) UpdateAnalysis(ctx context.Context, clause *domain.Clause) error {
	args := m.Called(ctx, clause)
	return args.Error(0)
}

func (m *mockClauseRepo) UpdateRelated(ctx context.Context, clauseID string, related domain.StringList) error {
	args := m.Called(ctx, clauseID, related)
	return args.Error(0)
}

func (m *mockClauseRepo) MarkVectorStored(ctx context.Context, clauseID string) error {
	args := m.Called(ctx, clauseID)
	return args.Error(0)
}

func (m *mockClauseRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func newTestService(docs *mockDocumentRepo, clauses *mockClauseRepo) service.DocumentService {
	seg := segmenter.New(segmenter.DefaultConfig())
	// No providers configured: every clause takes the heuristic path, which
	// keeps the pipeline deterministic and offline.
	analyzer := analysis.NewAnalyzer(nil, analysis.Config{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})
	return service.NewDocumentService(docs, clauses, seg, analyzer, nil, nil)
}

func TestAnalyzeDocument_FullPipeline(t *testing.T) {
	docs := &mockDocumentRepo{}
	clauses := &mockClauseRepo{}

	docs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	docs.On("UpdateTotalClauses", mock.Anything, mock.Anything, 2).Return(nil).Once()
	docs.On("UpdateStatus", mock.Anything, mock.Anything, domain.ProcessingStatusCompleted, "").Return(nil).Once()
	clauses.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()
	clauses.On("UpdateAnalysis", mock.Anything, mock.Anything).Return(nil).Times(2)

	svc := newTestService(docs, clauses)
	resp, err := svc.AnalyzeDocument(context.Background(), &service.AnalyzeDocumentInput{
		Title:        "Test Lease",
		DocumentType: "rental_agreement",
		Text:         "1. Rent\n\nTenant pays $500 per month.\n\n2. Termination\n\nEither party may terminate with 30 days notice.",
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Test Lease", resp.Title)
	assert.Equal(t, domain.ProcessingStatusCompleted, resp.Status)
	assert.Equal(t, 2, resp.TotalClauses)
	require.Len(t, resp.Clauses, 2)

	// No providers: everything is fallback-analyzed but still complete.
	for _, c := range resp.Clauses {
		assert.Equal(t, domain.SourceFallback, c.AnalysisSource)
		assert.NotEmpty(t, c.SeverityReasoning)
		assert.NotNil(t, c.AnalyzedAt)
	}

	require.NotNil(t, resp.Summary)
	assert.GreaterOrEqual(t, resp.Summary.ComplianceScore, 0.0)
	assert.LessOrEqual(t, resp.Summary.ComplianceScore, 100.0)
	assert.NotEmpty(t, resp.Metadata.ComplianceStatus)

	docs.AssertExpectations(t)
	clauses.AssertExpectations(t)
}

func TestAnalyzeDocument_EmptyText(t *testing.T) {
	svc := newTestService(&mockDocumentRepo{}, &mockClauseRepo{})

	_, err := svc.AnalyzeDocument(context.Background(), &service.AnalyzeDocumentInput{Text: "   "})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}

func TestAnalyzeDocument_PersistFailureMarksFailed(t *testing.T) {
	docs := &mockDocumentRepo{}
	clauses := &mockClauseRepo{}

	docs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	clauses.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	docs.On("UpdateStatus", mock.Anything, mock.Anything, domain.ProcessingStatusFailed, mock.Anything).Return(nil).Once()

	svc := newTestService(docs, clauses)
	_, err := svc.AnalyzeDocument(context.Background(), &service.AnalyzeDocumentInput{
		Text: "1. Rent\n\nTenant pays $500 per month.",
	})

	require.Error(t, err)
	docs.AssertExpectations(t)
	clauses.AssertExpectations(t)
}

func TestGetClauseDetails_HydratesRelated(t *testing.T) {
	docs := &mockDocumentRepo{}
	clauses := &mockClauseRepo{}

	main := &domain.Clause{
		ID:             "clause_x_001",
		RelatedClauses: domain.StringList{"clause_x_002", "clause_x_003"},
	}
	clauses.On("GetByID", mock.Anything, "clause_x_001").Return(main, nil).Once()
	clauses.On("GetByID", mock.Anything, "clause_x_002").Return(&domain.Clause{ID: "clause_x_002"}, nil).Once()
	clauses.On("GetByID", mock.Anything, "clause_x_003").Return(nil, domain.ErrClauseNotFound).Once()

	svc := newTestService(docs, clauses)
	details, err := svc.GetClauseDetails(context.Background(), "clause_x_001")

	require.NoError(t, err)
	assert.Equal(t, "clause_x_001", details.Clause.ID)
	// The missing related clause is skipped, not fatal.
	require.Len(t, details.Related, 1)
	assert.Equal(t, "clause_x_002", details.Related[0].ID)
	clauses.AssertExpectations(t)
}

func TestDelete_RemovesClausesThenDocument(t *testing.T) {
	docs := &mockDocumentRepo{}
	clauses := &mockClauseRepo{}
	docID := uuid.New()

	clauses.On("ListByDocument", mock.Anything, docID).Return([]domain.Clause{{ID: "c1"}}, nil).Once()
	clauses.On("DeleteByDocument", mock.Anything, docID).Return(nil).Once()
	docs.On("Delete", mock.Anything, docID).Return(nil).Once()

	svc := newTestService(docs, clauses)
	err := svc.Delete(context.Background(), docID)

	require.NoError(t, err)
	docs.AssertExpectations(t)
	clauses.AssertExpectations(t)
}
