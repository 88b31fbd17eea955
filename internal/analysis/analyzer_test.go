package analysis_test

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
	"clauselens/internal/port"
	"clauselens/internal/provider"
)

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func fastConfig() analysis.Config {
	return analysis.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}
}

func TestAnalyzeClause_WrappedJSONParsed(t *testing.T) {
	p := &mockProvider{name: "openai"}
	p.On("Complete", mock.Anything, mock.Anything).
		Return("Sure, here you go:\n```json\n"+validJSON+"\n```", nil).Once()

	a := analysis.NewAnalyzer([]port.ReasoningProvider{p}, fastConfig())
	res := a.AnalyzeClause(context.Background(), "clause text", domain.ClauseTypeLiability, "contract")

	require.NotNil(t, res)
	assert.Equal(t, domain.SourceModel, res.Source)
	assert.Equal(t, "openai", res.ModelUsed)
	assert.Equal(t, 4, res.SeverityLevel)
	p.AssertExpectations(t)
}

func TestAnalyzeClause_AllAttemptsFailFallsBack(t *testing.T) {
	p := &mockProvider{name: "openai"}
	p.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.New("connection refused")).Times(3)

	a := analysis.NewAnalyzer([]port.ReasoningProvider{p}, fastConfig())
	res := a.AnalyzeClause(context.Background(), "clause text", domain.ClauseTypeGeneral, "contract")

	require.NotNil(t, res)
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, 0.2, res.ConfidenceScore)
	assert.Contains(t, res.LegalImplications, "AI Error")
	assert.Contains(t, res.SeverityReasoning, "connection refused")
	p.AssertExpectations(t)
}

func TestAnalyzeClause_UnparseableOutputRetriesThenFallsBack(t *testing.T) {
	p := &mockProvider{name: "gemini"}
	p.On("Complete", mock.Anything, mock.Anything).
		Return("I cannot produce structured output right now", nil).Times(3)

	a := analysis.NewAnalyzer([]port.ReasoningProvider{p}, fastConfig())
	res := a.AnalyzeClause(context.Background(), "clause text", domain.ClauseTypeGeneral, "contract")

	require.NotNil(t, res)
	assert.Equal(t, domain.SourceFallback, res.Source)
	p.AssertExpectations(t)
}

func TestAnalyzeClause_NoProviderFallsBack(t *testing.T) {
	a := analysis.NewAnalyzer(nil, fastConfig())
	res := a.AnalyzeClause(context.Background(), "clause text", domain.ClauseTypePayment, "contract")

	require.NotNil(t, res)
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Contains(t, res.SeverityReasoning, "AI Error")
}

func TestAnalyzeClause_PreferredProviderSelected(t *testing.T) {
	first := &mockProvider{name: "openai"}
	preferred := &mockProvider{name: "gemini"}
	preferred.On("Complete", mock.Anything, mock.Anything).Return(validJSON, nil).Once()

	cfg := fastConfig()
	cfg.Preference = "gemini"
	a := analysis.NewAnalyzer([]port.ReasoningProvider{first, preferred}, cfg)
	res := a.AnalyzeClause(context.Background(), "clause text", domain.ClauseTypeGeneral, "contract")

	assert.Equal(t, "gemini", res.ModelUsed)
	first.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	preferred.AssertExpectations(t)
}

func TestAnalyzeClause_RateLimitHonorsRetryAfter(t *testing.T) {
	p := &mockProvider{name: "openai"}
	rlErr := &provider.RateLimitError{
		Err:        errors.New("too many requests"),
		RetryAfter: 30 * time.Millisecond,
		Provider:   "openai",
	}
	p.On("Complete", mock.Anything, mock.Anything).Return("", rlErr).Times(2)

	cfg := fastConfig()
	cfg.MaxAttempts = 2
	a := analysis.NewAnalyzer([]port.ReasoningProvider{p}, cfg)

	start := time.Now()
	res := a.AnalyzeClause(context.Background(), "Tenant shall pay rent monthly.", domain.ClauseTypePayment, "rental_agreement")
	elapsed := time.Since(start)

	// The second attempt waits out the provider's Retry-After, not just the
	// millisecond base delay.
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	require.NotNil(t, res)
	assert.Equal(t, domain.SourceFallback, res.Source)
	p.AssertExpectations(t)
}

func TestAnalyzeBatch_NeverFailsPerClause(t *testing.T) {
	p := &mockProvider{name: "openai"}
	p.On("Complete", mock.Anything, mock.Anything).Return(validJSON, nil).Once()
	p.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("boom"))

	docID := uuid.New()
	clauses := []domain.Clause{
		{ID: "clause_a", DocumentID: docID, Text: "first clause", Type: domain.ClauseTypePayment},
		{ID: "clause_b", DocumentID: docID, Text: "second clause", Type: domain.ClauseTypeLiability},
	}

	a := analysis.NewAnalyzer([]port.ReasoningProvider{p}, fastConfig())
	results := a.AnalyzeBatch(context.Background(), clauses, "contract")

	require.Len(t, results, 2)
	assert.Equal(t, "clause_a", results[0].ClauseID)
	assert.Equal(t, domain.SourceModel, results[0].Result.Source)
	assert.Equal(t, "clause_b", results[1].ClauseID)
	assert.Equal(t, domain.SourceFallback, results[1].Result.Source)
}

func TestAnalyzeBatch_CanceledContextStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := analysis.NewAnalyzer(nil, fastConfig())
	results := a.AnalyzeBatch(ctx, []domain.Clause{
		{ID: "clause_a", Text: "text", Type: domain.ClauseTypeGeneral},
	}, "contract")

	assert.Empty(t, results)
}

func TestHealthCheck(t *testing.T) {
	healthy := &mockProvider{name: "openai"}
	healthy.On("Complete", mock.Anything, mock.Anything).Return("OK", nil).Once()
	broken := &mockProvider{name: "gemini"}
	broken.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()

	a := analysis.NewAnalyzer([]port.ReasoningProvider{healthy, broken}, fastConfig())
	statuses := a.HealthCheck(context.Background())

	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Available)
	assert.Empty(t, statuses[0].Error)
	assert.False(t, statuses[1].Available)
	assert.Contains(t, statuses[1].Error, "timeout")
}
