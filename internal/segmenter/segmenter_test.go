package segmenter_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clauselens/internal/domain"
	"clauselens/internal/segmenter"
)

func TestSegment_NumberedLease(t *testing.T) {
	text := "1. Rent\n\nTenant pays $500 per month.\n\n2. Termination\n\nEither party may terminate with 30 days notice."
	docID := uuid.New()

	s := segmenter.New(segmenter.DefaultConfig())
	clauses, err := s.Segment(text, docID)

	require.NoError(t, err)
	require.Len(t, clauses, 2)

	assert.Equal(t, 1, clauses[0].SequenceNumber)
	assert.Equal(t, "Rent", clauses[0].Title)
	assert.Equal(t, domain.ClauseTypePayment, clauses[0].Type)
	assert.Contains(t, clauses[0].Text, "Tenant pays $500 per month.")

	assert.Equal(t, 2, clauses[1].SequenceNumber)
	assert.Equal(t, "Termination", clauses[1].Title)
	assert.Equal(t, domain.ClauseTypeTermination, clauses[1].Type)

	assert.Equal(t, fmt.Sprintf("clause_%s_001", docID), clauses[0].ID)
	assert.Equal(t, fmt.Sprintf("clause_%s_002", docID), clauses[1].ID)
}

func TestSegment_MultibyteTitleTruncatedOnRuneBoundary(t *testing.T) {
	// A numbered heading of 3-byte runes longer than the 100-byte title cap
	// must not be cut mid-rune.
	text := "1. " + strings.Repeat("…", 40) + "\n\nEl arrendatario pagará la renta mensual el primer día de cada mes."

	s := segmenter.New(segmenter.DefaultConfig())
	clauses, err := s.Segment(text, uuid.New())

	require.NoError(t, err)
	require.NotEmpty(t, clauses)
	for _, c := range clauses {
		assert.True(t, utf8.ValidString(c.Title), "title must stay valid UTF-8: %q", c.Title)
		assert.LessOrEqual(t, len(c.Title), 100)
		assert.True(t, utf8.ValidString(c.Text))
	}
}

func TestSegment_EmptyText(t *testing.T) {
	s := segmenter.New(segmenter.DefaultConfig())

	_, err := s.Segment("   \n\n  ", uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoClauses))
}

func TestSegment_WholeDocumentSurvivor(t *testing.T) {
	// Too short for any candidate to survive; the whole text becomes one clause.
	text := "Short text."
	s := segmenter.New(segmenter.DefaultConfig())

	clauses, err := s.Segment(text, uuid.New())
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, "Short text.", clauses[0].Text)
	assert.Equal(t, 1, clauses[0].SequenceNumber)
	assert.Equal(t, 0, clauses[0].StartOffset)
}

func TestSegment_SequenceNumbersContiguous(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "%d. Clause heading number %d\n\n", i, i)
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat(fmt.Sprintf("Body sentence %d for padding purposes. ", i), 8))
	}
	s := segmenter.New(segmenter.DefaultConfig())

	clauses, err := s.Segment(b.String(), uuid.New())
	require.NoError(t, err)
	require.NotEmpty(t, clauses)
	for i, c := range clauses {
		assert.Equal(t, i+1, c.SequenceNumber)
		assert.LessOrEqual(t, c.StartOffset, c.EndOffset)
		if i > 0 {
			assert.GreaterOrEqual(t, c.StartOffset, clauses[i-1].StartOffset)
		}
	}
}

func TestSegment_Idempotent(t *testing.T) {
	text := "1. Payment\n\nRent of $1200 is due on the first of each month without demand or notice.\n\n2. Insurance\n\nTenant shall maintain renters insurance coverage for the duration of the lease term."
	docID := uuid.New()
	s := segmenter.New(segmenter.DefaultConfig())

	first, err := s.Segment(text, docID)
	require.NoError(t, err)
	second, err := s.Segment(text, docID)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].StartOffset, second[i].StartOffset)
		assert.Equal(t, first[i].EndOffset, second[i].EndOffset)
	}
}

func TestSegment_UnicodeBullets(t *testing.T) {
	text := "• 1. Payment of rent is due monthly on the first day of each month without demand.\n\n• 2. Termination requires thirty days written notice delivered to the other party."
	s := segmenter.New(segmenter.DefaultConfig())

	clauses, err := s.Segment(text, uuid.New())
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.Equal(t, domain.ClauseTypePayment, clauses[0].Type)
	assert.Equal(t, domain.ClauseTypeTermination, clauses[1].Type)
}

func TestSegment_MergesShortSameTypeNeighbor(t *testing.T) {
	text := "Payment of rent shall be made monthly to the landlord at the stated address.\n\nPayment of fees shall be made quarterly in advance always."
	s := segmenter.New(segmenter.DefaultConfig())

	clauses, err := s.Segment(text, uuid.New())
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, domain.ClauseTypePayment, clauses[0].Type)
	assert.Contains(t, clauses[0].Text, "quarterly in advance")
}

func TestSegment_CapsClauseCount(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "%d. Clause number %d covers general obligations in sixty characters.\n\n", i, i)
	}
	s := segmenter.New(segmenter.Config{
		MinClauseLen:   50,
		MergeThreshold: 1, // disable the same-type merge for this test
		MaxClauses:     5,
		BucketSize:     100,
	})

	clauses, err := s.Segment(b.String(), uuid.New())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(clauses), 5)
	for i, c := range clauses {
		assert.Equal(t, i+1, c.SequenceNumber)
	}
}

func TestSegment_DefaultsApplied(t *testing.T) {
	// Zero config falls back to defaults rather than dropping everything.
	s := segmenter.New(segmenter.Config{})
	clauses, err := s.Segment("1. Rent\n\nTenant pays $500 per month.", uuid.New())
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, 3, clauses[0].SeverityLevel)
	assert.Equal(t, domain.SeverityColor(3), clauses[0].SeverityColor)
	assert.Equal(t, 0.5, clauses[0].ConfidenceScore)
}
