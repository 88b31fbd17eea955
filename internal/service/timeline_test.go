package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clauselens/internal/domain"
)

func makeClauses(severities ...int) []domain.Clause {
	clauses := make([]domain.Clause, len(severities))
	for i, sev := range severities {
		clauses[i] = domain.Clause{
			ID:             uuid.New().String(),
			SequenceNumber: i + 1,
			SeverityLevel:  sev,
			SeverityColor:  domain.SeverityColor(sev),
		}
	}
	return clauses
}

func TestBuildTimeline_Positions(t *testing.T) {
	docID := uuid.New()
	clauses := makeClauses(2, 3, 5)

	tl := buildTimeline(docID, clauses)

	require.Len(t, tl.Items, 3)
	assert.Equal(t, 0.0, tl.Items[0].PositionPercent)
	assert.Equal(t, 50.0, tl.Items[1].PositionPercent)
	assert.Equal(t, 100.0, tl.Items[2].PositionPercent)
	assert.Equal(t, 3, tl.TotalClauses)
	assert.Equal(t, docID, tl.DocumentID)
}

func TestBuildTimeline_VisualIndicators(t *testing.T) {
	tl := buildTimeline(uuid.New(), makeClauses(1, 3, 4, 5))

	assert.Equal(t, "circle_ring_green", tl.Items[0].VisualIndicator)
	assert.Equal(t, "circle_ring_orange", tl.Items[1].VisualIndicator)
	assert.Equal(t, "circle_ring_red", tl.Items[2].VisualIndicator)
	assert.Equal(t, "circle_ring_red", tl.Items[3].VisualIndicator)
}

func TestBuildTimeline_CriticalCheckpointsCapped(t *testing.T) {
	tl := buildTimeline(uuid.New(), makeClauses(5, 5, 5, 5, 5, 5, 5))

	assert.Len(t, tl.CriticalCheckpoints, 5)
	assert.Equal(t, tl.Items[0].ClauseID, tl.CriticalCheckpoints[0])
}

func TestBuildTimeline_SingleClause(t *testing.T) {
	tl := buildTimeline(uuid.New(), makeClauses(3))

	require.Len(t, tl.Items, 1)
	assert.Equal(t, 0.0, tl.Items[0].PositionPercent)
	assert.Equal(t, []int{1}, tl.RecommendedFlow)
}

func TestRecommendedFlow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 4, 6, 8}, recommendedFlow(8))
	assert.Equal(t, []int{1, 2}, recommendedFlow(2))
	assert.Nil(t, recommendedFlow(0))

	flow := recommendedFlow(100)
	for i := 1; i < len(flow); i++ {
		assert.Greater(t, flow[i], flow[i-1])
	}
}
