package service

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"clauselens/internal/domain"
)

const criticalCheckpointLimit = 5

// TimelineItem places one clause on the document's visual timeline.
type TimelineItem struct {
	ClauseID        string            `json:"clause_id"`
	SequenceNumber  int               `json:"sequence_number"`
	Title           string            `json:"title"`
	ClauseType      domain.ClauseType `json:"clause_type"`
	SeverityLevel   int               `json:"severity_level"`
	SeverityColor   string            `json:"severity_color"`
	PositionPercent float64           `json:"position_percent"`
	VisualIndicator string            `json:"visual_indicator"`
}

// TimelineResponse is the navigation view over a document's clauses.
type TimelineResponse struct {
	DocumentID          uuid.UUID      `json:"document_id"`
	TotalClauses        int            `json:"total_clauses"`
	Items               []TimelineItem `json:"items"`
	CriticalCheckpoints []string       `json:"critical_checkpoints"`
	RecommendedFlow     []int          `json:"recommended_flow"`
}

// buildTimeline lays clauses out by sequence position. Checkpoints are the
// first five high-severity clauses; the recommended flow samples the start,
// quartiles and end of the document.
func buildTimeline(docID uuid.UUID, clauses []domain.Clause) *TimelineResponse {
	total := len(clauses)
	items := make([]TimelineItem, 0, total)
	var checkpoints []string

	for _, c := range clauses {
		position := 0.0
		if total > 1 {
			position = float64(c.SequenceNumber-1) / float64(total-1) * 100.0
		}
		items = append(items, TimelineItem{
			ClauseID:        c.ID,
			SequenceNumber:  c.SequenceNumber,
			Title:           c.Title,
			ClauseType:      c.Type,
			SeverityLevel:   c.SeverityLevel,
			SeverityColor:   c.SeverityColor,
			PositionPercent: math.Round(position*10) / 10,
			VisualIndicator: visualIndicator(c.SeverityLevel),
		})
		if c.SeverityLevel >= 4 && len(checkpoints) < criticalCheckpointLimit {
			checkpoints = append(checkpoints, c.ID)
		}
	}

	return &TimelineResponse{
		DocumentID:          docID,
		TotalClauses:        total,
		Items:               items,
		CriticalCheckpoints: checkpoints,
		RecommendedFlow:     recommendedFlow(total),
	}
}

func visualIndicator(severity int) string {
	switch {
	case severity >= 4:
		return "circle_ring_red"
	case severity >= 3:
		return "circle_ring_orange"
	default:
		return "circle_ring_green"
	}
}

// recommendedFlow returns a sorted, deduplicated set of sequence numbers
// sampling the document: start, quartiles, end.
func recommendedFlow(total int) []int {
	if total == 0 {
		return nil
	}
	raw := []int{1, total / 4, total / 2, 3 * total / 4, total}
	seen := make(map[int]bool, len(raw))
	var flow []int
	for _, n := range raw {
		if n < 1 {
			continue
		}
		if !seen[n] {
			seen[n] = true
			flow = append(flow, n)
		}
	}
	sort.Ints(flow)
	return flow
}
