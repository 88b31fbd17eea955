package port

import "context"

// ClausePoint carries one clause embedding for upsert. ClauseID is the
// internal clause id; implementations are responsible for converting it to
// whatever identifier format the store requires and for making the internal
// id recoverable from search results.
type ClausePoint struct {
	ClauseID string
	Vector   []float32
	Payload  map[string]interface{}
}

// RelatedClause is a similarity hit mapped back to internal ids.
type RelatedClause struct {
	ClauseID string
	Score    float32
	Payload  map[string]interface{}
}

// VectorStore abstracts the clause-embedding store.
type VectorStore interface {
	UpsertClauses(ctx context.Context, points []ClausePoint) error
	FindRelated(ctx context.Context, clauseID string, limit int) ([]RelatedClause, error)
	DeleteClauses(ctx context.Context, clauseIDs []string) error
}
