package vectorstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"clauselens/internal/port"
)

const payloadClauseIDKey = "original_clause_id"

// Config configures the Qdrant-backed clause store.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	Collection     string
	VectorSize     uint64
	RequestTimeout time.Duration
	RetryAttempts  int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "legal_clauses"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 1536
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
}

// QdrantStore implements port.VectorStore over Qdrant's gRPC API.
type QdrantStore struct {
	client *qdrant.Client
	cfg    Config
	ids    *PointIDMapper
}

// New connects to Qdrant, verifies the connection and ensures the clause
// collection exists.
func New(ctx context.Context, cfg Config) (*QdrantStore, error) {
	cfg.ApplyDefaults()

	qdrantConfig := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	}
	if !cfg.UseTLS {
		qdrantConfig.GrpcOptions = append(qdrantConfig.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qdrantConfig)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	store := &QdrantStore{
		client: client,
		cfg:    cfg,
		ids:    NewPointIDMapper(),
	}

	healthCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if _, err := client.HealthCheck(healthCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("qdrant health check failed: %w", err)
	}

	if err := store.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Printf("vectorstore.New: connected to qdrant at %s:%d (collection %q)",
		cfg.Host, cfg.Port, cfg.Collection)
	return store, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	_, err := s.client.GetCollectionInfo(ctx, s.cfg.Collection)
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); !ok || st.Code() != codes.NotFound {
		return fmt.Errorf("checking collection %q: %w", s.cfg.Collection, err)
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", s.cfg.Collection, err)
	}
	return nil
}

// UpsertClauses stores clause embeddings. The internal clause id always
// travels in the payload so search hits can be mapped back even when the id
// cache is cold.
func (s *QdrantStore) UpsertClauses(ctx context.Context, points []port.ClausePoint) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload := make(map[string]*qdrant.Value, len(p.Payload)+1)
		for k, v := range p.Payload {
			payload[k] = toQdrantValue(v)
		}
		payload[payloadClauseIDKey] = toQdrantValue(p.ClauseID)

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(s.ids.ToExternal(p.ClauseID)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		}
	}

	return s.retry(ctx, func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.cfg.Collection,
			Points:         qdrantPoints,
		})
		return err
	})
}

// FindRelated retrieves the stored vector for a clause and searches for its
// nearest neighbors, excluding the clause itself.
func (s *QdrantStore) FindRelated(ctx context.Context, clauseID string, limit int) ([]port.RelatedClause, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	externalID := s.ids.ToExternal(clauseID)

	var stored []*qdrant.RetrievedPoint
	err := s.retry(ctx, func() error {
		res, err := s.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: s.cfg.Collection,
			Ids:            []*qdrant.PointId{qdrant.NewIDUUID(externalID)},
			WithVectors: &qdrant.WithVectorsSelector{
				SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true},
			},
		})
		if err != nil {
			return err
		}
		stored = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving clause vector: %w", err)
	}
	if len(stored) == 0 {
		return nil, nil
	}
	vector := extractVector(stored[0].Vectors)
	if vector == nil {
		return nil, nil
	}

	var hits []*qdrant.ScoredPoint
	err = s.retry(ctx, func() error {
		res, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: s.cfg.Collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(limit)),
			WithPayload:    qdrant.NewWithPayload(true),
			Filter: &qdrant.Filter{
				MustNot: []*qdrant.Condition{
					{
						ConditionOneOf: &qdrant.Condition_HasId{
							HasId: &qdrant.HasIdCondition{
								HasId: []*qdrant.PointId{qdrant.NewIDUUID(externalID)},
							},
						},
					},
				},
			},
		})
		if err != nil {
			return err
		}
		hits = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching related clauses: %w", err)
	}

	related := make([]port.RelatedClause, 0, len(hits))
	for _, hit := range hits {
		payload := extractPayload(hit.Payload)
		internal := ""
		if v, ok := payload[payloadClauseIDKey].(string); ok && v != "" {
			internal = v
		} else {
			internal = s.ids.ToInternal(pointIDString(hit.Id))
		}
		related = append(related, port.RelatedClause{
			ClauseID: internal,
			Score:    hit.Score,
			Payload:  payload,
		})
	}
	return related, nil
}

// DeleteClauses removes the points for the given internal clause ids.
func (s *QdrantStore) DeleteClauses(ctx context.Context, clauseIDs []string) error {
	if len(clauseIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	pointIDs := make([]*qdrant.PointId, len(clauseIDs))
	for i, id := range clauseIDs {
		pointIDs[i] = qdrant.NewIDUUID(s.ids.ToExternal(id))
	}

	return s.retry(ctx, func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: s.cfg.Collection,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Points{
					Points: &qdrant.PointsIdsList{
						Ids: pointIDs,
					},
				},
			},
		})
		return err
	})
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// retry retries transient gRPC failures with doubling backoff.
func (s *QdrantStore) retry(ctx context.Context, operation func() error) error {
	var lastErr error
	backoff := time.Second
	for attempt := 0; attempt <= s.cfg.RetryAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) || attempt == s.cfg.RetryAttempts {
			break
		}
		log.Printf("vectorstore.retry: attempt %d/%d failed: %v", attempt+1, s.cfg.RetryAttempts, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return lastErr
}

func isTransient(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}

func toQdrantValue(v interface{}) *qdrant.Value {
	switch val := v.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", val)}}
	}
}

func extractPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}
	result := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

func extractValue(v *qdrant.Value) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	default:
		return nil
	}
}

func extractVector(vectors *qdrant.VectorsOutput) []float32 {
	if vectors == nil {
		return nil
	}
	if vec := vectors.GetVector(); vec != nil {
		if dense := vec.GetDense(); dense != nil {
			return dense.GetData()
		}
	}
	return nil
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	if n := id.GetNum(); n != 0 {
		return fmt.Sprintf("%d", n)
	}
	return ""
}

var _ port.VectorStore = (*QdrantStore)(nil)
