package vectorstore

import (
	"crypto/sha256"
	"sync"

	"github.com/google/uuid"
)

// PointIDMapper converts internal clause ids into the UUID point ids the
// vector store requires. Conversion is deterministic: the same internal id
// always maps to the same UUID, across processes and restarts, so re-upserts
// overwrite rather than duplicate. The reverse direction is served from an
// in-memory cache and, when the cache misses, from the point payload.
type PointIDMapper struct {
	mu       sync.RWMutex
	toUUID   map[string]string
	fromUUID map[string]string
}

func NewPointIDMapper() *PointIDMapper {
	return &PointIDMapper{
		toUUID:   make(map[string]string),
		fromUUID: make(map[string]string),
	}
}

// ToExternal returns the UUID point id for an internal clause id. Ids that
// already parse as UUIDs pass through unchanged; anything else is hashed
// with SHA-256 and the first sixteen bytes become the UUID.
func (m *PointIDMapper) ToExternal(internalID string) string {
	m.mu.RLock()
	if ext, ok := m.toUUID[internalID]; ok {
		m.mu.RUnlock()
		return ext
	}
	m.mu.RUnlock()

	var ext string
	if _, err := uuid.Parse(internalID); err == nil {
		ext = internalID
	} else {
		sum := sha256.Sum256([]byte(internalID))
		id, err := uuid.FromBytes(sum[:16])
		if err != nil {
			// Unreachable: FromBytes fails only on length mismatch.
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(internalID))
		}
		ext = id.String()
	}

	m.mu.Lock()
	m.toUUID[internalID] = ext
	m.fromUUID[ext] = internalID
	m.mu.Unlock()
	return ext
}

// ToInternal reverses ToExternal via the cache. Unknown external ids are
// returned unchanged; callers fall back to the payload's original id field.
func (m *PointIDMapper) ToInternal(externalID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if internal, ok := m.fromUUID[externalID]; ok {
		return internal
	}
	return externalID
}
