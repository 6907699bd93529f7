package preferences

import (
	"encoding/json"
	"sync"

	"github.com/patrickmn/go-cache"

	"boltdesk/internal/models"
)

// APIKeyMemo caches the parsed api-keys document by its exact serialized
// form, so repeated reads of an unchanged document return the same map.
// Only the latest document is kept; a superseded one, secrets included, is
// dropped as soon as a different document is parsed.
type APIKeyMemo struct {
	mu     sync.Mutex
	parsed *cache.Cache
}

func NewAPIKeyMemo() *APIKeyMemo {
	return &APIKeyMemo{parsed: cache.New(cache.NoExpiration, 0)}
}

// Parse returns the memoized map for raw, parsing it on first sight.
// Malformed input is not memoized.
func (m *APIKeyMemo) Parse(raw string) (models.APIKeys, error) {
	if v, ok := m.parsed.Get(raw); ok {
		return v.(models.APIKeys), nil
	}
	var keys models.APIKeys
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = models.APIKeys{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.parsed.Get(raw); ok {
		return v.(models.APIKeys), nil
	}
	m.parsed.Flush()
	m.parsed.Set(raw, keys, cache.NoExpiration)
	return keys, nil
}

// Len reports how many serialized documents are cached, at most one.
func (m *APIKeyMemo) Len() int {
	return m.parsed.ItemCount()
}
