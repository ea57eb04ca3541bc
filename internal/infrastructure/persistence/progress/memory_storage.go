package progress

import (
	"sync"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
)

// MemoryStorage holds the encoded document in memory. Progress does not
// survive a restart; it is used for demos and tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	key  string
}

func NewMemoryStorage(key string) *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte), key: key}
}

func (s *MemoryStorage) Describe() string { return "memory#" + s.key }

func (s *MemoryStorage) Load() (progress.Collection, error) {
	s.mu.Lock()
	raw, ok := s.data[s.key]
	s.mu.Unlock()
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return Decode(raw)
}

func (s *MemoryStorage) Save(c progress.Collection) error {
	raw, err := Encode(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[s.key] = raw
	s.mu.Unlock()
	return nil
}

// SetRaw stores an arbitrary value under the key, bypassing encoding.
func (s *MemoryStorage) SetRaw(raw []byte) {
	s.mu.Lock()
	s.data[s.key] = raw
	s.mu.Unlock()
}
