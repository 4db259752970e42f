package session

import (
	"context"
	"sync"

	"github.com/acldev/aclauth/internal"
)

// MemoryStore is an in-process session for tests and single-node embedding.
// It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	key    string
	values map[string]string
}

// NewMemoryStore returns an empty anonymous session.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		key:    internal.NewSessionKey(),
		values: make(map[string]string),
	}
}

// Key returns the current session key.
func (s *MemoryStore) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

func (s *MemoryStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name], nil
}

func (s *MemoryStore) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *MemoryStore) Destroy(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}

func (s *MemoryStore) Recreate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.key = internal.NewSessionKey()
	return nil
}
