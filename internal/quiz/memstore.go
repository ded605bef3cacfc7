package quiz

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory quiz store for tests and local development.
type MemStore struct {
	mu      sync.RWMutex
	quizzes map[uuid.UUID]*Quiz
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{quizzes: make(map[uuid.UUID]*Quiz)}
}

// Put registers a quiz definition.
func (s *MemStore) Put(q *Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
}

// GetQuiz returns the quiz or ErrNotFound.
func (s *MemStore) GetQuiz(_ context.Context, id uuid.UUID) (*Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return q, nil
}
