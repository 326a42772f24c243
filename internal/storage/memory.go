package storage

import (
	"context"
	"sync"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// DefaultHistory is how many performances the memory store keeps
const DefaultHistory = 32

// MemoryStore keeps recent performances in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	items   []*models.Performance
	history int
}

// NewMemoryStore creates a store that keeps the last history performances
func NewMemoryStore(history int) *MemoryStore {
	if history <= 0 {
		history = DefaultHistory
	}
	return &MemoryStore{history: history}
}

// Save implements playback.Store
func (s *MemoryStore) Save(_ context.Context, p *models.Performance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, p)
	if len(s.items) > s.history {
		s.items = append([]*models.Performance(nil), s.items[len(s.items)-s.history:]...)
	}
	return nil
}

// Latest implements playback.Store
func (s *MemoryStore) Latest(_ context.Context) (*models.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return nil, playback.ErrNoPerformance
	}
	return s.items[len(s.items)-1], nil
}

// Get returns a stored performance by ID
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].ID == id {
			return s.items[i], nil
		}
	}
	return nil, playback.ErrNoPerformance
}
