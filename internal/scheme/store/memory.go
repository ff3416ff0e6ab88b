package store

import (
	"context"
	"sync"

	"sarkar/internal/scheme/models"
)

// InMemoryStore keeps the catalog in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	order   []string
	schemes map[string]models.Scheme
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{schemes: make(map[string]models.Scheme)}
}

func (s *InMemoryStore) ListActiveSchemes(_ context.Context) ([]models.Scheme, error) {
	return s.list(func(sc models.Scheme) bool { return sc.IsActive }), nil
}

func (s *InMemoryStore) ListActiveSchemesWithDeadline(_ context.Context) ([]models.Scheme, error) {
	return s.list(func(sc models.Scheme) bool { return sc.IsActive && sc.Deadline != nil }), nil
}

// Upsert replaces schemes by ID; new IDs are appended to the iteration order.
func (s *InMemoryStore) Upsert(_ context.Context, schemes []models.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range schemes {
		if _, ok := s.schemes[sc.ID]; !ok {
			s.order = append(s.order, sc.ID)
		}
		s.schemes[sc.ID] = sc
	}
	return nil
}

func (s *InMemoryStore) list(keep func(models.Scheme) bool) []models.Scheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Scheme, 0, len(s.order))
	for _, id := range s.order {
		if sc := s.schemes[id]; keep(sc) {
			out = append(out, sc)
		}
	}
	return out
}
