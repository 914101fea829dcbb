package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/metrics"
)

// MemoryStore is an in-memory Store. Alerts are kept in arrival order and
// indexed by id and by tourist.
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	byID      map[string]model.Alert
	byTourist map[string][]string
	retention int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:      make(map[string]model.Alert),
		byTourist: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, a model.Alert) error { //nolint:gocritic // hugeParam: value semantics
	if a.ID == "" || a.TouristID == "" {
		return fmt.Errorf("record: %w: id and tourist are required", ErrInvalidAlert)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
		s.byTourist[a.TouristID] = append(s.byTourist[a.TouristID], a.ID)
	}
	s.byID[a.ID] = a
	if s.retention > 0 {
		for len(s.order) > s.retention {
			s.evictOldestLocked()
		}
	}
	metrics.UpdateAlertsStored(len(s.order))
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirstLocked(s.order, limit)
}

// ForTourist implements Store.
func (s *MemoryStore) ForTourist(_ context.Context, touristID string) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirstLocked(s.byTourist[touristID], 0)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryStore) newestFirstLocked(ids []string, limit int) []model.Alert {
	n := len(ids)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Alert, 0, n)
	for i := len(ids) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.byID[ids[i]])
	}
	return out
}

func (s *MemoryStore) evictOldestLocked() {
	id := s.order[0]
	s.order = s.order[1:]
	a := s.byID[id]
	delete(s.byID, id)
	ids := s.byTourist[a.TouristID]
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(s.byTourist, a.TouristID)
	} else {
		s.byTourist[a.TouristID] = ids
	}
}
