package memory

import (
	"context"
	"sync"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.ProfileSummary
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]models.ProfileSummary)}
}

// Put seeds a profile. Test helper; the workflow only reads.
func (s *ProfileStore) Put(p models.ProfileSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *ProfileStore) Lookup(_ context.Context, userID string) (*models.ProfileSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}
