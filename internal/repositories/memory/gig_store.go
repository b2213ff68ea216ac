// Package memory holds in-memory implementations of the repository
// interfaces. They back unit tests and local development runs where no
// Postgres instance is available, and keep the same sentinel-error
// semantics as the SQL implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
)

type GigStore struct {
	mu   sync.RWMutex
	gigs map[string]*models.Gig
}

func NewGigStore() *GigStore {
	return &GigStore{gigs: make(map[string]*models.Gig)}
}

func (s *GigStore) Create(_ context.Context, g *models.Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	cp := *g
	s.gigs[g.ID] = &cp
	return nil
}

func (s *GigStore) GetByID(_ context.Context, id string) (*models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.gigs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *GigStore) ListOpen(_ context.Context, urgentOnly bool) ([]models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Gig
	for _, g := range s.gigs {
		if g.Status != models.GigStatusOpen {
			continue
		}
		if urgentOnly && !g.IsUrgent {
			continue
		}
		out = append(out, *g)
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (s *GigStore) ListByInstitution(_ context.Context, institutionID string) ([]models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Gig
	for _, g := range s.gigs {
		if g.InstitutionID == institutionID {
			out = append(out, *g)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (s *GigStore) ListAssignedTo(_ context.Context, professionalID string) ([]models.Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Gig
	for _, g := range s.gigs {
		if g.AssignedProfessionalID != nil && *g.AssignedProfessionalID == professionalID {
			out = append(out, *g)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (s *GigStore) UpdateStatus(_ context.Context, id string, from, to models.GigStatus, assignedProfessionalID *string) (*models.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gigs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if g.Status != from {
		return nil, repositories.ErrStatusConflict
	}
	g.Status = to
	g.AssignedProfessionalID = assignedProfessionalID
	g.UpdatedAt = time.Now()

	cp := *g
	return &cp, nil
}

func (s *GigStore) CloseExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed int64
	for _, g := range s.gigs {
		if g.Status == models.GigStatusOpen && g.ExpiryDate != nil && g.ExpiryDate.Before(now) {
			g.Status = models.GigStatusClosed
			g.UpdatedAt = now
			closed++
		}
	}
	return closed, nil
}

func sortByCreatedDesc(gigs []models.Gig) {
	sort.SliceStable(gigs, func(i, j int) bool {
		return gigs[i].CreatedAt.After(gigs[j].CreatedAt)
	})
}
