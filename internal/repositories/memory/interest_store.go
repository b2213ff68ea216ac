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

type InterestStore struct {
	mu        sync.Mutex
	interests map[string]*models.JobInterest
	gigs      *GigStore
}

// NewInterestStore takes the gig store so Decide can move the gig and the
// ledger in one atomic unit, the way the SQL transaction does.
func NewInterestStore(gigs *GigStore) *InterestStore {
	return &InterestStore{
		interests: make(map[string]*models.JobInterest),
		gigs:      gigs,
	}
}

func key(gigID, professionalID string) string {
	return gigID + "/" + professionalID
}

func (s *InterestStore) Create(_ context.Context, in *models.JobInterest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(in.GigID, in.ProfessionalID)
	if _, exists := s.interests[k]; exists {
		return repositories.ErrInterestExists
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := time.Now()
	in.CreatedAt = now
	in.UpdatedAt = now

	cp := *in
	s.interests[k] = &cp
	return nil
}

func (s *InterestStore) Get(_ context.Context, gigID, professionalID string) (*models.JobInterest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.interests[key(gigID, professionalID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (s *InterestStore) ListByGig(_ context.Context, gigID string) ([]models.JobInterest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.JobInterest
	for _, in := range s.interests {
		if in.GigID == gigID {
			out = append(out, *in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InterestStore) ListByProfessional(_ context.Context, professionalID string) ([]models.JobInterest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.JobInterest
	for _, in := range s.interests {
		if in.ProfessionalID == professionalID {
			out = append(out, *in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InterestStore) CountByGig(_ context.Context, gigID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, in := range s.interests {
		if in.GigID == gigID {
			count++
		}
	}
	return count, nil
}

func (s *InterestStore) HasAccepted(_ context.Context, gigID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAcceptedLocked(gigID), nil
}

func (s *InterestStore) hasAcceptedLocked(gigID string) bool {
	for _, in := range s.interests {
		if in.GigID == gigID && in.Status == models.InterestStatusAccepted {
			return true
		}
	}
	return false
}

// Decide mirrors the transactional SQL variant: holding both store mutexes
// (gigs first, always) makes the decision, the auto-declines, and the gig's
// open -> assigned move a single atomic unit no interleaved writer can split.
func (s *InterestStore) Decide(_ context.Context, gigID, professionalID string, decision models.InterestStatus) (*repositories.DecideResult, error) {
	s.gigs.mu.Lock()
	defer s.gigs.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	gig, ok := s.gigs.gigs[gigID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if decision == models.InterestStatusAccepted && s.hasAcceptedLocked(gigID) {
		return nil, repositories.ErrGigAlreadyAssigned
	}
	if gig.Status != models.GigStatusOpen {
		return nil, repositories.ErrStatusConflict
	}

	target, ok := s.interests[key(gigID, professionalID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if target.Status != models.InterestStatusPending {
		return nil, repositories.ErrInterestNotPending
	}

	now := time.Now()
	target.Status = decision
	target.UpdatedAt = now

	decided := *target
	result := &repositories.DecideResult{Decided: &decided}

	if decision == models.InterestStatusAccepted {
		for _, in := range s.interests {
			if in.GigID == gigID && in.ID != target.ID && in.Status == models.InterestStatusPending {
				in.Status = models.InterestStatusDeclined
				in.UpdatedAt = now
				result.AutoDeclined = append(result.AutoDeclined, *in)
			}
		}
		sort.SliceStable(result.AutoDeclined, func(i, j int) bool {
			return result.AutoDeclined[i].CreatedAt.Before(result.AutoDeclined[j].CreatedAt)
		})

		pid := professionalID
		gig.Status = models.GigStatusAssigned
		gig.AssignedProfessionalID = &pid
		gig.UpdatedAt = now

		cp := *gig
		result.Gig = &cp
	}
	return result, nil
}
