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

type NotificationStore struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
	seq           int64
	order         map[string]int64
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		notifications: make(map[string]*models.Notification),
		order:         make(map[string]int64),
	}
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	s.seq++
	s.order[n.ID] = s.seq

	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *NotificationStore) ListUndelivered(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Delivered {
			out = append(out, *n)
		}
	}
	s.sortByInsertion(out, false)
	return out, nil
}

func (s *NotificationStore) MarkDelivered(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if n, ok := s.notifications[id]; ok {
			n.Delivered = true
			deliveredAt := at
			n.DeliveredAt = &deliveredAt
			n.UpdatedAt = at
		}
	}
	return nil
}

func (s *NotificationStore) ListByUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	s.sortByInsertion(out, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return repositories.ErrNotFound
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	n.UpdatedAt = now
	return nil
}

func (s *NotificationStore) UnreadCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, n := range s.notifications {
		if n.CreatedAt.Before(cutoff) {
			delete(s.notifications, id)
			delete(s.order, id)
			deleted++
		}
	}
	return deleted, nil
}

// sortByInsertion orders by an insertion sequence rather than CreatedAt so
// that events created within the same wall-clock tick keep creation order.
func (s *NotificationStore) sortByInsertion(out []models.Notification, desc bool) {
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
}
