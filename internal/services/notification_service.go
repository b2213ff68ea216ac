package services

import (
	"context"

	"gigwork_backend/internal/dispatch"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"
)

type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	// Drain hands out the user's queued events exactly once, in creation
	// order, marking them delivered.
	Drain(ctx context.Context, userID string) ([]dto.NotificationResponse, error)
}

type notificationService struct {
	repo       repositories.NotificationRepository
	dispatcher *dispatch.Dispatcher
}

func NewNotificationService(repo repositories.NotificationRepository, dispatcher *dispatch.Dispatcher) NotificationService {
	return &notificationService{repo: repo, dispatcher: dispatcher}
}

func (s *notificationService) List(ctx context.Context, userID string, limit int) ([]dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewNotificationResponses(list), nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		if apperrors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) Drain(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	queued, err := s.dispatcher.Drain(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewNotificationResponses(queued), nil
}
