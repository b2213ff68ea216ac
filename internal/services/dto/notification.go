package dto

import (
	"encoding/json"
	"time"

	"gigwork_backend/internal/models"
)

type NotificationResponse struct {
	ID        string                  `json:"id"`
	Kind      models.NotificationKind `json:"kind"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      json.RawMessage         `json:"data,omitempty"`
	Delivered bool                    `json:"delivered"`
	IsRead    bool                    `json:"is_read"`
	ReadAt    *time.Time              `json:"read_at,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Data:      json.RawMessage(n.Data),
		Delivered: n.Delivered,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func NewNotificationResponses(list []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, *NewNotificationResponse(&list[i]))
	}
	return out
}

type UnreadCountResponse struct {
	Count int64 `json:"unread_count"`
}
