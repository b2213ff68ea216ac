package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotificationInterestReceived NotificationKind = "interest_received"
	NotificationInterestAccepted NotificationKind = "interest_accepted"
	NotificationInterestDeclined NotificationKind = "interest_declined"
	NotificationGigClosed        NotificationKind = "gig_closed"
)

type Notification struct {
	BaseModel
	UserID      string           `gorm:"not null;index" json:"user_id"`
	Kind        NotificationKind `gorm:"not null" json:"kind"`
	Title       string           `gorm:"not null" json:"title"`
	Message     string           `json:"message"`
	Data        datatypes.JSON   `gorm:"type:jsonb" json:"data,omitempty"` // {"gig_id": "...", "decision": "..."}
	Delivered   bool             `gorm:"default:false;index" json:"delivered"`
	DeliveredAt *time.Time       `json:"delivered_at,omitempty"`
	IsRead      bool             `gorm:"default:false" json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}
