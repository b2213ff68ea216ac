package models

import (
	"time"
)

type Gig struct {
	ID                     string     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	InstitutionID          string     `gorm:"not null;index" json:"institution_id"`
	Title                  string     `gorm:"not null" json:"title"`
	Description            string     `json:"description"`
	Location               string     `json:"location"`
	PayAmount              float64    `gorm:"not null" json:"pay_amount"`
	DurationHours          *float64   `json:"duration_hours,omitempty"`
	IsUrgent               bool       `gorm:"default:false" json:"is_urgent"`
	Status                 GigStatus  `gorm:"not null;default:'open';index" json:"status"`
	AssignedProfessionalID *string    `gorm:"index" json:"assigned_professional_id,omitempty"`
	StartDate              *time.Time `json:"start_date,omitempty"`
	ExpiryDate             *time.Time `gorm:"index" json:"expiry_date,omitempty"`
	CreatedAt              time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Invariant: AssignedProfessionalID is set iff Status is assigned or paid.
func (g *Gig) IsAssignmentConsistent() bool {
	assigned := g.Status == GigStatusAssigned || g.Status == GigStatusPaid
	return assigned == (g.AssignedProfessionalID != nil)
}
