package models

import "time"

// JobInterest is one professional's expression of interest in one gig.
// The (GigID, ProfessionalID) pair is unique; expressions are never deleted,
// only decided, so they double as the audit trail.
type JobInterest struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	GigID          string         `gorm:"not null;index;uniqueIndex:idx_gig_professional" json:"gig_id"`
	ProfessionalID string         `gorm:"not null;index;uniqueIndex:idx_gig_professional" json:"professional_id"`
	Status         InterestStatus `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt      time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
