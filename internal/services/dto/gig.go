package dto

import (
	"time"

	"gigwork_backend/internal/models"
)

// --- Gig Requests ---

type CreateGigRequest struct {
	InstitutionID string     `json:"institution_id" validate:"-"` // set by the server
	Title         string     `json:"title" validate:"required,min=3,max=100"`
	Description   string     `json:"description" validate:"omitempty,max=5000"`
	Location      string     `json:"location" validate:"omitempty,max=200"`
	PayAmount     float64    `json:"pay_amount" validate:"required,gt=0"`
	DurationHours *float64   `json:"duration_hours" validate:"omitempty,gt=0"`
	IsUrgent      bool       `json:"is_urgent"`
	StartDate     *time.Time `json:"start_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`
}

type DecideInterestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted declined"`
}

// --- Gig Responses ---

type GigResponse struct {
	ID                     string            `json:"id"`
	InstitutionID          string            `json:"institution_id"`
	Title                  string            `json:"title"`
	Description            string            `json:"description"`
	Location               string            `json:"location"`
	PayAmount              float64           `json:"pay_amount"`
	DurationHours          *float64          `json:"duration_hours,omitempty"`
	IsUrgent               bool              `json:"is_urgent"`
	Status                 models.GigStatus  `json:"status"`
	AssignedProfessionalID *string           `json:"assigned_professional_id,omitempty"`
	StartDate              *time.Time        `json:"start_date,omitempty"`
	ExpiryDate             *time.Time        `json:"expiry_date,omitempty"`
	InterestCount          *int64            `json:"interest_count,omitempty"`
	AssignedProfessional   *ProfessionalInfo `json:"assigned_professional,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

type ProfessionalInfo struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Skills     string   `json:"skills,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// InterestSummary is one row of an institution's interested-professionals
// listing: the expression joined with the professional's profile.
type InterestSummary struct {
	ID             string                `json:"id"`
	ProfessionalID string                `json:"professional_id"`
	Status         models.InterestStatus `json:"status"`
	Professional   *ProfessionalInfo     `json:"professional,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

type InterestCheckResponse struct {
	Interested bool                  `json:"interested"`
	Status     models.InterestStatus `json:"status,omitempty"`
}

func NewGigResponse(g *models.Gig) *GigResponse {
	return &GigResponse{
		ID:                     g.ID,
		InstitutionID:          g.InstitutionID,
		Title:                  g.Title,
		Description:            g.Description,
		Location:               g.Location,
		PayAmount:              g.PayAmount,
		DurationHours:          g.DurationHours,
		IsUrgent:               g.IsUrgent,
		Status:                 g.Status,
		AssignedProfessionalID: g.AssignedProfessionalID,
		StartDate:              g.StartDate,
		ExpiryDate:             g.ExpiryDate,
		CreatedAt:              g.CreatedAt,
		UpdatedAt:              g.UpdatedAt,
	}
}

func NewProfessionalInfo(p *models.ProfileSummary) *ProfessionalInfo {
	if p == nil {
		return nil
	}
	return &ProfessionalInfo{
		UserID:     p.UserID,
		Name:       p.Name,
		Skills:     p.Skills,
		HourlyRate: p.HourlyRate,
		Location:   p.Location,
	}
}
