package repositories

import (
	"context"
	"database/sql"
	"errors"

	"gigwork_backend/internal/models"
)

// profileRepository reads the profiles table maintained by the account
// service. Lookup only; the workflow never writes profile rows.
type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileDirectory {
	return &profileRepository{db: db}
}

func (r *profileRepository) Lookup(ctx context.Context, userID string) (*models.ProfileSummary, error) {
	var p models.ProfileSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, name, skills, hourly_rate, location
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Name, &p.Skills, &p.HourlyRate, &p.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
