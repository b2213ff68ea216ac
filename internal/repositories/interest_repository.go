package repositories

import (
	"context"
	"database/sql"
	"errors"

	"gigwork_backend/internal/models"
)

type interestRepository struct {
	db *sql.DB
}

func NewInterestRepository(db *sql.DB) InterestRepository {
	return &interestRepository{db: db}
}

const interestColumns = `id, gig_id, professional_id, status, created_at, updated_at`

func (r *interestRepository) Create(ctx context.Context, in *models.JobInterest) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO job_interests (gig_id, professional_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, in.GigID, in.ProfessionalID, in.Status).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrInterestExists
	}
	return err
}

func (r *interestRepository) Get(ctx context.Context, gigID, professionalID string) (*models.JobInterest, error) {
	var in models.JobInterest
	err := r.db.QueryRowContext(ctx, `
		SELECT `+interestColumns+` FROM job_interests
		WHERE gig_id = $1 AND professional_id = $2
	`, gigID, professionalID).Scan(
		&in.ID, &in.GigID, &in.ProfessionalID, &in.Status, &in.CreatedAt, &in.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *interestRepository) ListByGig(ctx context.Context, gigID string) ([]models.JobInterest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interestColumns+` FROM job_interests
		WHERE gig_id = $1 ORDER BY created_at ASC
	`, gigID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInterests(rows)
}

func (r *interestRepository) ListByProfessional(ctx context.Context, professionalID string) ([]models.JobInterest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+interestColumns+` FROM job_interests
		WHERE professional_id = $1 ORDER BY created_at DESC
	`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInterests(rows)
}

func (r *interestRepository) CountByGig(ctx context.Context, gigID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM job_interests WHERE gig_id = $1
	`, gigID).Scan(&count)
	return count, err
}

func (r *interestRepository) HasAccepted(ctx context.Context, gigID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM job_interests WHERE gig_id = $1 AND status = 'accepted')
	`, gigID).Scan(&exists)
	return exists, err
}

// Decide runs in one transaction with the gig row locked, so two concurrent
// decisions for the same gig serialize at the database even if the caller's
// per-gig lock is bypassed (e.g. a second instance of the service, or the
// auto-close worker). On accept the gig's open -> assigned move commits in
// the same transaction as the ledger writes: either all of it lands or none.
func (r *interestRepository) Decide(ctx context.Context, gigID, professionalID string, decision models.InterestStatus) (*DecideResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var gigStatus models.GigStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM gigs WHERE id = $1 FOR UPDATE
	`, gigID).Scan(&gigStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if decision == models.InterestStatusAccepted {
		var hasAccepted bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM job_interests WHERE gig_id = $1 AND status = 'accepted')
		`, gigID).Scan(&hasAccepted)
		if err != nil {
			return nil, err
		}
		if hasAccepted {
			return nil, ErrGigAlreadyAssigned
		}
	}

	if gigStatus != models.GigStatusOpen {
		return nil, ErrStatusConflict
	}

	var decided models.JobInterest
	err = tx.QueryRowContext(ctx, `
		UPDATE job_interests
		SET status = $1, updated_at = now()
		WHERE gig_id = $2 AND professional_id = $3 AND status = 'pending'
		RETURNING `+interestColumns+`
	`, decision, gigID, professionalID).Scan(
		&decided.ID, &decided.GigID, &decided.ProfessionalID, &decided.Status,
		&decided.CreatedAt, &decided.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.Get(ctx, gigID, professionalID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInterestNotPending
	}
	if err != nil {
		return nil, err
	}

	result := &DecideResult{Decided: &decided}

	if decision == models.InterestStatusAccepted {
		rows, err := tx.QueryContext(ctx, `
			UPDATE job_interests
			SET status = 'declined', updated_at = now()
			WHERE gig_id = $1 AND id != $2 AND status = 'pending'
			RETURNING `+interestColumns+`
		`, gigID, decided.ID)
		if err != nil {
			return nil, err
		}
		result.AutoDeclined, err = scanInterests(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}

		var g models.Gig
		err = tx.QueryRowContext(ctx, `
			UPDATE gigs
			SET status = $1, assigned_professional_id = $2, updated_at = now()
			WHERE id = $3
			RETURNING `+gigColumns+`
		`, models.GigStatusAssigned, professionalID, gigID).Scan(
			&g.ID, &g.InstitutionID, &g.Title, &g.Description, &g.Location,
			&g.PayAmount, &g.DurationHours, &g.IsUrgent, &g.Status,
			&g.AssignedProfessionalID, &g.StartDate, &g.ExpiryDate,
			&g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result.Gig = &g
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanInterests(rows *sql.Rows) ([]models.JobInterest, error) {
	var interests []models.JobInterest
	for rows.Next() {
		var in models.JobInterest
		err := rows.Scan(&in.ID, &in.GigID, &in.ProfessionalID, &in.Status, &in.CreatedAt, &in.UpdatedAt)
		if err != nil {
			return nil, err
		}
		interests = append(interests, in)
	}
	return interests, rows.Err()
}
