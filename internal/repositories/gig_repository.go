package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gigwork_backend/internal/models"
)

type gigRepository struct {
	db *sql.DB
}

func NewGigRepository(db *sql.DB) GigRepository {
	return &gigRepository{db: db}
}

const gigColumns = `
	id, institution_id, title, description, location, pay_amount,
	duration_hours, is_urgent, status, assigned_professional_id,
	start_date, expiry_date, created_at, updated_at
`

func (r *gigRepository) Create(ctx context.Context, g *models.Gig) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO gigs (
			institution_id, title, description, location, pay_amount,
			duration_hours, is_urgent, status, start_date, expiry_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		g.InstitutionID, g.Title, g.Description, g.Location, g.PayAmount,
		g.DurationHours, g.IsUrgent, g.Status, g.StartDate, g.ExpiryDate,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

func (r *gigRepository) GetByID(ctx context.Context, id string) (*models.Gig, error) {
	var g models.Gig
	err := r.db.QueryRowContext(ctx, `
		SELECT `+gigColumns+` FROM gigs WHERE id = $1
	`, id).Scan(
		&g.ID, &g.InstitutionID, &g.Title, &g.Description, &g.Location, &g.PayAmount,
		&g.DurationHours, &g.IsUrgent, &g.Status, &g.AssignedProfessionalID,
		&g.StartDate, &g.ExpiryDate, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gigRepository) ListOpen(ctx context.Context, urgentOnly bool) ([]models.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE status = 'open'`
	if urgentOnly {
		query += ` AND is_urgent = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGigs(rows)
}

func (r *gigRepository) ListByInstitution(ctx context.Context, institutionID string) ([]models.Gig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+gigColumns+` FROM gigs
		WHERE institution_id = $1 ORDER BY created_at DESC
	`, institutionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGigs(rows)
}

func (r *gigRepository) ListAssignedTo(ctx context.Context, professionalID string) ([]models.Gig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+gigColumns+` FROM gigs
		WHERE assigned_professional_id = $1 ORDER BY created_at DESC
	`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGigs(rows)
}

// UpdateStatus is the compare-and-set on the gig row. The WHERE clause carries
// the expected current status; zero rows affected means either the gig does
// not exist or another writer got there first.
func (r *gigRepository) UpdateStatus(ctx context.Context, id string, from, to models.GigStatus, assignedProfessionalID *string) (*models.Gig, error) {
	var g models.Gig
	err := r.db.QueryRowContext(ctx, `
		UPDATE gigs
		SET status = $1, assigned_professional_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING `+gigColumns+`
	`, to, assignedProfessionalID, id, from).Scan(
		&g.ID, &g.InstitutionID, &g.Title, &g.Description, &g.Location, &g.PayAmount,
		&g.DurationHours, &g.IsUrgent, &g.Status, &g.AssignedProfessionalID,
		&g.StartDate, &g.ExpiryDate, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gigRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gigs
		SET status = 'closed', updated_at = now()
		WHERE status = 'open' AND expiry_date IS NOT NULL AND expiry_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanGigs(rows *sql.Rows) ([]models.Gig, error) {
	var gigs []models.Gig
	for rows.Next() {
		var g models.Gig
		err := rows.Scan(
			&g.ID, &g.InstitutionID, &g.Title, &g.Description, &g.Location, &g.PayAmount,
			&g.DurationHours, &g.IsUrgent, &g.Status, &g.AssignedProfessionalID,
			&g.StartDate, &g.ExpiryDate, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		gigs = append(gigs, g)
	}
	return gigs, rows.Err()
}
