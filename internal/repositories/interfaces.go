package repositories

import (
	"context"
	"time"

	"gigwork_backend/internal/models"
)

// GigRepository is the authoritative store of gig records. UpdateStatus is a
// compare-and-set: it succeeds only if the row currently holds the expected
// status, which is the primary defense against lost updates under concurrent
// transition attempts.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	GetByID(ctx context.Context, id string) (*models.Gig, error)
	ListOpen(ctx context.Context, urgentOnly bool) ([]models.Gig, error)
	ListByInstitution(ctx context.Context, institutionID string) ([]models.Gig, error)
	ListAssignedTo(ctx context.Context, professionalID string) ([]models.Gig, error)
	// UpdateStatus transitions id from -> to, setting or clearing the assigned
	// professional in the same statement. Returns ErrStatusConflict when the
	// current status no longer equals from, ErrNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id string, from, to models.GigStatus, assignedProfessionalID *string) (*models.Gig, error)
	// CloseExpired soft-closes open gigs whose expiry date has passed.
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// DecideResult is what an atomic decide produces: the decided expression,
// every pending expression that was auto-declined alongside an accept, and
// the gig as assigned by the accept (nil on decline).
type DecideResult struct {
	Decided      *models.JobInterest
	AutoDeclined []models.JobInterest
	Gig          *models.Gig
}

// InterestRepository is the per-gig ledger of interest expressions.
type InterestRepository interface {
	// Create records a pending expression. ErrInterestExists when the
	// (gig, professional) pair already has one.
	Create(ctx context.Context, interest *models.JobInterest) error
	Get(ctx context.Context, gigID, professionalID string) (*models.JobInterest, error)
	ListByGig(ctx context.Context, gigID string) ([]models.JobInterest, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]models.JobInterest, error)
	CountByGig(ctx context.Context, gigID string) (int64, error)
	HasAccepted(ctx context.Context, gigID string) (bool, error)
	// Decide applies an accept/decline decision as one atomic unit that spans
	// both stores: on accept, every other pending expression is declined and
	// the gig moves open -> assigned in the same unit, so no interleaved
	// writer (including the auto-close worker) can observe or produce an
	// accepted expression on a non-open gig. The gig must be open:
	// ErrStatusConflict otherwise, ErrNotFound for an unknown gig or pair,
	// ErrInterestNotPending when the target has already been decided,
	// ErrGigAlreadyAssigned when an accepted expression already exists.
	Decide(ctx context.Context, gigID, professionalID string, decision models.InterestStatus) (*DecideResult, error)
}

// NotificationRepository persists notification events until delivered and for
// a bounded replay window afterwards.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListUndelivered(ctx context.Context, userID string) ([]models.Notification, error)
	MarkDelivered(ctx context.Context, ids []string, at time.Time) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProfileDirectory is the read-only lookup served by the external profile
// store. The core embeds the summaries in listings and notification payloads
// and never writes through this interface.
type ProfileDirectory interface {
	Lookup(ctx context.Context, userID string) (*models.ProfileSummary, error)
}
